package core

import (
	"bytes"
	"encoding/hex"
	"testing"

	"golang.org/x/crypto/argon2"
)

func rfcInput(mode Mode) Input {
	return Input{
		Password: bytes.Repeat([]byte{0x01}, 32),
		Salt:     bytes.Repeat([]byte{0x02}, 16),
		Secret:   bytes.Repeat([]byte{0x03}, 8),
		Data:     bytes.Repeat([]byte{0x04}, 12),
		Time:     3,
		Memory:   32,
		Threads:  4,
		Mode:     mode,
		Version:  Version13,
	}
}

// RFC 9106 section 5 test vectors.
func TestDerive_RFC9106(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		want string
	}{
		{"argon2d", ModeD, "512b391b6f1162975371d30919734294f868e3be3984f3c1a13a4db9fabe4acb"},
		{"argon2i", ModeI, "c814d9d1dc7f37aa13f0d77f2494bda1c8de6b016dd388d29952a4c4672b6ce8"},
		{"argon2id", ModeID, "0d640df58d78766c08c037a34a8b53c9d01ef0452d75b65eb52520e96b01e659"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := hex.EncodeToString(Derive(rfcInput(tc.mode), 32))
			if got != tc.want {
				t.Errorf("tag = %s, want %s", got, tc.want)
			}
		})
	}
}

// Vectors from the reference implementation's test suite, covering the
// legacy version that overwrites blocks instead of folding them.
func TestDerive_ReferenceVersions(t *testing.T) {
	if testing.Short() {
		t.Skip("64 MiB derivations")
	}

	tests := []struct {
		name    string
		version uint32
		want    string
	}{
		{"v16", Version10, "f6c4db4a54e2a370627aff3db6176b94a2a209a62c8e36152711802f7b30c694"},
		{"v19", Version13, "c1628832147d9720c5bd1cfd61367078729f6dfb6f8fea9ff98158e0d7816ed0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := Input{
				Password: []byte("password"),
				Salt:     []byte("somesalt"),
				Time:     2,
				Memory:   1 << 16,
				Threads:  1,
				Mode:     ModeI,
				Version:  tc.version,
			}
			got := hex.EncodeToString(Derive(in, 32))
			if got != tc.want {
				t.Errorf("tag = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestDerive_MatchesXCrypto(t *testing.T) {
	password := []byte("correct horse")
	salt := []byte("battery staple!!")

	tests := []struct {
		name    string
		time    uint32
		memory  uint32
		threads uint8
		keyLen  uint32
	}{
		{"minimal", 1, 8, 1, 4},
		{"concrete vector", 3, 4096, 1, 32},
		{"four lanes", 2, 256, 4, 32},
		{"odd memory", 1, 100, 3, 16},
		{"long tag", 1, 64, 1, 100},
		{"128 byte tag", 1, 64, 2, 128},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := Input{
				Password: password,
				Salt:     salt,
				Time:     tc.time,
				Memory:   tc.memory,
				Threads:  uint32(tc.threads),
				Version:  Version13,
			}

			in.Mode = ModeID
			want := argon2.IDKey(password, salt, tc.time, tc.memory, tc.threads, tc.keyLen)
			if got := Derive(in, tc.keyLen); !bytes.Equal(got, want) {
				t.Errorf("argon2id:\n got %x\nwant %x", got, want)
			}

			in.Mode = ModeI
			want = argon2.Key(password, salt, tc.time, tc.memory, tc.threads, tc.keyLen)
			if got := Derive(in, tc.keyLen); !bytes.Equal(got, want) {
				t.Errorf("argon2i:\n got %x\nwant %x", got, want)
			}
		})
	}
}

func TestDerive_Deterministic(t *testing.T) {
	in := rfcInput(ModeD)
	in.Version = Version10

	a := Derive(in, 32)
	b := Derive(in, 32)
	if !bytes.Equal(a, b) {
		t.Fatalf("repeated derivation differs: %x != %x", a, b)
	}

	in.Version = Version13
	if c := Derive(in, 32); bytes.Equal(a, c) {
		t.Error("versions 0x10 and 0x13 produced the same tag")
	}
}

func TestDerive_InputsAffectTag(t *testing.T) {
	base := Derive(rfcInput(ModeID), 32)

	mutations := map[string]func(*Input){
		"password": func(in *Input) { in.Password = []byte("other") },
		"salt":     func(in *Input) { in.Salt = bytes.Repeat([]byte{0x09}, 16) },
		"secret":   func(in *Input) { in.Secret = nil },
		"data":     func(in *Input) { in.Data = nil },
		"time":     func(in *Input) { in.Time = 2 },
		"memory":   func(in *Input) { in.Memory = 64 },
		"threads":  func(in *Input) { in.Threads = 2 },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			in := rfcInput(ModeID)
			mutate(&in)
			if got := Derive(in, 32); bytes.Equal(got, base) {
				t.Errorf("changing %s did not change the tag", name)
			}
		})
	}
}

func TestDeriveInto_PanicsOnZeroCost(t *testing.T) {
	for name, in := range map[string]Input{
		"time":    {Salt: []byte("saltsalt"), Memory: 8, Threads: 1},
		"threads": {Salt: []byte("saltsalt"), Memory: 8, Time: 1},
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			DeriveInto(make([]byte, 32), in)
		})
	}
}

func TestHashPrime(t *testing.T) {
	// Short outputs are a single BLAKE2b call; long outputs chain 32-byte
	// halves. Both must be prefix-sensitive to the requested length.
	in := []byte("input")
	short := make([]byte, 32)
	long := make([]byte, 100)
	hashPrime(short, in)
	hashPrime(long, in)

	if bytes.Equal(short, long[:32]) {
		t.Error("H' output should depend on the requested length")
	}
	if bytes.Equal(long[32:64], make([]byte, 32)) {
		t.Error("H' left part of long output unset")
	}
}
