package kdf

import (
	"math"

	"golang.org/x/crypto/argon2"

	"github.com/wippyai/argon2-wasm/errors"
	"github.com/wippyai/argon2-wasm/kdf/internal/core"
)

// Input is the full set of derivation inputs. Secret and Data are the
// optional key and associated data of RFC 9106.
type Input struct {
	Password []byte
	Salt     []byte
	Secret   []byte
	Data     []byte
}

// Hash derives params.OutputLength bytes from password and salt.
func Hash(password, salt []byte, alg Algorithm, ver Version, params Params) ([]byte, error) {
	out := make([]byte, params.OutputLength)
	if err := HashInto(out, password, salt, alg, ver, params); err != nil {
		return nil, err
	}
	return out, nil
}

// HashInto derives into out, which must be exactly params.OutputLength long.
func HashInto(out, password, salt []byte, alg Algorithm, ver Version, params Params) error {
	return KeyInto(out, Input{Password: password, Salt: salt}, alg, ver, params)
}

// Key derives params.OutputLength bytes from in.
func Key(in Input, alg Algorithm, ver Version, params Params) ([]byte, error) {
	out := make([]byte, params.OutputLength)
	if err := KeyInto(out, in, alg, ver, params); err != nil {
		return nil, err
	}
	return out, nil
}

// KeyInto is Key writing into a caller-owned buffer.
func KeyInto(out []byte, in Input, alg Algorithm, ver Version, params Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if uint64(len(out)) != uint64(params.OutputLength) {
		return errors.New(errors.PhaseHash, errors.KindInvalidInput).
			Field("output").
			Value(len(out)).
			Detail("buffer holds %d bytes, want %d", len(out), params.OutputLength).
			Build()
	}
	if err := in.validate(); err != nil {
		return err
	}
	if alg > Argon2id {
		return errors.Unsupported(errors.PhaseHash, "algorithm "+alg.String())
	}
	if ver != Version10 && ver != Version13 {
		return errors.Unsupported(errors.PhaseHash, "version "+ver.String())
	}

	if fast(in, alg, ver, params) {
		var tag []byte
		if alg == Argon2id {
			tag = argon2.IDKey(in.Password, in.Salt, params.TimeCost, params.MemoryCost,
				uint8(params.Parallelism), params.OutputLength)
		} else {
			tag = argon2.Key(in.Password, in.Salt, params.TimeCost, params.MemoryCost,
				uint8(params.Parallelism), params.OutputLength)
		}
		copy(out, tag)
		clear(tag)
		return nil
	}

	core.DeriveInto(out, core.Input{
		Password: in.Password,
		Salt:     in.Salt,
		Secret:   in.Secret,
		Data:     in.Data,
		Time:     params.TimeCost,
		Memory:   params.MemoryCost,
		Threads:  params.Parallelism,
		Mode:     core.Mode(alg),
		Version:  uint32(ver),
	})
	return nil
}

// fast reports whether golang.org/x/crypto/argon2 covers the derivation.
func fast(in Input, alg Algorithm, ver Version, params Params) bool {
	return alg != Argon2d &&
		ver == Version13 &&
		params.Parallelism <= math.MaxUint8 &&
		len(in.Secret) == 0 &&
		len(in.Data) == 0
}

func (in Input) validate() error {
	if len(in.Salt) < MinSaltLength {
		return errors.New(errors.PhaseHash, errors.KindInvalidParams).
			Field("salt").
			Value(len(in.Salt)).
			Detail("salt is %d bytes, minimum is %d", len(in.Salt), MinSaltLength).
			Build()
	}
	for _, f := range []struct {
		name string
		data []byte
	}{
		{"password", in.Password},
		{"salt", in.Salt},
		{"secret", in.Secret},
		{"data", in.Data},
	} {
		if uint64(len(f.data)) > math.MaxUint32 {
			return errors.New(errors.PhaseHash, errors.KindInvalidParams).
				Field(f.name).
				Detail("length exceeds 2^32-1 bytes").
				Build()
		}
	}
	return nil
}
