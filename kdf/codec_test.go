package kdf

import "testing"

func TestDecode(t *testing.T) {
	tests := []struct {
		algCode, verCode uint32
		wantAlg          Algorithm
		wantVer          Version
	}{
		{0, 0x10, Argon2d, Version10},
		{1, 0x13, Argon2i, Version13},
		{2, 0x13, Argon2id, Version13},
		{7, 0x10, Argon2id, Version10},
		{0xFFFFFFFF, 99, Argon2id, Version13},
		{1, 0, Argon2i, Version13},
		{0, 0x11, Argon2d, Version13},
	}

	for _, tc := range tests {
		alg, ver := Decode(tc.algCode, tc.verCode)
		if alg != tc.wantAlg || ver != tc.wantVer {
			t.Errorf("Decode(%d, %#x) = %v, %v; want %v, %v",
				tc.algCode, tc.verCode, alg, ver, tc.wantAlg, tc.wantVer)
		}
	}
}

func TestAlgorithm_StringRoundTrip(t *testing.T) {
	for _, alg := range []Algorithm{Argon2d, Argon2i, Argon2id} {
		got, err := ParseAlgorithm(alg.String())
		if err != nil {
			t.Fatalf("ParseAlgorithm(%q): %v", alg.String(), err)
		}
		if got != alg {
			t.Errorf("ParseAlgorithm(%q) = %v, want %v", alg.String(), got, alg)
		}
	}

	if s := Algorithm(9).String(); s != "argon2(9)" {
		t.Errorf("Algorithm(9).String() = %q", s)
	}
	for _, bad := range []string{"", "argon2", "Argon2id", "scrypt"} {
		if _, err := ParseAlgorithm(bad); err == nil {
			t.Errorf("ParseAlgorithm(%q) succeeded", bad)
		}
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{"16", Version10, false},
		{"19", Version13, false},
		{"18", 0, true},
		{"019", 0, true},
		{"+19", 0, true},
		{"0x13", 0, true},
		{"", 0, true},
	}

	for _, tc := range tests {
		got, err := ParseVersion(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseVersion(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseVersion(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
		ok   bool
	}{
		{"0", 0, true},
		{"4096", 4096, true},
		{"4294967295", 4294967295, true},
		{"4294967296", 0, false},
		{"007", 0, false},
		{"-1", 0, false},
		{"1e3", 0, false},
		{" 1", 0, false},
	}

	for _, tc := range tests {
		got, err := parseDecimal(tc.in)
		if (err == nil) != tc.ok || got != tc.want {
			t.Errorf("parseDecimal(%q) = %d, %v; want %d, ok=%v", tc.in, got, err, tc.want, tc.ok)
		}
	}
}
