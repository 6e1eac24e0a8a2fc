package kdf

import (
	"strconv"

	"github.com/wippyai/argon2-wasm/errors"
)

// Algorithm selects the Argon2 variant.
type Algorithm uint32

const (
	Argon2d  Algorithm = 0
	Argon2i  Algorithm = 1
	Argon2id Algorithm = 2
)

// Version selects the Argon2 protocol revision.
type Version uint32

const (
	Version10 Version = 0x10
	Version13 Version = 0x13

	// VersionDefault is the revision selected for every unrecognised code.
	VersionDefault = Version13
)

// AlgorithmDefault is the variant selected for every unrecognised code.
const AlgorithmDefault = Argon2id

// Decode maps boundary integer codes to an algorithm and version.
// Every input is accepted: unknown codes select the defaults.
func Decode(algorithmCode, versionCode uint32) (Algorithm, Version) {
	return DecodeAlgorithm(algorithmCode), DecodeVersion(versionCode)
}

// DecodeAlgorithm maps 0 to Argon2d, 1 to Argon2i and anything else to Argon2id.
func DecodeAlgorithm(code uint32) Algorithm {
	switch code {
	case 0:
		return Argon2d
	case 1:
		return Argon2i
	default:
		return Argon2id
	}
}

// DecodeVersion maps 0x10 to Version10 and anything else to Version13.
func DecodeVersion(code uint32) Version {
	if code == uint32(Version10) {
		return Version10
	}
	return Version13
}

// String returns the PHC identifier of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case Argon2d:
		return "argon2d"
	case Argon2i:
		return "argon2i"
	case Argon2id:
		return "argon2id"
	default:
		return "argon2(" + strconv.FormatUint(uint64(a), 10) + ")"
	}
}

// ParseAlgorithm parses a PHC identifier.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "argon2d":
		return Argon2d, nil
	case "argon2i":
		return Argon2i, nil
	case "argon2id":
		return Argon2id, nil
	}
	return 0, errors.New(errors.PhaseDecode, errors.KindInvalidEncoding).
		Field("algorithm").
		Value(s).
		Detail("unknown algorithm %q", s).
		Build()
}

// String returns the decimal form used in encoded hashes.
func (v Version) String() string {
	return strconv.FormatUint(uint64(v), 10)
}

// ParseVersion parses the decimal form used in encoded hashes.
// Only 16 and 19 are accepted.
func ParseVersion(s string) (Version, error) {
	n, err := parseDecimal(s)
	if err == nil {
		switch Version(n) {
		case Version10, Version13:
			return Version(n), nil
		}
	}
	return 0, errors.New(errors.PhaseDecode, errors.KindInvalidEncoding).
		Field("v").
		Value(s).
		Detail("unsupported version %q", s).
		Build()
}

// parseDecimal parses a canonical unsigned 32-bit decimal: digits only,
// no sign and no leading zeros.
func parseDecimal(s string) (uint32, error) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}
