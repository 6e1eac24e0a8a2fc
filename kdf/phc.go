package kdf

import (
	"encoding/base64"
	"strings"

	"github.com/wippyai/argon2-wasm/errors"
)

const (
	// MaxEncodedHashLength bounds the tag carried by an encoded hash.
	MaxEncodedHashLength = 64

	// MaxKeyIDLength bounds the keyid parameter.
	MaxKeyIDLength = 8

	// MaxDataLength bounds the data parameter.
	MaxDataLength = 32
)

var b64 = base64.RawStdEncoding.Strict()

// Encoded is a parsed PHC string:
//
//	$argon2id$v=19$m=4096,t=3,p=1[,keyid=..][,data=..]$<salt>$<hash>
type Encoded struct {
	Algorithm Algorithm
	Version   Version
	Params    Params
	KeyID     []byte
	Data      []byte
	Salt      []byte
	Hash      []byte
}

// Encode renders e as a PHC string. Params.OutputLength is ignored; the
// hash length is implied by the encoded hash.
func Encode(e *Encoded) string {
	var b strings.Builder
	b.WriteByte('$')
	b.WriteString(e.Algorithm.String())
	b.WriteString("$v=")
	b.WriteString(e.Version.String())
	b.WriteByte('$')
	b.WriteString(e.Params.String())
	if len(e.KeyID) > 0 {
		b.WriteString(",keyid=")
		b.WriteString(b64.EncodeToString(e.KeyID))
	}
	if len(e.Data) > 0 {
		b.WriteString(",data=")
		b.WriteString(b64.EncodeToString(e.Data))
	}
	b.WriteByte('$')
	b.WriteString(b64.EncodeToString(e.Salt))
	b.WriteByte('$')
	b.WriteString(b64.EncodeToString(e.Hash))
	return b.String()
}

// String implements fmt.Stringer.
func (e *Encoded) String() string {
	return Encode(e)
}

// DecodeEncoded parses a PHC string and checks that it describes a usable
// derivation. The version segment is optional and defaults to 19.
// Params.OutputLength is set to the hash length.
//
// Syntax errors are invalid_encoding. A well-formed string whose costs, salt
// or hash the primitive cannot use is invalid_params.
func DecodeEncoded(s string) (*Encoded, error) {
	e, err := ParseEncoded(s)
	if err != nil {
		return nil, err
	}
	if err := e.check(); err != nil {
		return nil, err
	}
	return e, nil
}

// ParseEncoded checks only the PHC syntax of s:
//
//	$<alg>[$v=<n>][$<params>][$<salt>[$<hash>]]
//
// Missing cost parameters are left zero and a missing salt or hash is left
// nil.
func ParseEncoded(s string) (*Encoded, error) {
	parts := strings.Split(s, "$")
	if parts[0] != "" {
		return nil, errors.InvalidEncoding("", "encoded hash must start with '$'")
	}
	parts = parts[1:]
	if len(parts) == 0 || len(parts) > 5 {
		return nil, errors.InvalidEncoding("", "expected 1 to 5 '$'-separated segments")
	}

	alg, err := ParseAlgorithm(parts[0])
	if err != nil {
		return nil, err
	}
	e := &Encoded{Algorithm: alg, Version: VersionDefault}

	rest := parts[1:]
	if len(rest) > 0 && strings.HasPrefix(rest[0], "v=") {
		if e.Version, err = ParseVersion(rest[0][2:]); err != nil {
			return nil, err
		}
		rest = rest[1:]
	}
	if len(rest) > 0 && strings.Contains(rest[0], "=") {
		if err := e.parseParams(rest[0]); err != nil {
			return nil, err
		}
		rest = rest[1:]
	}

	switch len(rest) {
	case 2:
		if e.Hash, err = decodeField("hash", rest[1]); err != nil {
			return nil, err
		}
		if len(e.Hash) < MinOutputLength || len(e.Hash) > MaxEncodedHashLength {
			return nil, errors.InvalidEncoding("hash", "hash must be between 4 and 64 bytes")
		}
		fallthrough
	case 1:
		if e.Salt, err = decodeField("salt", rest[0]); err != nil {
			return nil, err
		}
	case 0:
	default:
		return nil, errors.InvalidEncoding("", "unexpected segment after the hash")
	}
	return e, nil
}

// check rejects what parses but cannot be derived.
func (e *Encoded) check() error {
	if e.Salt == nil {
		return unusable("salt", "missing salt")
	}
	if len(e.Salt) < MinSaltLength {
		return unusable("salt", "salt is shorter than 8 bytes")
	}
	if e.Hash == nil {
		return unusable("hash", "missing hash")
	}

	params, err := ParamsFromCost(e.Params.MemoryCost, e.Params.TimeCost, e.Params.Parallelism, uint32(len(e.Hash)))
	if err != nil {
		return errors.New(errors.PhaseDecode, errors.KindInvalidParams).
			Field("params").
			Detail("encoded parameters are not accepted").
			Cause(err).
			Build()
	}
	e.Params = params
	return nil
}

func unusable(field, detail string) *errors.Error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidParams).
		Field(field).
		Detail("%s", detail).
		Build()
}

func (e *Encoded) parseParams(segment string) error {
	seen := make(map[string]bool, 5)
	for _, pair := range strings.Split(segment, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return errors.InvalidEncoding("params", "malformed parameter "+quote(pair))
		}
		if seen[key] {
			return errors.InvalidEncoding(key, "duplicate parameter")
		}
		seen[key] = true

		var err error
		switch key {
		case "m":
			e.Params.MemoryCost, err = parseDecimal(value)
		case "t":
			e.Params.TimeCost, err = parseDecimal(value)
		case "p":
			e.Params.Parallelism, err = parseDecimal(value)
		case "keyid":
			if e.KeyID, err = decodeField(key, value); err == nil && len(e.KeyID) > MaxKeyIDLength {
				return errors.InvalidEncoding(key, "keyid is longer than 8 bytes")
			}
		case "data":
			if e.Data, err = decodeField(key, value); err == nil && len(e.Data) > MaxDataLength {
				return errors.InvalidEncoding(key, "data is longer than 32 bytes")
			}
		default:
			return errors.InvalidEncoding(key, "unknown parameter")
		}
		if err != nil {
			if _, structured := err.(*errors.Error); structured {
				return err
			}
			return errors.InvalidEncoding(key, "invalid decimal "+quote(value))
		}
	}
	return nil
}

func decodeField(field, s string) ([]byte, error) {
	if s == "" {
		return nil, errors.InvalidEncoding(field, "empty value")
	}
	data, err := b64.DecodeString(s)
	if err != nil || strings.ContainsAny(s, "\r\n") {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidEncoding).
			Field(field).
			Detail("invalid unpadded base64").
			Cause(err).
			Build()
	}
	return data, nil
}

func quote(s string) string {
	if len(s) > 32 {
		s = s[:32] + "..."
	}
	return "'" + s + "'"
}
