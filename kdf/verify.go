package kdf

import (
	"crypto/subtle"
	"unicode/utf8"

	"github.com/wippyai/argon2-wasm/errors"
)

// Verify recomputes the derivation described by encoded over password and
// compares the result in constant time.
//
// A mismatch is (false, nil). A non-UTF-8 or malformed encoded string is
// reported as an error so callers can tell it apart from a wrong password.
// A well-formed string that cannot be derived fails with invalid_params.
func Verify(password, encoded []byte) (bool, error) {
	if !utf8.Valid(encoded) {
		return false, errors.InvalidUTF8(errors.PhaseVerify, "encoded", encoded)
	}

	e, err := DecodeEncoded(string(encoded))
	if err != nil {
		return false, err
	}
	return e.Verify(password)
}

// Verify recomputes e.Hash from password with e's parameters.
func (e *Encoded) Verify(password []byte) (bool, error) {
	got, err := Key(Input{Password: password, Salt: e.Salt, Data: e.Data}, e.Algorithm, e.Version, e.Params)
	if err != nil {
		return false, errors.Wrap(errors.PhaseVerify, errors.KindInvalidParams, err, "recompute hash")
	}
	defer clear(got)
	return subtle.ConstantTimeCompare(got, e.Hash) == 1, nil
}
