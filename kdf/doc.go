// Package kdf decodes boundary parameters and runs Argon2.
//
// # Parameter codec
//
// The boundary passes plain integers. [Decode] turns them into an
// [Algorithm] and [Version] and never fails: codes other than 0 and 1 select
// Argon2id, codes other than 0x10 select version 0x13. Cost parameters are a
// separate step, [NewParams], which expands the memory exponent and rejects
// combinations Argon2 does not define:
//
//	alg, ver := kdf.Decode(algorithmCode, versionCode)
//	params, err := kdf.NewParams(12, 3, 1, 32) // 4 MiB, 3 passes, 1 lane
//	if err != nil {
//	    // errors.Is(err, errors.ErrInvalidParams)
//	}
//	tag, err := kdf.Hash(password, salt, alg, ver, params)
//
// # Derivation
//
// Argon2i and Argon2id at version 0x13 without secret or associated data
// run on golang.org/x/crypto/argon2. Argon2d, version 0x10, more than 255
// lanes, and derivations with a secret or associated data run on an internal
// RFC 9106 implementation. Both produce identical tags where they overlap.
//
// # Encoded hashes
//
// [Encode] and [DecodeEncoded] handle the PHC string format with unpadded
// standard base64. [Verify] decodes, recomputes and compares with
// crypto/subtle.
package kdf
