// Package crypto implements the cryptographic primitives shared by the MFA
// and key-management core: CSPRNG draws, HMAC/HOTP counters, RFC 4648
// base32/base64 codecs, a PBKDF2 password-hash KDF, and ChaCha20-Poly1305
// authenticated encryption used to wrap data keys under a master key.
//
// Nothing in this package is aware of TOTP, recovery codes, or keystores —
// those live in the totp, recovery, and keys packages. This package only
// exposes the low-level operations those packages compose, plus the
// constant-time comparison and secure-wipe helpers required wherever secret
// material is compared or dropped.
//
//	secret, _ := crypto.RandomBytes(32)
//	wrapped, _ := crypto.Seal(masterKey, secret)
//	plain, err := crypto.Open(masterKey, wrapped) // ErrIntegrity on tamper
//	crypto.ZeroBytes(secret)
//
// UnixCounter is the one place this package reads a time.Time; callers that
// need a mockable clock (TOTP step calculation, key-rotation age checks) hold
// their own TimeProvider and pass the resulting time.Time in.
package crypto
