package crypto

import "crypto/subtle"

// ConstantTimeEqual reports whether a and b hold the same bytes, taking time
// independent of where they first differ. Used to compare TOTP codes,
// recovery-code hashes, and other secret-derived values where a
// timing-leaky == would let an attacker narrow a guess byte by byte.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
