package crypto

import (
	"crypto/sha256"

	"github.com/ol-s-cloud/circle-core-sub001/internal/obslog"
	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2Iterations is the iteration count used to derive recovery-code
// hashes. 100,000 rounds of HMAC-SHA256 balances verification latency
// against brute-force cost for the short, low-entropy codes users type in.
const PBKDF2Iterations = 100_000

// PBKDF2KeyLen is the derived key length in bytes.
const PBKDF2KeyLen = 32

// DeriveKey runs PBKDF2-HMAC-SHA256 over password with salt, returning a
// PBKDF2KeyLen-byte derived key. Used to hash recovery codes for storage;
// never used for TOTP or key-wrap material, which come from RandomBytes.
func DeriveKey(password, salt []byte) []byte {
	logger := obslog.New("crypto", "DeriveKey").WithField("iterations", PBKDF2Iterations)
	logger.Entry("deriving key via PBKDF2")
	defer logger.Exit()

	derived := pbkdf2.Key(password, salt, PBKDF2Iterations, PBKDF2KeyLen, sha256.New)

	logger.Debug("key derived")
	return derived
}
