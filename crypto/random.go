package crypto

import (
	"crypto/rand"

	"github.com/ol-s-cloud/circle-core-sub001/internal/obslog"
)

// RandomBytes returns n cryptographically secure random bytes, suitable for
// TOTP secrets, key material, and recovery-code entropy.
func RandomBytes(n int) ([]byte, error) {
	logger := obslog.New("crypto", "RandomBytes").WithField("size", n)
	logger.Entry("drawing random bytes")
	defer logger.Exit()

	if n <= 0 {
		return nil, ErrInvalidSize
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		logger.WithError(err, "rand.Read").Error("failed to draw random bytes")
		return nil, err
	}

	logger.WithFields(obslog.SecretPreview("result", buf)).Debug("random bytes drawn")
	return buf, nil
}
