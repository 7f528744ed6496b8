package crypto

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/ol-s-cloud/circle-core-sub001/internal/obslog"
)

// HOTPHash selects the HMAC hash function an HOTP/TOTP counter is signed
// with. RFC 4226/6238 default to SHA1; SHA256/SHA512 are offered for
// deployments that require a stronger digest.
type HOTPHash string

const (
	HOTPHashSHA1   HOTPHash = "SHA1"
	HOTPHashSHA256 HOTPHash = "SHA256"
	HOTPHashSHA512 HOTPHash = "SHA512"
)

func (h HOTPHash) newHash() (func() hash.Hash, error) {
	switch h {
	case HOTPHashSHA1, "":
		return sha1.New, nil
	case HOTPHashSHA256:
		return sha256.New, nil
	case HOTPHashSHA512:
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("%w: unsupported HOTP hash %q", ErrInvalidSize, h)
	}
}

// HOTP computes the RFC 4226 HMAC-based one-time password for counter using
// key, truncated to digits decimal digits via RFC 4226 dynamic truncation.
func HOTP(key []byte, counter uint64, digits int, algo HOTPHash) (string, error) {
	logger := obslog.New("crypto", "HOTP").WithField("digits", digits).WithField("algo", string(algo))
	logger.Entry("computing HOTP value")
	defer logger.Exit()

	if digits <= 0 || digits > 10 {
		return "", fmt.Errorf("%w: digits must be between 1 and 10", ErrInvalidSize)
	}

	newHash, err := algo.newHash()
	if err != nil {
		logger.WithError(err, "newHash").Error("unsupported hash algorithm")
		return "", err
	}

	var counterBytes [8]byte
	binary.BigEndian.PutUint64(counterBytes[:], counter)

	mac := hmac.New(newHash, key)
	mac.Write(counterBytes[:])
	sum := mac.Sum(nil)

	code := dynamicTruncate(sum, digits)
	logger.Debug("HOTP value computed")
	return code, nil
}

// dynamicTruncate applies the RFC 4226 §5.3 dynamic truncation to an HMAC
// digest and formats the result as a zero-padded decimal string of the
// requested width.
func dynamicTruncate(sum []byte, digits int) string {
	offset := sum[len(sum)-1] & 0x0f
	binCode := (uint32(sum[offset]&0x7f) << 24) |
		(uint32(sum[offset+1]) << 16) |
		(uint32(sum[offset+2]) << 8) |
		uint32(sum[offset+3])

	mod := uint64(1)
	for i := 0; i < digits; i++ {
		mod *= 10
	}
	value := uint64(binCode) % mod

	return fmt.Sprintf("%0*d", digits, value)
}
