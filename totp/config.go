package totp

import (
	"fmt"
	"time"

	gocrypto "github.com/ol-s-cloud/circle-core-sub001/crypto"
	"github.com/ol-s-cloud/circle-core-sub001/errs"
)

// DefaultInterval is the standard RFC 6238 step length.
const DefaultInterval = 30 * time.Second

// TOTPConfig is immutable once passed to a TOTPEngine.
type TOTPConfig struct {
	Digits      int
	Interval    time.Duration
	Algorithm   gocrypto.HOTPHash
	Issuer      string
	ValidWindow int
}

// NewTOTPConfig validates digits (6 or 8), algorithm, and valid window at
// construction time, defaulting Interval to 30s when zero or negative.
func NewTOTPConfig(digits int, interval time.Duration, algorithm gocrypto.HOTPHash, issuer string, validWindow int) (TOTPConfig, error) {
	if digits != 6 && digits != 8 {
		return TOTPConfig{}, fmt.Errorf("%w: digits must be 6 or 8, got %d", errs.ErrConfiguration, digits)
	}
	switch algorithm {
	case gocrypto.HOTPHashSHA1, gocrypto.HOTPHashSHA256, gocrypto.HOTPHashSHA512, "":
	default:
		return TOTPConfig{}, fmt.Errorf("%w: unknown algorithm %q", errs.ErrConfiguration, algorithm)
	}
	if validWindow < 0 {
		return TOTPConfig{}, fmt.Errorf("%w: valid_window must be non-negative, got %d", errs.ErrConfiguration, validWindow)
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if algorithm == "" {
		algorithm = gocrypto.HOTPHashSHA1
	}

	return TOTPConfig{
		Digits:      digits,
		Interval:    interval,
		Algorithm:   algorithm,
		Issuer:      issuer,
		ValidWindow: validWindow,
	}, nil
}
