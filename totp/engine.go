package totp

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	gocrypto "github.com/ol-s-cloud/circle-core-sub001/crypto"
	"github.com/ol-s-cloud/circle-core-sub001/internal/obslog"
)

// SecretSize is the length in bytes of a generated TOTP secret.
const SecretSize = 32

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// TOTPEngine computes and verifies time-based one-time passwords under a
// fixed TOTPConfig.
type TOTPEngine struct {
	Config TOTPConfig
	now    TimeProvider
}

// NewTOTPEngine returns an engine bound to config, using the package
// default clock.
func NewTOTPEngine(config TOTPConfig) *TOTPEngine {
	return &TOTPEngine{Config: config, now: GetDefaultTimeProvider()}
}

// SetTimeProvider overrides the clock GenerateTOTP/VerifyTOTP use when no
// explicit time is supplied. Tests use this to pin "now".
func (e *TOTPEngine) SetTimeProvider(tp TimeProvider) {
	if tp == nil {
		tp = GetDefaultTimeProvider()
	}
	e.now = tp
}

// GenerateSecret draws a fresh SecretSize-byte TOTP secret.
func (e *TOTPEngine) GenerateSecret() ([]byte, error) {
	return gocrypto.RandomBytes(SecretSize)
}

// FormatSecret renders secret as unpadded uppercase RFC 4648 base32.
func (e *TOTPEngine) FormatSecret(secret []byte) string {
	return gocrypto.EncodeBase32(secret)
}

// ParseSecret decodes a base32 secret previously produced by FormatSecret.
func (e *TOTPEngine) ParseSecret(formatted string) ([]byte, error) {
	return gocrypto.DecodeBase32(formatted)
}

// ProvisioningURI builds the otpauth:// URI authenticator apps scan to
// import this secret.
func (e *TOTPEngine) ProvisioningURI(account string, secret []byte) string {
	label := fmt.Sprintf("%s:%s", url.PathEscape(e.Config.Issuer), url.PathEscape(account))

	q := url.Values{}
	q.Set("secret", gocrypto.EncodeBase32(secret))
	q.Set("issuer", e.Config.Issuer)
	q.Set("algorithm", strings.ToUpper(string(e.Config.Algorithm)))
	q.Set("digits", fmt.Sprintf("%d", e.Config.Digits))
	q.Set("period", fmt.Sprintf("%d", int(e.Config.Interval.Seconds())))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, q.Encode())
}

// GenerateTOTP computes the TOTP value for secret at atTime, defaulting to
// the engine's current time when atTime is the zero value.
func (e *TOTPEngine) GenerateTOTP(secret []byte, atTime time.Time) (string, error) {
	if atTime.IsZero() {
		atTime = e.now.Now()
	}
	counter, err := gocrypto.UnixCounter(atTime, e.Config.Interval)
	if err != nil {
		return "", err
	}
	return gocrypto.HOTP(secret, counter, e.Config.Digits, e.Config.Algorithm)
}

// VerifyTOTP reports whether code matches secret at atTime (or the
// engine's current time), checked against every step within ValidWindow on
// either side. Non-digit or wrong-length input fails without MAC work.
func (e *TOTPEngine) VerifyTOTP(secret []byte, code string, atTime time.Time) bool {
	logger := obslog.New("totp", "VerifyTOTP")
	logger.Entry("verifying totp code")
	defer logger.Exit()

	if len(code) != e.Config.Digits || !digitsOnly.MatchString(code) {
		logger.Debug("rejected malformed code without computing MAC")
		return false
	}

	if atTime.IsZero() {
		atTime = e.now.Now()
	}

	codeBytes := []byte(code)
	for k := -e.Config.ValidWindow; k <= e.Config.ValidWindow; k++ {
		shifted := atTime.Add(time.Duration(k) * e.Config.Interval)
		candidate, err := e.GenerateTOTP(secret, shifted)
		if err != nil {
			logger.WithError(err, "GenerateTOTP").Error("failed computing candidate code")
			return false
		}
		if gocrypto.ConstantTimeEqual(codeBytes, []byte(candidate)) {
			logger.WithField("skew_steps", k).Debug("code matched within valid window")
			return true
		}
	}

	return false
}

// LooksLikeTOTPCode reports whether submitted has the shape of a TOTP
// code for digits digits: all-numeric, exact length. Used by MFAService to
// dispatch between TOTP and recovery-code verification.
func LooksLikeTOTPCode(submitted string, digits int) bool {
	return len(submitted) == digits && digitsOnly.MatchString(submitted)
}
