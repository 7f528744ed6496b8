package crypto

import (
	"errors"

	"github.com/ol-s-cloud/circle-core-sub001/errs"
)

// Package-local sentinels kept distinct from errs.ErrInvalidInput so callers
// can tell a malformed argument from a corrupted ciphertext; both satisfy
// errors.Is against the shared errs sentinels they wrap.
var (
	// ErrInvalidSize indicates a size or parameter argument was out of range:
	// a zero or negative byte count, a key of the wrong length, an HOTP digit
	// count outside 1..10, an unsupported HOTP hash, or a step interval
	// shorter than one second.
	ErrInvalidSize = wrapInvalidInput(errors.New("invalid size requested"))

	// ErrCiphertextTooShort indicates a wrapped value is shorter than a
	// nonce plus AEAD tag and cannot possibly be valid.
	ErrCiphertextTooShort = wrapInvalidInput(errors.New("ciphertext too short"))
)

func wrapInvalidInput(err error) error {
	return errors.Join(err, errs.ErrInvalidInput)
}
