// Package errs defines the sentinel errors shared by every package in this
// module. Callers use errors.Is against these sentinels rather than matching
// on string content; CoreError wraps them with operation context the same
// way toxcore's ToxNetError wraps network failures.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrIO indicates a failure reading or writing persisted state (keystore
	// file, master key file) on the underlying filesystem.
	ErrIO = errors.New("io failure")

	// ErrIntegrity indicates persisted or authenticated data failed to
	// verify: a wrapped key's AEAD tag didn't match, the keystore document is
	// not valid JSON, or a loaded keystore violates its invariants.
	ErrIntegrity = errors.New("integrity check failed")

	// ErrNotFound indicates the requested key, enrollment, or record does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvariant names the error kind for an operation that would break a
	// keystore invariant, such as deleting the active key. KeyManager.DeleteKey
	// reports that case as a false return instead of this error, and
	// invariant violations found in a loaded keystore are ErrIntegrity.
	ErrInvariant = errors.New("invariant violated")

	// ErrInvalidInput indicates a caller-supplied argument was malformed
	// (a non-positive recovery-code count, a non-positive byte count, a
	// wrapped value too short to hold a nonce and tag).
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates a config value is out of the range the
	// component requires (TOTP digits other than 6 or 8, an unknown
	// algorithm, a negative valid window, a rotation policy missing its
	// threshold).
	ErrConfiguration = errors.New("invalid configuration")
)

// CoreError wraps an underlying sentinel with the operation and subject it
// occurred on, while still satisfying errors.Is/errors.As against the
// sentinel via Unwrap.
//
//	return &errs.CoreError{Op: "RotateKey", Subject: name, Err: errs.ErrNotFound}
//
//	var coreErr *errs.CoreError
//	if errors.As(err, &coreErr) && errors.Is(coreErr.Err, errs.ErrNotFound) {
//	    // handle missing key
//	}
type CoreError struct {
	Op      string // operation that failed, e.g. "RotateKey", "VerifyTOTP"
	Subject string // name/id the operation concerned, empty if not applicable
	Err     error  // underlying sentinel, inspect with errors.Is/errors.As
}

func (e *CoreError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s %q: %v", e.Op, e.Subject, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CoreError) Unwrap() error {
	return e.Err
}

// Wrap builds a CoreError for op/subject around err. If err is nil, Wrap
// returns nil so callers can write `return errs.Wrap(op, subject, err)`
// unconditionally at the end of a function.
func Wrap(op, subject string, err error) error {
	if err == nil {
		return nil
	}
	return &CoreError{Op: op, Subject: subject, Err: err}
}
