package errs

import (
	"errors"
	"testing"
)

func TestCoreError(t *testing.T) {
	t.Run("Error with subject", func(t *testing.T) {
		err := &CoreError{
			Op:      "RotateKey",
			Subject: "tenant-data-key",
			Err:     ErrNotFound,
		}
		expected := `RotateKey "tenant-data-key": not found`
		if err.Error() != expected {
			t.Errorf("Error() = %q, want %q", err.Error(), expected)
		}
	})

	t.Run("Error without subject", func(t *testing.T) {
		err := &CoreError{
			Op:  "VerifyTOTP",
			Err: ErrInvalidInput,
		}
		expected := "VerifyTOTP: invalid input"
		if err.Error() != expected {
			t.Errorf("Error() = %q, want %q", err.Error(), expected)
		}
	})

	t.Run("Unwrap returns underlying error", func(t *testing.T) {
		underlying := ErrIntegrity
		err := &CoreError{Op: "Unwrap", Err: underlying}
		if err.Unwrap() != underlying {
			t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), underlying)
		}
		if !errors.Is(err, underlying) {
			t.Error("errors.Is should return true for underlying error")
		}
	})
}

func TestWrap(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := Wrap("op", "subject", nil); got != nil {
			t.Errorf("Wrap(nil) = %v, want nil", got)
		}
	})

	t.Run("non-nil error wraps as CoreError", func(t *testing.T) {
		err := Wrap("GetKey", "payments", ErrNotFound)
		var coreErr *CoreError
		if !errors.As(err, &coreErr) {
			t.Fatal("expected *CoreError")
		}
		if coreErr.Op != "GetKey" || coreErr.Subject != "payments" {
			t.Errorf("unexpected fields: %+v", coreErr)
		}
		if !errors.Is(err, ErrNotFound) {
			t.Error("errors.Is should match ErrNotFound through Wrap")
		}
	})
}

func TestErrorVariables(t *testing.T) {
	errorVars := map[string]error{
		"ErrIO":            ErrIO,
		"ErrIntegrity":     ErrIntegrity,
		"ErrNotFound":      ErrNotFound,
		"ErrInvariant":     ErrInvariant,
		"ErrInvalidInput":  ErrInvalidInput,
		"ErrConfiguration": ErrConfiguration,
	}

	for name, err := range errorVars {
		if err == nil {
			t.Errorf("%s is nil", name)
		}
		if err.Error() == "" {
			t.Errorf("%s has empty message", name)
		}
	}

	seen := make(map[string]string)
	for name, err := range errorVars {
		msg := err.Error()
		if prevName, exists := seen[msg]; exists {
			t.Errorf("%s and %s have the same error message: %q", name, prevName, msg)
		}
		seen[msg] = name
	}
}
