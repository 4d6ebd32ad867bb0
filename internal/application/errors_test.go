package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/brendan-liang/softdev-sat/internal/persistence"
)

func TestSentinelHierarchy(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		base error
	}{
		{ErrUserNotFound, ErrNotFound},
		{ErrGroupNotFound, ErrNotFound},
		{ErrEventNotFound, ErrNotFound},
		{ErrUserAlreadyExists, ErrAlreadyExists},
		{ErrGroupAlreadyExists, ErrAlreadyExists},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.base) {
			t.Errorf("%v does not match base sentinel %v", tc.err, tc.base)
		}
	}
	if errors.Is(ErrUserNotFound, ErrGroupNotFound) {
		t.Errorf("entity sentinels must not match each other")
	}

	wrapped := fmt.Errorf("handling request: %w", ErrEventNotFound)
	if !errors.Is(wrapped, ErrNotFound) {
		t.Errorf("wrapping lost the sentinel")
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	vErr := &ValidationError{}
	if vErr.HasErrors() {
		t.Fatalf("empty ValidationError reports errors")
	}
	vErr.add("username", "username is required")
	if !vErr.HasErrors() {
		t.Fatalf("populated ValidationError reports no errors")
	}
	if vErr.Error() != "validation failed" {
		t.Fatalf("unexpected message: %q", vErr.Error())
	}

	var target *ValidationError
	if !errors.As(error(vErr), &target) {
		t.Fatalf("errors.As failed to unwrap ValidationError")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := map[string]error{
		"not_found":           ErrUserNotFound,
		"already_exists":      ErrGroupAlreadyExists,
		"invalid_credentials": ErrInvalidCredentials,
		"validation":          &ValidationError{FieldErrors: map[string]string{"f": "m"}},
		"unexpected":          errors.New("boom"),
	}
	for want, err := range cases {
		if got := ErrorKind(err); got != want {
			t.Errorf("ErrorKind(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestIsMissing(t *testing.T) {
	t.Parallel()

	if !isMissing(persistence.ErrNotFound) {
		t.Fatalf("raw sentinel not recognized")
	}
	if !isMissing(fmt.Errorf("lookup: %w", persistence.ErrNotFound)) {
		t.Fatalf("wrapped sentinel not recognized")
	}
	if isMissing(errors.New("other")) {
		t.Fatalf("unrelated error recognized as missing")
	}
}
