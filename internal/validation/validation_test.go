package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestUsername(t *testing.T) {
	t.Parallel()

	valid := []string{"abc", "alice_99", strings.Repeat("a", 32)}
	for _, name := range valid {
		if err := Username(name); err != nil {
			t.Errorf("Username(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", "ab", strings.Repeat("a", 33), "has space", "dash-ed", "ümlaut"}
	for _, name := range invalid {
		if err := Username(name); !errors.Is(err, ErrInvalidUsername) {
			t.Errorf("Username(%q) = %v, want ErrInvalidUsername", name, err)
		}
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	valid := []string{"Bob", "Alice Liddell", "Mary-Jane_3", strings.Repeat("a", 64)}
	for _, name := range valid {
		if err := DisplayName(name); err != nil {
			t.Errorf("DisplayName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", "ab", strings.Repeat("a", 65), "semi;colon"}
	for _, name := range invalid {
		if err := DisplayName(name); !errors.Is(err, ErrInvalidDisplayName) {
			t.Errorf("DisplayName(%q) = %v, want ErrInvalidDisplayName", name, err)
		}
	}
}

func TestPassword(t *testing.T) {
	t.Parallel()

	valid := []string{"Str0ng-pass!", "aB3$efgh", "A1b!" + strings.Repeat("x", 60)}
	for _, password := range valid {
		if err := Password(password); err != nil {
			t.Errorf("Password(%q) = %v, want nil", password, err)
		}
	}

	invalid := map[string]string{
		"too short":     "A1b!xyz",
		"too long":      "A1b!" + strings.Repeat("x", 61),
		"no digit":      "Abcdefg!",
		"no uppercase":  "abc1efg!",
		"no lowercase":  "ABC1EFG!",
		"no special":    "Abc1efgh",
		"outside range": "Abc1efg! space",
	}
	for name, password := range invalid {
		if err := Password(password); !errors.Is(err, ErrInvalidPassword) {
			t.Errorf("%s: Password(%q) = %v, want ErrInvalidPassword", name, password, err)
		}
	}
}

func TestSchool(t *testing.T) {
	t.Parallel()

	if err := School("Hogwarts"); err != nil {
		t.Errorf("School(Hogwarts) = %v, want nil", err)
	}
	for _, school := range []string{"", "Select school..."} {
		if err := School(school); !errors.Is(err, ErrInvalidSchool) {
			t.Errorf("School(%q) = %v, want ErrInvalidSchool", school, err)
		}
	}
}
