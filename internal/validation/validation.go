// Package validation implements the client-side field checks applied before
// any account data is sent to the server.
package validation

import (
	"errors"
	"strings"
	"unicode"
)

const (
	validCharacters   = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_"
	specialCharacters = "!@#$%^&*()-_=+[]{}|;:',.<>?/~`\\"

	// schoolPlaceholder is the picker's unselected entry.
	schoolPlaceholder = "Select school..."
)

var (
	ErrInvalidUsername    = errors.New("username must be between 3 and 32 characters long and can only contain letters, numbers, and underscores")
	ErrInvalidDisplayName = errors.New("display name must be between 3 and 64 characters long and can only contain letters, numbers, underscores, dashes, and spaces")
	ErrInvalidPassword    = errors.New("password must be between 8 and 64 characters long and contain at least one digit, one uppercase letter, one lowercase letter, and one special character")
	ErrInvalidSchool      = errors.New("a school must be selected")
)

// Username checks account name rules: 3-32 characters from the restricted set.
func Username(username string) error {
	if len(username) < 3 || len(username) > 32 || !onlyFrom(username, validCharacters) {
		return ErrInvalidUsername
	}
	return nil
}

// DisplayName checks display name rules: 3-64 characters, additionally
// allowing spaces and dashes.
func DisplayName(displayName string) error {
	if len(displayName) < 3 || len(displayName) > 64 || !onlyFrom(displayName, validCharacters+" -") {
		return ErrInvalidDisplayName
	}
	return nil
}

// Password checks complexity rules: 8-64 characters with at least one digit,
// uppercase, lowercase, and special character, nothing outside the allowed set.
func Password(password string) error {
	if len(password) < 8 || len(password) > 64 {
		return ErrInvalidPassword
	}
	var digit, upper, lower, special bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialCharacters, r):
			special = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		}
	}
	if !digit || !upper || !lower || !special || !onlyFrom(password, validCharacters+specialCharacters) {
		return ErrInvalidPassword
	}
	return nil
}

// School checks that a real school was picked.
func School(school string) error {
	if school == "" || school == schoolPlaceholder {
		return ErrInvalidSchool
	}
	return nil
}

func onlyFrom(value, allowed string) bool {
	for _, r := range value {
		if !strings.ContainsRune(allowed, r) {
			return false
		}
	}
	return true
}
