package auth

import (
	"errors"
	"regexp"
)

var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrInvalidName  = errors.New("name must be between 2 and 50 characters")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail checks the email shape before any remote call.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateName bounds the display name for signup and profile updates.
func ValidateName(name string) error {
	if len(name) < 2 || len(name) > 50 {
		return ErrInvalidName
	}
	return nil
}
