package model

import (
	"errors"
	"regexp"
)

var (
	namePattern     = regexp.MustCompile(`^[a-zA-Z ]*$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z]*$`)
)

// Sentinel validation kinds. A *ValidationError matches one of them via errors.Is.
var (
	ErrEmpty         = errors.New("empty")
	ErrInvalidFormat = errors.New("invalid-format")
)

// ValidationError reports a field value that failed validation. Message is
// suitable for showing to the administrator as-is.
type ValidationError struct {
	Field   string
	Kind    error // ErrEmpty or ErrInvalidFormat
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets errors.Is match the error against its kind sentinel.
func (e *ValidationError) Is(target error) bool {
	return target == e.Kind
}

// IsValidName reports whether s consists only of ASCII letters and spaces.
// The empty string is valid; use CheckName when a value is required.
func IsValidName(s string) bool {
	return namePattern.MatchString(s)
}

// IsValidUsername reports whether s consists only of ASCII letters. The empty
// string is valid; use CheckUsername when a value is required.
func IsValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// CheckName returns nil when s is a non-empty valid name.
func CheckName(s string) error {
	if s == "" {
		return &ValidationError{Field: "name", Kind: ErrEmpty, Message: "Please enter your name"}
	}
	if !IsValidName(s) {
		return &ValidationError{Field: "name", Kind: ErrInvalidFormat, Message: "Invalid name format"}
	}
	return nil
}

// CheckUsername returns nil when s is a non-empty valid username.
func CheckUsername(s string) error {
	if s == "" {
		return &ValidationError{Field: "username", Kind: ErrEmpty, Message: "Please enter your Username"}
	}
	if !IsValidUsername(s) {
		return &ValidationError{Field: "username", Kind: ErrInvalidFormat, Message: "Invalid Username format"}
	}
	return nil
}

// ValidateName is CheckName without the non-empty requirement. It is the
// check applied when a whole configuration form is bound, where an empty name
// clears the field.
func ValidateName(s string) error {
	if !IsValidName(s) {
		return &ValidationError{Field: "name", Kind: ErrInvalidFormat, Message: "Invalid name format"}
	}
	return nil
}

// ValidateUsername is CheckUsername without the non-empty requirement.
func ValidateUsername(s string) error {
	if !IsValidUsername(s) {
		return &ValidationError{Field: "username", Kind: ErrInvalidFormat, Message: "Invalid Username format"}
	}
	return nil
}
