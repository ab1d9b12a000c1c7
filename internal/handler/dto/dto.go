// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// MessageResponse carries a human readable outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// ValidationError reports the first invalid field of a request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validation limits.
const (
	MinPasswordLength    = 8
	MinTitleLength       = 5
	MaxTitleLength       = 120
	MinDescriptionLength = 300
	MaxDescriptionLength = 3000

	// MaxLimit and MaxSkip keep skip*limit well inside int range.
	MaxLimit = 1000
	MaxSkip  = 1 << 20
)

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "is required")
	}
	return nil
}

func checkEmail(field, value string) error {
	if value == "" {
		return invalid(field, "is required")
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || addr.Name != "" {
		return invalid(field, "must be a valid email address")
	}
	return nil
}

func checkPassword(field, value string) error {
	if utf8.RuneCountInString(value) < MinPasswordLength {
		return invalid(field, "must be at least %d characters", MinPasswordLength)
	}
	return nil
}

func checkLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		return invalid(field, "must be between %d and %d characters", min, max)
	}
	return nil
}
