package middleware

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/bryanwahyu/errexplain/internal/domain/apperr"
)

// Input validation and sanitization utilities

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9_.:-]{1,128}$`)

// ValidateClientID checks the pseudonymous client token format.
func ValidateClientID(clientID string) error {
	if clientID == "" {
		return apperr.Invalid("clientId", "is required")
	}
	if !tokenPattern.MatchString(clientID) {
		return apperr.Invalid("clientId", "must be 1-128 characters of letters, digits, '.', '_', ':' or '-'")
	}
	return nil
}

// ValidateFingerprint checks the vote fingerprint format.
func ValidateFingerprint(fp string) error {
	if fp == "" {
		return apperr.Invalid("userFingerprint", "is required")
	}
	if !tokenPattern.MatchString(fp) {
		return apperr.Invalid("userFingerprint", "has an invalid format")
	}
	return nil
}

// ValidateSubmissionID checks the submission id is a UUID.
func ValidateSubmissionID(id string) error {
	if id == "" {
		return apperr.Invalid("id", "is required")
	}
	if err := uuid.Validate(id); err != nil {
		return apperr.Invalid("id", "must be a UUID")
	}
	return nil
}

// ValidateShareID checks the share token is a UUID.
func ValidateShareID(id string) error {
	if id == "" {
		return apperr.Invalid("shareId", "is required")
	}
	if err := uuid.Validate(id); err != nil {
		return apperr.Invalid("shareId", "must be a UUID")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' || r == '\r' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
