package errors

import (
	"strings"
	"unicode"
)

// ValidateProblemID validates a problem identifier before it is placed in a
// request path. Identifiers are backend file names such as "two-sum.md".
//
// Rejected:
//   - empty identifiers
//   - more than 256 characters
//   - control characters and null bytes
//   - path separators and traversal sequences
func ValidateProblemID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidPath, "problem identifier cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidPath, "problem identifier too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "problem identifier contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidPath, "problem identifier contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateParticipantSlot checks that slot addresses one side of a match.
func ValidateParticipantSlot(slot int) error {
	if slot != 1 && slot != 2 {
		return New(ErrCodeInvalidInput, "participant must be 1 or 2, got %d", slot)
	}
	return nil
}

// ValidateURL validates a backend base URL.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
