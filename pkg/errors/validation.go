package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// identifierRegex matches identifiers accepted by the declaration grammar (\w+).
var identifierRegex = regexp.MustCompile(`^\w+$`)

// ValidateNodeID validates a node id.
// Node ids become part of generated variable names (inp_<id>_<port>), so they are
// restricted to word characters.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "node id too long (max 128 characters)")
	}
	if !identifierRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid node id: %q (only letters, digits and '_')", id)
	}
	return nil
}

// ValidateIdentifier validates a port name, type name, define name or external name.
// The kind argument names what is being validated in the error message.
func ValidateIdentifier(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", kind)
	}
	if !identifierRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid %s: %q", kind, name)
	}
	return nil
}

// ValidateDocumentName validates a stored graph document name.
// It rejects names that could be used for path traversal.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 256 characters
//   - No control characters or null bytes
//   - No path separators or traversal sequences
func ValidateDocumentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "document name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPath, "document name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "document name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPath, "document name contains invalid characters: %q", pattern)
		}
	}

	return nil
}
