package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// modulePathRegex matches module paths: slash-separated identifiers.
var modulePathRegex = regexp.MustCompile(`^\w+(?:/\w+)*$`)

// functionIDRegex matches function identifiers: a module path, the "::"
// separator, and a function name.
var functionIDRegex = regexp.MustCompile(`^\w+(?:/\w+)*::\w+$`)

// ValidateModulePath validates a module path received from an untrusted
// surface such as a query parameter. It rejects anything that is not a
// plain slash-separated chain of identifiers, which also rules out path
// traversal and injection attempts.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No control characters
//   - Slash-separated identifiers only (no "..", no absolute paths)
func ValidateModulePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "module path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "module path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "module path contains invalid characters")
		}
	}

	if !modulePathRegex.MatchString(path) {
		return New(ErrCodeInvalidPath, "invalid module path: %q", path)
	}

	return nil
}

// ValidateFunctionID validates a function identifier of the form
// "path/to/module::name".
func ValidateFunctionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "function id cannot be empty")
	}

	if !functionIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid function id: %q", id)
	}

	return nil
}

// ValidateRootFile validates a root source file path supplied on the
// command line. Unlike module paths this may be an arbitrary filesystem
// path, so only the dangerous cases are rejected.
func ValidateRootFile(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "root file cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "root file path contains invalid characters")
		}
	}

	if !strings.HasSuffix(path, ".speck") {
		return New(ErrCodeInvalidInput, "root file must have a .speck extension: %q", path)
	}

	return nil
}

// ValidateFormat validates an output format name.
func ValidateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "invalid format %q (allowed: %s)", format, strings.Join(allowed, ", "))
}
