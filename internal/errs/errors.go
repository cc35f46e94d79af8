package errs

import (
	"errors"
)

// Category classifies a discovery failure for user-facing guidance.
// The CLI and HTTP layers map categories to actionable messages instead
// of sniffing error strings.
type Category string

const (
	CategoryAPIKey         Category = "api_key"
	CategoryNetwork        Category = "network"
	CategoryParse          Category = "parse"
	CategoryMissingContext Category = "missing_context"
	CategoryInternal       Category = "internal"
)

// CategorizedError wraps an error with a failure category.
type CategorizedError struct {
	Cat Category
	Err error
}

func (e *CategorizedError) Error() string {
	return e.Err.Error()
}

func (e *CategorizedError) Unwrap() error {
	return e.Err
}

// WithCategory tags err with a category. Returns nil if err is nil.
func WithCategory(err error, cat Category) error {
	if err == nil {
		return nil
	}
	return &CategorizedError{Cat: cat, Err: err}
}

// CategoryOf returns the category of err, walking the error chain.
// Untagged errors are CategoryInternal.
func CategoryOf(err error) Category {
	if err == nil {
		return CategoryInternal
	}
	var ce *CategorizedError
	if errors.As(err, &ce) {
		return ce.Cat
	}
	return CategoryInternal
}

// Guidance returns a short user-facing remediation message for a category.
func Guidance(cat Category) string {
	switch cat {
	case CategoryAPIKey:
		return "The API key may be missing or invalid. Set DISCOVERY_ANTHROPIC_KEY (or anthropic.key in config.yaml) and retry."
	case CategoryNetwork:
		return "Unable to reach external services. Check your connection and retry; the outage may be temporary."
	case CategoryParse:
		return "Failed to process a model response. Retry the run; if it persists, try different filters."
	case CategoryMissingContext:
		return "A business profile is required. Run 'extract' on your documents first, then retry discovery."
	default:
		return "An unexpected error occurred. Check the logs for details."
	}
}
