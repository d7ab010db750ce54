package candidate

import (
	"regexp"

	"github.com/google/uuid"
)

// NewID returns a fresh candidate identifier.
func NewID() string {
	return uuid.New().String()
}

var placeholderPattern = regexp.MustCompile(`\{[^{}]*\}`)

// HasPlaceholder reports whether text still contains a literal {...} token.
func HasPlaceholder(text string) bool {
	return placeholderPattern.MatchString(text)
}

// Clamp restricts v to [0, 1].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
