// Package slug produces the URL-safe identifiers tenants and documents are
// published under.
package slug

import (
	"strings"

	"github.com/google/uuid"
)

// Sanitize lowercases s and replaces every rune outside [a-z0-9-] with '-'.
// It never drops characters, so the result has one rune per input rune.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('-')
	}
	return b.String()
}

// Valid reports whether s is non-empty and already sanitized
func Valid(s string) bool {
	return s != "" && Sanitize(s) == s
}

// NewDocumentSlug returns a random slug for an uploaded document
func NewDocumentSlug() string {
	return uuid.New().String()
}
