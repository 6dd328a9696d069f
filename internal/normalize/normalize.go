// Package normalize canonicalises user-supplied identifiers before they are
// stored, compared, or used as map keys.
package normalize

import (
	"regexp"
	"strings"
)

var mailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s.]+$`)

// Email trims surrounding whitespace and lower-cases the address.
func Email(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// ValidEmail reports whether e looks like local@domain.tld. It is a syntactic
// check only and says nothing about deliverability.
func ValidEmail(e string) bool {
	return len(e) <= 254 && mailPattern.MatchString(e)
}
