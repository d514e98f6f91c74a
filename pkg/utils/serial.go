package utils

import (
	"regexp"
	"strings"
)

var serialPattern = regexp.MustCompile("[^A-Z0-9]+")

// NormalizeSerial canonicalizes an equipment serial number: uppercase,
// non-alphanumerics collapsed to single hyphens.
func NormalizeSerial(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = serialPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
