package cache

import (
	"regexp"
	"strings"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// EncodeKey maps an arbitrary cache key to a safe storage identifier: every
// character outside [A-Za-z0-9_.-] becomes "_", leading/trailing underscores
// and spaces are trimmed, and the result is lower-cased. Deterministic but not
// collision-free; acceptable because keys are derived from bounded request
// parameters (rounded coordinates, unit system, city names).
func EncodeKey(raw string) string {
	s := unsafeKeyChars.ReplaceAllString(raw, "_")
	s = strings.Trim(s, "_ ")
	return strings.ToLower(s)
}
