package clinical

import (
	"regexp"
	"strings"
)

var postalPattern = regexp.MustCompile(`^\d{3}-\d{4}$`)

// hyphen variants seen in Japanese address sources
var hyphenReplacer = strings.NewReplacer(
	"－", "-", "ー", "-", "―", "-", "‐", "-", "−", "-", "—", "-",
)

// NormalizePostalCode canonicalizes a Japanese postal code to NNN-NNNN.
// Full-width and typographic hyphens are folded to ASCII, and a bare
// 7-digit code gets its hyphen inserted. The second return is false when
// the input cannot be normalized.
func NormalizePostalCode(s string) (string, bool) {
	s = hyphenReplacer.Replace(strings.TrimSpace(s))
	if len(s) == 7 && !strings.Contains(s, "-") {
		s = s[:3] + "-" + s[3:]
	}
	if !postalPattern.MatchString(s) {
		return s, false
	}
	return s, true
}
