package forms

import (
	"regexp"
	"strings"
	"unicode"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// DeriveSlug turns a display name into a URL slug: lowercase, whitespace and
// underscores become hyphens, anything else outside [a-z0-9-] is dropped,
// runs of hyphens collapse and the ends are trimmed.
// DeriveSlug("My Cool Tool!!") == "my-cool-tool".
func DeriveSlug(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastHyphen := true // swallows leading hyphens
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == '-' || r == '_' || unicode.IsSpace(r):
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// ValidSlug reports whether s is a non-empty slug made of [a-z0-9-].
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}
