// Package slug derives URL- and column-safe identifiers from
// human-readable names. Slugs are lowercase ASCII; uniqueness within a
// scope is enforced by the registry at insert time, not here.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugLen = 64

// Fallback is returned when the input yields no usable characters.
const Fallback = "untitled"

var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Make converts a name into its slug form: trim, lowercase, strip
// diacritics, collapse every run of non-[a-z0-9] into a single '_',
// trim leading/trailing '_', truncate to 64 characters. Empty results
// fall back to "untitled".
func Make(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if ascii, _, err := transform.String(stripMarks, s); err == nil {
		s = ascii
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		} else {
			pendingSep = true
		}
	}

	out := b.String()
	if len(out) > maxSlugLen {
		out = strings.Trim(out[:maxSlugLen], "_")
	}
	if out == "" {
		return Fallback
	}
	return out
}
