// Package htmlx escapes untrusted text for embedding in HTML.
package htmlx

import "strings"

// Replacer works in a single pass, so the ampersands of emitted entities are
// never escaped a second time.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Escape replaces &, <, >, " and ' with their HTML entities.
func Escape(s string) string {
	return escaper.Replace(s)
}

// EscapePtr is Escape for optional values; nil becomes "".
func EscapePtr(s *string) string {
	if s == nil {
		return ""
	}
	return Escape(*s)
}
