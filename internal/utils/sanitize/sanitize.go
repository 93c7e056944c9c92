package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// spaced is a strict bluemonday policy that puts a space in place of every
// removed tag, so adjacent block elements do not glue words together.
// Never mutate it after init; Sanitize is safe for concurrent use.
var spaced = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// Clean strips markup and normalizes whitespace in account fields such as
// names. Note text is never passed through it.
//
// Examples:
//   - "<p>hi</p>" -> "hi"
//   - "<b>a</b> <b>b</b>" -> "a b"
//   - "  <p>Ada   Lovelace</p>  " -> "Ada Lovelace"
func Clean(s string) string {
	sanitized := spaced.Sanitize(s)
	sanitized = html.UnescapeString(sanitized)
	sanitized = strings.ReplaceAll(sanitized, "\u00a0", " ")

	lines := strings.Split(sanitized, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
