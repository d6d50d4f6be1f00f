package containerfile

import (
	"strings"
)

// DefaultEscape is the escape character used when a document carries no
// escape directive.
const DefaultEscape = '\\'

// Quote renders s as a double-quoted string for the given escape character.
// Every literal escape character is doubled first, then every double quote
// is prefixed with the escape character:
//
//	Quote('\\', `a\b"c`) == `"a\\b\"c"`
//	Quote('`', "a`b")    == "\"a``b\""
func Quote(escape rune, s string) string {
	esc := string(escape)
	s = strings.ReplaceAll(s, esc, esc+esc)
	s = strings.ReplaceAll(s, `"`, esc+`"`)
	return `"` + s + `"`
}

// quoteList renders values as an exec-form JSON-like array:
// ["a", "b", "c"].
func quoteList(escape rune, values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = Quote(escape, v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
