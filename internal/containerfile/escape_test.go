package containerfile

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unquote reverses Quote. It fails on input Quote could not have produced.
func unquote(escape rune, s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", errors.New("not a quoted string")
	}
	r := []rune(s[1 : len(s)-1])
	var b strings.Builder
	for i := 0; i < len(r); i++ {
		switch r[i] {
		case escape:
			if i+1 >= len(r) || (r[i+1] != escape && r[i+1] != '"') {
				return "", errors.New("dangling escape")
			}
			i++
			b.WriteRune(r[i])
		case '"':
			return "", errors.New("unescaped quote")
		default:
			b.WriteRune(r[i])
		}
	}
	return b.String(), nil
}

func TestQuote(t *testing.T) {
	tests := []struct {
		name   string
		escape rune
		in     string
		want   string
	}{
		{name: "plain", escape: '\\', in: "1.0", want: `"1.0"`},
		{name: "empty", escape: '\\', in: "", want: `""`},
		{name: "backslash doubled", escape: '\\', in: `C:\tmp`, want: `"C:\\tmp"`},
		{name: "quote escaped", escape: '\\', in: `say "hi"`, want: `"say \"hi\""`},
		{name: "escape before quote", escape: '\\', in: `\"`, want: `"\\\""`},
		{name: "backtick doubled", escape: '`', in: "test`123", want: "\"test``123\""},
		{name: "backtick escapes quote", escape: '`', in: `a"b`, want: "\"a`\"b\""},
		{name: "backslash literal under backtick", escape: '`', in: `a\b`, want: `"a\b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Quote(tt.escape, tt.in))
		})
	}
}

func TestQuote_RoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		`\`,
		`"`,
		"`",
		`\\""`,
		"mixed \\ and ` and \" together",
		`trailing\`,
		`"leading`,
		"unicode ✓ \\ \"",
	}

	for _, escape := range []rune{'\\', '`'} {
		for _, in := range inputs {
			quoted := Quote(escape, in)
			got, err := unquote(escape, quoted)
			require.NoError(t, err, "escape %q input %q quoted %q", escape, in, quoted)
			assert.Equal(t, in, got)
		}
	}
}
