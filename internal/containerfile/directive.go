package containerfile

import (
	"fmt"
)

// DirectiveKind names a parser directive.
type DirectiveKind string

const (
	DirectiveEscape DirectiveKind = "escape"
	DirectiveSyntax DirectiveKind = "syntax"
	DirectiveCheck  DirectiveKind = "check"
)

// Directive is a parser directive ("# key=value"). Directives must be the
// first entries of a document.
type Directive struct {
	Kind  DirectiveKind
	Value string
}

// EscapeDirective returns the directive that sets the document escape
// character.
func EscapeDirective(c rune) Directive {
	return Directive{Kind: DirectiveEscape, Value: string(c)}
}

// SyntaxDirective returns a directive selecting the Dockerfile frontend
// image, e.g. "docker/dockerfile:1".
func SyntaxDirective(ref string) Directive {
	return Directive{Kind: DirectiveSyntax, Value: ref}
}

// CheckDirective returns a build-check directive, e.g. "skip=all".
func CheckDirective(value string) Directive {
	return Directive{Kind: DirectiveCheck, Value: value}
}

// escapeRune validates an escape directive and returns its character.
func (d Directive) escapeRune() (rune, error) {
	r := []rune(d.Value)
	if len(r) != 1 || (r[0] != '\\' && r[0] != '`') {
		return 0, fmt.Errorf("%w: %q (want \\ or `)", ErrInvalidEscape, d.Value)
	}
	return r[0], nil
}

func (d Directive) render() (string, error) {
	switch d.Kind {
	case DirectiveEscape:
		if _, err := d.escapeRune(); err != nil {
			return "", err
		}
	case DirectiveSyntax, DirectiveCheck:
		if d.Value == "" {
			return "", emptyf("%s directive: empty value", d.Kind)
		}
	default:
		return "", unsupported(fmt.Sprintf("directive %q", d.Kind))
	}
	return fmt.Sprintf("# %s=%s", d.Kind, d.Value), nil
}
