package containerfile

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned for instructions that need at least one entry
	// (ARG, ENV, COPY sources, RUN command) or a required value, and for a
	// Containerfile with no instructions at all.
	ErrEmpty = errors.New("empty instruction")

	// ErrUnsupported is the kind of every UnsupportedError.
	ErrUnsupported = errors.New("unsupported construct")

	// ErrMisplacedDirective is returned when a parser directive follows a
	// comment, a blank line, or a build instruction.
	ErrMisplacedDirective = errors.New("parser directive must precede all instructions")

	// ErrInvalidVariable is the kind of every VariableError.
	ErrInvalidVariable = errors.New("invalid variable")

	// ErrInvalidEscape is returned for an escape directive whose character
	// is neither backslash nor backtick.
	ErrInvalidEscape = errors.New("invalid escape character")
)

// UnsupportedError names an instruction or option that this package can
// represent but has no rendering for.
type UnsupportedError struct {
	// Construct is the Dockerfile spelling, e.g. "HEALTHCHECK" or
	// "COPY --chmod".
	Construct string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnsupported.Error(), e.Construct)
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }

// VariableError reports an ARG or ENV entry that cannot be written on one
// line without changing its meaning.
type VariableError struct {
	// Instruction is "ARG" or "ENV".
	Instruction string
	Name        string

	// Reason says what is wrong with the name or value.
	Reason string
}

func (e *VariableError) Error() string {
	return fmt.Sprintf("%s: %s %q: %s", ErrInvalidVariable.Error(), e.Instruction, e.Name, e.Reason)
}

func (e *VariableError) Unwrap() error { return ErrInvalidVariable }

func unsupported(construct string) error {
	return &UnsupportedError{Construct: construct}
}

func emptyf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrEmpty, fmt.Sprintf(format, args...))
}
