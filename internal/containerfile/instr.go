package containerfile

import (
	"fmt"
	"regexp"
	"strings"
)

// variableName is the shape of an ARG or ENV name. Anything else would be
// split or reinterpreted by the build engine.
var variableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Instr is one logical build-file entry. The set of implementations is
// closed; render handles every one of them and fails on anything else.
type Instr interface {
	isInstr()
}

// Comment renders as "# text". Multi-line text becomes one comment line
// per line.
type Comment struct {
	Text string
}

// Empty renders as a blank line, used to separate stages.
type Empty struct{}

// ArgDecl is a single ARG entry. A declaration without a default renders
// as the bare name.
type ArgDecl struct {
	Name       string
	Default    string
	HasDefault bool
}

// Arg declares build arguments in insertion order.
type Arg struct {
	Decls []ArgDecl
}

// EnvVar is a single ENV entry.
type EnvVar struct {
	Name  string
	Value string
}

// Env sets environment variables in insertion order.
type Env struct {
	Vars []EnvVar
}

// From opens a build stage. Name and Platform are omitted when empty.
type From struct {
	Kind     FromKind
	Name     string
	Platform string
}

// Copy copies Sources into Destination. Sources render before the
// destination inside a single exec-form list.
type Copy struct {
	Destination string
	Options     *CopyOptions
	Sources     []string
}

// Run executes Command in exec form.
type Run struct {
	Command []string
	Options *RunOptions
}

// Verbatim is pre-rendered build-file text inserted unchanged, such as the
// body of an existing Dockerfile. A trailing newline is trimmed.
type Verbatim struct {
	Text string
}

// Keyword is a Dockerfile instruction that can be named in a document
// but has no rendering in this package. Rendering a Keyword always fails
// with an UnsupportedError.
type Keyword string

const (
	Add         Keyword = "ADD"
	Cmd         Keyword = "CMD"
	Entrypoint  Keyword = "ENTRYPOINT"
	Expose      Keyword = "EXPOSE"
	Healthcheck Keyword = "HEALTHCHECK"
	Label       Keyword = "LABEL"
	Maintainer  Keyword = "MAINTAINER"
	Onbuild     Keyword = "ONBUILD"
	Shell       Keyword = "SHELL"
	Stopsignal  Keyword = "STOPSIGNAL"
	User        Keyword = "USER"
	Volume      Keyword = "VOLUME"
	Workdir     Keyword = "WORKDIR"
)

// Keywords lists every Keyword constant.
var Keywords = []Keyword{
	Add, Cmd, Entrypoint, Expose, Healthcheck, Label, Maintainer,
	Onbuild, Shell, Stopsignal, User, Volume, Workdir,
}

func (Comment) isInstr()   {}
func (Empty) isInstr()     {}
func (Arg) isInstr()       {}
func (Env) isInstr()       {}
func (From) isInstr()      {}
func (Copy) isInstr()      {}
func (Run) isInstr()       {}
func (Verbatim) isInstr()  {}
func (Keyword) isInstr()   {}
func (Directive) isInstr() {}

// NewArg returns an ARG instruction, rejecting an empty declaration list.
func NewArg(decls ...ArgDecl) (Arg, error) {
	if len(decls) == 0 {
		return Arg{}, emptyf("ARG needs at least one declaration")
	}
	return Arg{Decls: decls}, nil
}

// NewEnv returns an ENV instruction, rejecting an empty variable list.
func NewEnv(vars ...EnvVar) (Env, error) {
	if len(vars) == 0 {
		return Env{}, emptyf("ENV needs at least one variable")
	}
	return Env{Vars: vars}, nil
}

// NewCopy returns a COPY instruction, rejecting an empty source list.
func NewCopy(destination string, opts *CopyOptions, sources ...string) (Copy, error) {
	if len(sources) == 0 {
		return Copy{}, emptyf("COPY needs at least one source")
	}
	return Copy{Destination: destination, Options: opts, Sources: sources}, nil
}

// NewRun returns a RUN instruction, rejecting an empty command.
func NewRun(opts *RunOptions, command ...string) (Run, error) {
	if len(command) == 0 {
		return Run{}, emptyf("RUN needs a command")
	}
	return Run{Command: command, Options: opts}, nil
}

// Render renders a single instruction with the given escape character.
func Render(in Instr, escape rune) (string, error) {
	var b strings.Builder
	if err := render(&b, in, escape); err != nil {
		return "", err
	}
	return b.String(), nil
}

// checkVariable rejects names that are not identifiers and values that
// would break the instruction across lines.
func checkVariable(instruction, name, value string) error {
	if !variableName.MatchString(name) {
		return &VariableError{Instruction: instruction, Name: name, Reason: "name must match " + variableName.String()}
	}
	if strings.ContainsAny(value, "\r\n") {
		return &VariableError{Instruction: instruction, Name: name, Reason: "value must not contain a line break"}
	}
	return nil
}

// render writes one instruction without a trailing newline.
func render(b *strings.Builder, in Instr, escape rune) error {
	switch in := in.(type) {
	case Comment:
		lines := strings.Split(in.Text, "\n")
		for i, line := range lines {
			if i > 0 {
				b.WriteByte('\n')
			}
			if line == "" {
				b.WriteByte('#')
				continue
			}
			b.WriteString("# ")
			b.WriteString(line)
		}

	case Empty:

	case Arg:
		if len(in.Decls) == 0 {
			return emptyf("ARG needs at least one declaration")
		}
		b.WriteString("ARG")
		for _, d := range in.Decls {
			if d.Name == "" {
				return emptyf("ARG: empty name")
			}
			if err := checkVariable("ARG", d.Name, d.Default); err != nil {
				return err
			}
			b.WriteByte(' ')
			b.WriteString(d.Name)
			if d.HasDefault {
				b.WriteByte('=')
				b.WriteString(Quote(escape, d.Default))
			}
		}

	case Env:
		if len(in.Vars) == 0 {
			return emptyf("ENV needs at least one variable")
		}
		b.WriteString("ENV")
		for _, v := range in.Vars {
			if v.Name == "" {
				return emptyf("ENV: empty name")
			}
			if err := checkVariable("ENV", v.Name, v.Value); err != nil {
				return err
			}
			b.WriteByte(' ')
			b.WriteString(v.Name)
			b.WriteByte('=')
			b.WriteString(Quote(escape, v.Value))
		}

	case From:
		if err := validateFrom(in.Kind, "FROM"); err != nil {
			return err
		}
		b.WriteString("FROM")
		if in.Platform != "" {
			b.WriteString(" --platform=")
			b.WriteString(in.Platform)
		}
		b.WriteByte(' ')
		b.WriteString(in.Kind.String())
		if in.Name != "" {
			b.WriteString(" AS ")
			b.WriteString(in.Name)
		}

	case Copy:
		if len(in.Sources) == 0 {
			return emptyf("COPY needs at least one source")
		}
		if in.Destination == "" {
			return emptyf("COPY: empty destination")
		}
		opts, err := in.Options.render()
		if err != nil {
			return err
		}
		b.WriteString("COPY")
		if opts != "" {
			b.WriteByte(' ')
			b.WriteString(opts)
		}
		args := append(append(make([]string, 0, len(in.Sources)+1), in.Sources...), in.Destination)
		b.WriteByte(' ')
		b.WriteString(quoteList(escape, args))

	case Run:
		if len(in.Command) == 0 {
			return emptyf("RUN needs a command")
		}
		opts, err := in.Options.render()
		if err != nil {
			return err
		}
		b.WriteString("RUN")
		if opts != "" {
			b.WriteByte(' ')
			b.WriteString(opts)
		}
		b.WriteByte(' ')
		b.WriteString(quoteList(escape, in.Command))

	case Verbatim:
		b.WriteString(strings.TrimSuffix(in.Text, "\n"))

	case Directive:
		s, err := in.render()
		if err != nil {
			return err
		}
		b.WriteString(s)

	case Keyword:
		return unsupported(string(in))

	default:
		return unsupported(fmt.Sprintf("instruction %T", in))
	}
	return nil
}
