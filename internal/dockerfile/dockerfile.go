// Package dockerfile locates a named build stage in an existing Dockerfile.
//
// devpp never rewrites a user's Dockerfile. When a devcontainer.json builds
// from one, the generated Containerfile embeds the Dockerfile body verbatim
// and opens its own base stage on top of the chosen stage. This package does
// the little parsing that needs: it finds the stage, and it reports the
// parser directives (escape, syntax) the body was written against.
//
// Parsing is delegated to BuildKit's Dockerfile parser, the same parser the
// build engine uses, so stage names and escape handling agree with it.
package dockerfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/moby/buildkit/frontend/dockerfile/parser"
)

var (
	// ErrInstructionNotFound is returned for a Dockerfile with no
	// instructions at all.
	ErrInstructionNotFound = errors.New("the Dockerfile has no instructions")

	// ErrFromNotFound is returned when the Dockerfile does not start with
	// FROM (optionally preceded by ARG) or declares no stage.
	ErrFromNotFound = errors.New("the Dockerfile must start with FROM, optionally preceded by ARG")

	// ErrTargetNotFound is returned when no target was requested and the
	// last stage has no name to refer to.
	ErrTargetNotFound = errors.New("the last stage of the Dockerfile must be named (FROM <image> AS <name>) when no target is given")
)

// StageNotFoundError reports a requested target stage that the Dockerfile
// does not declare.
type StageNotFoundError struct {
	Target string
	Stages []string
}

func (e *StageNotFoundError) Error() string {
	if len(e.Stages) == 0 {
		return fmt.Sprintf("stage %q not found: the Dockerfile has no named stages", e.Target)
	}
	return fmt.Sprintf("stage %q not found, available stages: %s", e.Target, strings.Join(e.Stages, ", "))
}

// Directive is a parser directive from the head of a Dockerfile.
type Directive struct {
	Key   string
	Value string
}

// Dockerfile is an existing Dockerfile prepared for embedding.
type Dockerfile struct {
	// Path is the file the Dockerfile was read from, if any.
	Path string

	// Directives are the leading parser directives in file order, keys
	// lower-cased.
	Directives []Directive

	// Body is the file text after the leading parser directives, with
	// trailing blank lines removed.
	Body string

	// Escape is the escape character the body is written against.
	Escape rune

	// Stages are the stage names declared by FROM ... AS, in order. Unnamed
	// stages are recorded as "".
	Stages []string
}

// directiveRegex matches a parser directive line, e.g. "# syntax=docker/dockerfile:1".
var directiveRegex = regexp.MustCompile(`^#\s*([a-zA-Z][a-zA-Z0-9]*)\s*=\s*(.*?)\s*$`)

// knownDirectives are the parser directives the build engine honours. Any
// other "# key=value" line is an ordinary comment.
var knownDirectives = map[string]bool{"syntax": true, "escape": true, "check": true}

// Load reads and parses the Dockerfile at path.
func Load(path string) (*Dockerfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read Dockerfile %s: %w", path, err)
	}
	df, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	df.Path = path
	return df, nil
}

// Parse parses Dockerfile contents.
func Parse(data []byte) (*Dockerfile, error) {
	directives, body := splitDirectives(string(data))
	if !hasInstruction(body) {
		return nil, ErrInstructionNotFound
	}

	res, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse Dockerfile: %w", err)
	}
	if len(res.AST.Children) == 0 {
		return nil, ErrInstructionNotFound
	}

	var (
		stages []string
		seen   bool
	)
	for _, node := range res.AST.Children {
		// Node values keep the keyword as written.
		switch strings.ToLower(node.Value) {
		case "from":
			seen = true
			stages = append(stages, stageName(node))
		case "arg":
		default:
			if !seen {
				return nil, fmt.Errorf("%w: line %d starts with %s", ErrFromNotFound, node.StartLine, strings.ToUpper(node.Value))
			}
		}
	}
	if !seen {
		return nil, ErrFromNotFound
	}

	return &Dockerfile{
		Directives: directives,
		Body:       body,
		Escape:     res.EscapeToken,
		Stages:     stages,
	}, nil
}

// Target returns the stage to build on. An empty target selects the last
// stage, which must be named. Stage names compare case-insensitively, as
// the build engine lower-cases them.
func (d *Dockerfile) Target(target string) (string, error) {
	if target == "" {
		last := d.Stages[len(d.Stages)-1]
		if last == "" {
			return "", ErrTargetNotFound
		}
		return last, nil
	}

	var named []string
	for _, s := range d.Stages {
		if s == "" {
			continue
		}
		if strings.EqualFold(s, target) {
			return s, nil
		}
		named = append(named, s)
	}
	return "", &StageNotFoundError{Target: target, Stages: named}
}

// Directive returns the value of the named parser directive.
func (d *Dockerfile) Directive(key string) (string, bool) {
	for _, dir := range d.Directives {
		if dir.Key == strings.ToLower(key) {
			return dir.Value, true
		}
	}
	return "", false
}

// stageName returns the alias of a FROM node: FROM <image> AS <name>.
func stageName(node *parser.Node) string {
	image := node.Next
	if image == nil || image.Next == nil || image.Next.Next == nil {
		return ""
	}
	if !strings.EqualFold(image.Next.Value, "as") {
		return ""
	}
	return strings.ToLower(image.Next.Next.Value)
}

// splitDirectives separates the leading parser directives from the rest of
// the file. Directive scanning stops at the first line that is not a
// directive, including a blank line or an ordinary comment.
func splitDirectives(text string) ([]Directive, string) {
	var directives []Directive
	lines := strings.SplitAfter(text, "\n")
	i := 0
	for ; i < len(lines); i++ {
		m := directiveRegex.FindStringSubmatch(strings.TrimRight(lines[i], "\r\n"))
		if m == nil || !knownDirectives[strings.ToLower(m[1])] {
			break
		}
		directives = append(directives, Directive{Key: strings.ToLower(m[1]), Value: m[2]})
	}
	body := strings.Join(lines[i:], "")
	body = strings.TrimLeft(body, "\r\n")
	body = strings.TrimRight(body, " \t\r\n")
	return directives, body
}

// hasInstruction reports whether text has a line that is neither blank nor
// a comment.
func hasInstruction(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			return true
		}
	}
	return false
}
