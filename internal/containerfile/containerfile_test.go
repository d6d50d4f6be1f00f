package containerfile

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerfile_EscapeDirective(t *testing.T) {
	cf := New(
		EscapeDirective('`'),
		Arg{Decls: []ArgDecl{{Name: "foo", Default: "test`123", HasDefault: true}}},
	)

	got, err := cf.Render()
	require.NoError(t, err)
	assert.Equal(t, "# escape=`\nARG foo=\"test``123\"\n", got)
}

func TestContainerfile_EscapeAppliesToWholeDocument(t *testing.T) {
	cf := New(
		SyntaxDirective("docker/dockerfile:1"),
		EscapeDirective('`'),
		Env{Vars: []EnvVar{{Name: "WIN", Value: `C:\tools`}}},
		Run{Command: []string{"echo", "a`b"}},
	)

	escape, err := cf.Escape()
	require.NoError(t, err)
	assert.Equal(t, '`', escape)

	got, err := cf.Render()
	require.NoError(t, err)
	want := "# syntax=docker/dockerfile:1\n" +
		"# escape=`\n" +
		"ENV WIN=\"C:\\tools\"\n" +
		"RUN [\"echo\", \"a``b\"]\n"
	assert.Equal(t, want, got)
}

func TestContainerfile_FirstEscapeWins(t *testing.T) {
	cf := New(EscapeDirective('`'), EscapeDirective('\\'), Comment{Text: "x"})
	escape, err := cf.Escape()
	require.NoError(t, err)
	assert.Equal(t, '`', escape)
}

func TestContainerfile_DefaultEscape(t *testing.T) {
	cf := New(Comment{Text: "no directives"})
	escape, err := cf.Escape()
	require.NoError(t, err)
	assert.Equal(t, DefaultEscape, escape)
}

func TestContainerfile_MisplacedDirective(t *testing.T) {
	cf := New(Comment{Text: "header"}, EscapeDirective('`'))

	_, err := cf.Render()
	assert.ErrorIs(t, err, ErrMisplacedDirective)

	var buf bytes.Buffer
	n, err := cf.WriteTo(&buf)
	assert.ErrorIs(t, err, ErrMisplacedDirective)
	assert.Zero(t, n)
	assert.Zero(t, buf.Len(), "nothing may be written when rendering fails")
}

func TestContainerfile_Empty(t *testing.T) {
	var cf Containerfile
	_, err := cf.Render()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestContainerfile_ErrorNamesPosition(t *testing.T) {
	cf := New(Comment{Text: "ok"}, Healthcheck)
	_, err := cf.Render()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Contains(t, err.Error(), "instruction 1")
}

func TestContainerfile_PushAndInstrs(t *testing.T) {
	cf := New()
	cf.Push(Comment{Text: "a"}, Empty{})
	cf.Push(From{Kind: Stage{Name: "s"}})
	assert.Equal(t, 3, cf.Len())

	instrs := cf.Instrs()
	instrs[0] = Empty{}
	assert.Equal(t, Comment{Text: "a"}, cf.Instrs()[0], "Instrs must return a copy")
}

func TestContainerfile_Golden(t *testing.T) {
	cf := New(
		SyntaxDirective("docker/dockerfile:1"),
		Comment{Text: "Generated by devpp. DO NOT EDIT."},
		Empty{},
		From{Kind: Image{Name: "alpine", Tag: "3.20"}, Name: "devpp-base", Platform: "linux/amd64"},
		Empty{},
		From{Kind: Stage{Name: "devpp-base"}, Name: "build"},
		Arg{Decls: []ArgDecl{{Name: "VERSION", Default: "1.0", HasDefault: true}, {Name: "TOKEN"}}},
		Env{Vars: []EnvVar{{Name: "GREETING", Value: `say "hi"`}}},
		Run{
			Command: []string{"/bin/sh", "-c", `echo "$GREETING" > /out`},
			Options: &RunOptions{
				Mounts: []Mount{
					BindMount{Destination: "/src", Source: "."},
					CacheMount{Destination: "/var/cache/apk", ID: "apk", Sharing: SharingLocked},
					SecretMount{ID: "token", Env: "TOKEN"},
				},
				Network: NetworkHost,
			},
		},
		Empty{},
		From{Kind: Stage{Name: "devpp-base"}, Name: "devcontainer"},
		Copy{
			Destination: "/out",
			Options:     &CopyOptions{From: Stage{Name: "build"}, Link: true},
			Sources:     []string{"/out"},
		},
	)

	var buf bytes.Buffer
	_, err := cf.WriteTo(&buf)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "kitchen_sink", buf.Bytes())
}
