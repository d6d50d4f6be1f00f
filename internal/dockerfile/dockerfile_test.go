package dockerfile

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixturePath(t *testing.T, parts ...string) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "runtime.Caller failed to return file info")
	root := filepath.Join(filepath.Dir(filename), "..", "..", "tests", "testdata")
	return filepath.Join(append([]string{root}, parts...)...)
}

func TestLoad(t *testing.T) {
	path := fixturePath(t, "dockerfile-build", ".devcontainer", "Dockerfile")

	df, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, df.Path)
	assert.Equal(t, '`', df.Escape)
	assert.Equal(t, []Directive{
		{Key: "syntax", Value: "docker/dockerfile:1"},
		{Key: "escape", Value: "`"},
	}, df.Directives)
	assert.Equal(t, []string{"dev", "release"}, df.Stages)
	assert.True(t, len(df.Body) > 0)
	assert.Equal(t, "ARG DEBIAN_VERSION=bookworm", df.Body[:len("ARG DEBIAN_VERSION=bookworm")])
	assert.NotContains(t, df.Body, "# syntax")

	syntax, ok := df.Directive("SYNTAX")
	assert.True(t, ok)
	assert.Equal(t, "docker/dockerfile:1", syntax)
	_, ok = df.Directive("check")
	assert.False(t, ok)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "Dockerfile"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantStages []string
		wantEscape rune
		wantBody   string
		wantErr    error
	}{
		{
			name:       "single named stage",
			input:      "FROM alpine AS base\nRUN true\n\n",
			wantStages: []string{"base"},
			wantEscape: '\\',
			wantBody:   "FROM alpine AS base\nRUN true",
		},
		{
			name:       "lower-case as and mixed-case name",
			input:      "FROM alpine as Builder\nFROM scratch\n",
			wantStages: []string{"builder", ""},
			wantEscape: '\\',
			wantBody:   "FROM alpine as Builder\nFROM scratch",
		},
		{
			name:       "leading args",
			input:      "ARG V=3\nARG W\nFROM alpine:${V} AS dev\n",
			wantStages: []string{"dev"},
			wantEscape: '\\',
			wantBody:   "ARG V=3\nARG W\nFROM alpine:${V} AS dev",
		},
		{
			name:       "ordinary comment ends directives",
			input:      "# a note\n# escape=`\nFROM alpine AS dev\n",
			wantStages: []string{"dev"},
			wantEscape: '\\',
			wantBody:   "# a note\n# escape=`\nFROM alpine AS dev",
		},
		{
			name:       "keywords in any case",
			input:      "arg V=3\nfrom alpine:${V} AS dev\nFrom dev AS release\n",
			wantStages: []string{"dev", "release"},
			wantEscape: '\\',
			wantBody:   "arg V=3\nfrom alpine:${V} AS dev\nFrom dev AS release",
		},
		{name: "empty", input: "", wantErr: ErrInstructionNotFound},
		{name: "comments only", input: "# syntax=docker/dockerfile:1\n\n# nothing here\n", wantErr: ErrInstructionNotFound},
		{name: "run before from", input: "RUN echo hi\nFROM alpine\n", wantErr: ErrFromNotFound},
		{name: "args only", input: "ARG V=1\n", wantErr: ErrFromNotFound},
		{name: "lower-case run before from", input: "run echo hi\nfrom alpine\n", wantErr: ErrFromNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			df, err := Parse([]byte(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStages, df.Stages)
			assert.Equal(t, tt.wantEscape, df.Escape)
			assert.Equal(t, tt.wantBody, df.Body)
		})
	}
}

func TestTarget(t *testing.T) {
	df, err := Parse([]byte("FROM alpine AS dev\nFROM dev AS release\n"))
	require.NoError(t, err)

	got, err := df.Target("")
	require.NoError(t, err)
	assert.Equal(t, "release", got, "no target selects the last stage")

	got, err = df.Target("DEV")
	require.NoError(t, err)
	assert.Equal(t, "dev", got)

	_, err = df.Target("prod")
	var stageErr *StageNotFoundError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, "prod", stageErr.Target)
	assert.Equal(t, []string{"dev", "release"}, stageErr.Stages)
	assert.Contains(t, err.Error(), "available stages: dev, release")
}

func TestTarget_UnnamedLastStage(t *testing.T) {
	df, err := Parse([]byte("FROM alpine AS dev\nFROM dev\n"))
	require.NoError(t, err)

	_, err = df.Target("")
	assert.ErrorIs(t, err, ErrTargetNotFound)

	got, err := df.Target("dev")
	require.NoError(t, err)
	assert.Equal(t, "dev", got)
}
