package build

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/devpp/internal/containerfile"
	"github.com/mmr-tortoise/devpp/internal/model"
)

func sampleContainerfile() *containerfile.Containerfile {
	return containerfile.New(
		containerfile.Comment{Text: Header},
		containerfile.From{Kind: containerfile.Image{Name: "alpine"}, Name: BaseStage},
	)
}

const sampleText = "# Generated by devpp. DO NOT EDIT.\nFROM alpine AS devpp-base\n"

func TestWrite_Stdout(t *testing.T) {
	var buf bytes.Buffer
	dgst, err := Write(sampleContainerfile(), Stdout, &buf)
	require.NoError(t, err)

	assert.Equal(t, sampleText, buf.String())
	assert.Equal(t, digest.FromString(sampleText), dgst)
	assert.Equal(t, digest.SHA256, dgst.Algorithm())
}

// TestWrite_File verifies that parent directories are created and an
// existing file is overwritten.
func TestWrite_File(t *testing.T) {
	output := filepath.Join(t.TempDir(), "build", "Containerfile")

	_, err := Write(containerfile.New(containerfile.Comment{Text: "old"}), output, nil)
	require.NoError(t, err)

	dgst, err := Write(sampleContainerfile(), output, nil)
	require.NoError(t, err)

	readBack, err := os.ReadFile(output)
	require.NoError(t, err, "file should exist after writing")
	assert.Equal(t, sampleText, string(readBack))
	assert.Equal(t, digest.FromBytes(readBack), dgst)
}

// TestWrite_RenderFailureKeepsFile verifies that nothing is written when
// rendering fails.
func TestWrite_RenderFailureKeepsFile(t *testing.T) {
	output := filepath.Join(t.TempDir(), "Containerfile")
	require.NoError(t, os.WriteFile(output, []byte("previous\n"), 0o644))

	_, err := Write(containerfile.New(containerfile.Arg{}), output, nil)
	require.ErrorIs(t, err, containerfile.ErrEmpty)

	readBack, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(readBack))
}

func TestWrite_OutputError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := Write(sampleContainerfile(), filepath.Join(blocker, "Containerfile"), nil)
	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitOutput, cliErr.Code)
}
