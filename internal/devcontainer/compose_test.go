package devcontainer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResolveComposeBase_MergedBuild verifies that override files merge
// into the primary service and paths resolve against the first file.
func TestResolveComposeBase_MergedBuild(t *testing.T) {
	ws := testdataPath(t, "compose-build")
	configDir := filepath.Join(ws, ".devcontainer")

	base, err := ResolveComposeBase(configDir, []string{"compose.yaml", "compose.override.yaml"}, "app")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(ws, "docker"), base.Context)
	assert.Equal(t, filepath.Join(ws, "docker", "Dockerfile"), base.Dockerfile)
	assert.Equal(t, "dev", base.Target)
	assert.Empty(t, base.Image, "a built service does not report its image")
}

func TestResolveComposeBase_Image(t *testing.T) {
	configDir := filepath.Join(testdataPath(t, "compose-image"), ".devcontainer")

	base, err := ResolveComposeBase(configDir, []string{"compose.yaml"}, "app")
	require.NoError(t, err)
	assert.Equal(t, "mcr.microsoft.com/devcontainers/base:bookworm", base.Image)
	assert.Empty(t, base.Dockerfile)
}

// TestResolveComposeBase_ShortBuild verifies the `build: <context>` form.
func TestResolveComposeBase_ShortBuild(t *testing.T) {
	dir := t.TempDir()
	compose := "services:\n  app:\n    build: ./src\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "compose.yml"), []byte(compose), 0o644))

	base, err := ResolveComposeBase(dir, []string{"compose.yml"}, "app")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src"), base.Context)
	assert.Equal(t, filepath.Join(dir, "src", "Dockerfile"), base.Dockerfile)
}

func TestResolveComposeBase_Errors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "compose.yml"),
		[]byte("services:\n  app:\n    command: sleep infinity\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("services: ["), 0o644))

	t.Run("neither image nor build", func(t *testing.T) {
		_, err := ResolveComposeBase(dir, []string{"compose.yml"}, "app")
		assert.ErrorIs(t, err, ErrComposeUnsupported)
	})
	t.Run("unknown service", func(t *testing.T) {
		_, err := ResolveComposeBase(dir, []string{"compose.yml"}, "web")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `service "web" not found`)
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := ResolveComposeBase(dir, []string{"missing.yml"}, "app")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("invalid yaml", func(t *testing.T) {
		_, err := ResolveComposeBase(dir, []string{"broken.yml"}, "app")
		assert.Error(t, err)
	})
	t.Run("no files", func(t *testing.T) {
		_, err := ResolveComposeBase(dir, nil, "app")
		assert.Error(t, err)
	})
}
