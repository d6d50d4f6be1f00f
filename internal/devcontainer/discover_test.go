package devcontainer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindConfigs(t *testing.T) {
	ws := testdataPath(t, "config-ambiguous")

	found, err := FindConfigs(ws)
	require.NoError(t, err)
	require.Len(t, found, 2)

	assert.Equal(t, KindNested, found[0].Kind)
	assert.Equal(t, filepath.Join(ws, ".devcontainer", "devcontainer.json"), found[0].Path)
	assert.Equal(t, KindScoped, found[1].Kind)
	assert.Equal(t, filepath.Join(ws, ".devcontainer", "python", "devcontainer.json"), found[1].Path)
	assert.Equal(t, ws, found[1].Workspace)
}

func TestFindConfig(t *testing.T) {
	t.Run("single nested candidate", func(t *testing.T) {
		ws := testdataPath(t, "image-features")
		cfg, err := FindConfig(ws, "")
		require.NoError(t, err)
		assert.Equal(t, KindNested, cfg.Kind)
		assert.Equal(t, filepath.Join(ws, ".devcontainer"), cfg.Dir())
	})

	t.Run("plain config has no dotdev", func(t *testing.T) {
		cfg, err := FindConfig(testdataPath(t, "config-plain"), "")
		require.NoError(t, err)
		assert.Equal(t, KindPlain, cfg.Kind)

		_, err = cfg.Dotdev()
		assert.ErrorIs(t, err, ErrDotdevNotFound)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := FindConfig(t.TempDir(), "")
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("ambiguous without explicit config", func(t *testing.T) {
		_, err := FindConfig(testdataPath(t, "config-ambiguous"), "")
		require.ErrorIs(t, err, ErrConfigAmbiguous)

		var ambiguous *ConfigAmbiguousError
		require.True(t, errors.As(err, &ambiguous))
		assert.Len(t, ambiguous.Candidates, 2)
	})

	t.Run("explicit candidate", func(t *testing.T) {
		ws := testdataPath(t, "config-ambiguous")
		explicit := filepath.Join(ws, ".devcontainer", "python", "devcontainer.json")

		cfg, err := FindConfig(ws, explicit)
		require.NoError(t, err)
		assert.Equal(t, KindScoped, cfg.Kind)
		assert.Equal(t, explicit, cfg.Path)
	})

	t.Run("explicit config outside candidates", func(t *testing.T) {
		outside := filepath.Join(t.TempDir(), "devcontainer.json")
		require.NoError(t, os.WriteFile(outside, []byte(`{"image": "alpine"}`), 0o644))

		_, err := FindConfig(testdataPath(t, "config-ambiguous"), outside)
		require.ErrorIs(t, err, ErrConfigPermissionDenied)

		var denied *ConfigPermissionDeniedError
		require.True(t, errors.As(err, &denied))
		assert.Len(t, denied.Candidates, 2)
	})
}

// TestFindConfigs_SkipsDirectoryNamedLikeConfig verifies that a folder
// called devcontainer.json is not mistaken for a file.
func TestFindConfigs_SkipsDirectoryNamedLikeConfig(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(ws, ".devcontainer", "devcontainer.json"), 0o755))

	found, err := FindConfigs(ws)
	require.NoError(t, err)
	assert.Empty(t, found)
}
