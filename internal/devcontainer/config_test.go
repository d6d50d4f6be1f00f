package devcontainer

import (
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/devpp/internal/model"
)

// projectRoot returns the absolute path to the project root directory.
// It uses runtime.Caller to locate the source file of this test, then
// navigates up from internal/devcontainer/ to the project root, so the
// result does not depend on the directory the test runner is invoked from.
func projectRoot(t *testing.T) string {
	t.Helper()

	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "runtime.Caller failed to return file info")

	return filepath.Join(filepath.Dir(filename), "..", "..")
}

// testdataPath returns the canonical path to a fixture workspace under
// tests/testdata.
func testdataPath(t *testing.T, fixture string) string {
	t.Helper()
	path, err := canonical(filepath.Join(projectRoot(t), "tests", "testdata", fixture))
	require.NoError(t, err, "fixture %s should exist", fixture)
	return path
}

// --- LoadConfig tests ---

// TestLoadConfig_ImageFeatures verifies that an image-based devcontainer.json
// with comments and trailing commas is parsed, features included.
func TestLoadConfig_ImageFeatures(t *testing.T) {
	path := filepath.Join(testdataPath(t, "image-features"), ".devcontainer", "devcontainer.json")

	raw, err := LoadConfig(path)
	require.NoError(t, err, "LoadConfig should succeed for a valid devcontainer.json")

	assert.Equal(t, "image-features", raw.Name)
	assert.Equal(t, "alpine", raw.Image)
	assert.Nil(t, raw.Build, "Build should be nil for image pattern")
	assert.Nil(t, raw.DockerComposeFile)
	assert.Len(t, raw.Features, 2)
	assert.Equal(t, model.PatternImage, DetectPattern(raw))
}

// TestLoadConfig_NotFound verifies that a missing file maps to the
// "devcontainer not found" exit code.
func TestLoadConfig_NotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "devcontainer.json"))
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr), "error should be a CLIError")
	assert.Equal(t, model.ExitDevContainerNotFound, cliErr.Code)
}

// TestLoadConfig_Dockerfile verifies the build section is decoded.
func TestLoadConfig_Dockerfile(t *testing.T) {
	path := filepath.Join(testdataPath(t, "dockerfile-build"), ".devcontainer", "devcontainer.json")

	raw, err := LoadConfig(path)
	require.NoError(t, err)

	require.NotNil(t, raw.Build)
	assert.Equal(t, "Dockerfile", raw.Build.Dockerfile)
	assert.Equal(t, "..", raw.Build.Context)
	assert.Equal(t, "dev", raw.Build.Target)
	assert.Equal(t, model.PatternDockerfile, DetectPattern(raw))
}

// --- DetectPattern tests ---

func TestDetectPattern(t *testing.T) {
	tests := []struct {
		name string
		raw  RawDevContainer
		want model.ConfigPattern
	}{
		{"image", RawDevContainer{Image: "alpine"}, model.PatternImage},
		{"build", RawDevContainer{Build: &BuildConfig{Dockerfile: "Dockerfile"}}, model.PatternDockerfile},
		{"compose wins over image", RawDevContainer{Image: "alpine", DockerComposeFile: "compose.yaml"}, model.PatternCompose},
		{"empty falls back to image", RawDevContainer{}, model.PatternImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectPattern(&tt.raw))
		})
	}
}

// --- GetComposeFiles tests ---

func TestGetComposeFiles(t *testing.T) {
	assert.Nil(t, GetComposeFiles(&RawDevContainer{}))
	assert.Equal(t, []string{"compose.yaml"}, GetComposeFiles(&RawDevContainer{DockerComposeFile: "compose.yaml"}))

	raw, err := ParseConfig([]byte(`{"dockerComposeFile": ["a.yaml", "b.yaml"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.yaml", "b.yaml"}, GetComposeFiles(raw))
}

// --- FeatureRefs tests ---

// TestFeatureRefs verifies option normalization and deterministic order.
func TestFeatureRefs(t *testing.T) {
	raw, err := ParseConfig([]byte(`{
		// options come in several shapes
		"features": {
			"./zeta": "20",
			"./alpha": {"enabled": true, "python": 3.10, "name": "x"},
			"./empty": {},
		}
	}`))
	require.NoError(t, err)

	refs, err := raw.FeatureRefs()
	require.NoError(t, err)
	require.Len(t, refs, 3)

	assert.Equal(t, "./alpha", refs[0].Ref)
	assert.Equal(t, map[string]string{"enabled": "true", "python": "3.10", "name": "x"}, refs[0].Options)

	assert.Equal(t, "./empty", refs[1].Ref)
	assert.Empty(t, refs[1].Options)

	assert.Equal(t, "./zeta", refs[2].Ref)
	assert.Equal(t, map[string]string{"version": "20"}, refs[2].Options)
}

// TestFeatureRefs_InvalidValue verifies that an unsupported option value
// names the offending feature.
func TestFeatureRefs_InvalidValue(t *testing.T) {
	raw, err := ParseConfig([]byte(`{"features": {"./bad": {"list": [1, 2]}}}`))
	require.NoError(t, err)

	_, err = raw.FeatureRefs()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `feature "./bad"`)
	assert.Contains(t, err.Error(), `option "list"`)
}
