package workspace

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRepo creates a temporary directory with an initialized Git
// repository containing a single commit. A commit is needed so that a
// linked worktree can be added in tests.
func setupTestRepo(t *testing.T) string {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed")
	}

	dir := canonical(t, t.TempDir())

	runTestGit(t, dir, "init")
	runTestGit(t, dir, "config", "user.email", "test@example.com")
	runTestGit(t, dir, "config", "user.name", "Test User")

	err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test Repo\n"), 0o644)
	require.NoError(t, err, "failed to create initial file")

	runTestGit(t, dir, "add", ".")
	runTestGit(t, dir, "commit", "-m", "initial commit")

	return dir
}

// runTestGit runs a git command in dir and fails the test on a non-zero exit.
func runTestGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
	return string(output)
}

// canonical resolves symlinks so paths compare equal to git's output
// (macOS temp dirs live behind /var -> /private/var).
func canonical(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return resolved
}

func TestDetect_GitSubdirectory(t *testing.T) {
	repo := setupTestRepo(t)
	sub := filepath.Join(repo, "src", "pkg")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	ws, err := Detect(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, repo, ws.Root)
	assert.True(t, ws.Git)
	assert.False(t, ws.Worktree)
}

func TestDetect_LinkedWorktree(t *testing.T) {
	repo := setupTestRepo(t)
	wtPath := filepath.Join(canonical(t, t.TempDir()), "feature")
	runTestGit(t, repo, "worktree", "add", "-b", "feature", wtPath)

	ws, err := Detect(context.Background(), wtPath)
	require.NoError(t, err)

	assert.Equal(t, wtPath, ws.Root)
	assert.True(t, ws.Worktree)
	assert.True(t, IsWorktree(wtPath))
	assert.False(t, IsWorktree(repo))
}

func TestDetect_NotARepository(t *testing.T) {
	dir := canonical(t, t.TempDir())

	ws, err := Detect(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, dir, ws.Root)
	assert.False(t, ws.Git)
}

func TestDetect_Errors(t *testing.T) {
	_, err := Detect(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = Detect(context.Background(), file)
	assert.Error(t, err)
}
