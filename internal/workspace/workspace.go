// Package workspace decides which folder devpp treats as the project
// workspace when none is given on the command line.
//
// The default is the top-level directory of the Git working tree that
// contains the current directory, found with `git rev-parse --show-toplevel`.
// That works the same for the main checkout and for linked worktrees. Outside
// a Git repository, or when git is not installed, the directory itself is
// used.
package workspace

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/devpp/internal/ctxlog"
)

// Workspace describes the detected project folder.
type Workspace struct {
	// Root is the absolute workspace folder.
	Root string

	// Git reports whether Root is the top level of a Git working tree.
	Git bool

	// Worktree reports whether Root is a linked worktree rather than the
	// main checkout.
	Worktree bool
}

// Detect returns the workspace containing dir.
func Detect(ctx context.Context, dir string) (*Workspace, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to access workspace %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace %s is not a directory", abs)
	}

	logger := ctxlog.FromContext(ctx)

	root, err := repoRoot(ctx, abs)
	if err != nil {
		logger.Debug("not a git working tree, using directory as workspace", "dir", abs, "error", err)
		return &Workspace{Root: abs}, nil
	}

	ws := &Workspace{Root: root, Git: true, Worktree: IsWorktree(root)}
	logger.Debug("detected git workspace", "root", ws.Root, "worktree", ws.Worktree)
	return ws, nil
}

// IsWorktree reports whether path is the root of a linked Git worktree.
//
// A linked worktree has a .git FILE whose content starts with "gitdir:",
// while the main checkout has a .git DIRECTORY.
func IsWorktree(path string) bool {
	gitPath := filepath.Join(path, ".git")

	// os.Lstat, because a .git file must not be confused with a symlink
	// to a directory.
	info, err := os.Lstat(gitPath)
	if err != nil || info.IsDir() {
		return false
	}

	content, err := os.ReadFile(gitPath)
	if err != nil {
		return false
	}
	return strings.HasPrefix(string(content), "gitdir:")
}

// repoRoot returns the top-level directory of the Git working tree that
// contains path.
func repoRoot(ctx context.Context, path string) (string, error) {
	output, err := runGit(ctx, path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return filepath.Clean(strings.TrimSpace(output)), nil
}

// runGit executes a git command in the specified directory and returns its
// stdout. On failure the error carries git's stderr for diagnostics.
//
// The directory is passed with -C so the process working directory is never
// changed.
func runGit(ctx context.Context, repoPath string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)

	// #nosec G204: args are constructed internally, not from user input
	cmd := exec.CommandContext(ctx, "git", fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if s := strings.TrimSpace(stderr.String()); s != "" {
			message = fmt.Sprintf("%s: %s", message, s)
		}
		return "", fmt.Errorf("%s: %w", message, err)
	}
	return stdout.String(), nil
}
