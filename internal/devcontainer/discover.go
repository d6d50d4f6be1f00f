// discover.go locates devcontainer.json inside a project workspace.
//
// devcontainer.json may live in three locations, and devpp considers all of
// them at once instead of stopping at the first hit:
//
//	.devcontainer/devcontainer.json           (nested)
//	.devcontainer.json                        (plain)
//	.devcontainer/<folder>/devcontainer.json  (scoped)
//
// When more than one candidate exists the caller must pick one explicitly,
// and an explicit pick must be one of the candidates. This keeps feature
// folders, which must live under .devcontainer/, tied to a known workspace.
package devcontainer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ConfigKind identifies which of the standard locations a devcontainer.json
// was found at.
type ConfigKind string

const (
	// KindNested is .devcontainer/devcontainer.json.
	KindNested ConfigKind = "nested"

	// KindPlain is .devcontainer.json at the workspace root. A plain config
	// has no .devcontainer/ folder of its own, so it cannot reference
	// local features.
	KindPlain ConfigKind = "plain"

	// KindScoped is .devcontainer/<folder>/devcontainer.json.
	KindScoped ConfigKind = "scoped"
)

var (
	// ErrConfigNotFound is returned when no candidate location holds a
	// devcontainer.json.
	ErrConfigNotFound = errors.New("devcontainer.json not found in any of [.devcontainer/devcontainer.json, .devcontainer.json, .devcontainer/<folder>/devcontainer.json]")

	// ErrConfigAmbiguous is the kind of ConfigAmbiguousError.
	ErrConfigAmbiguous = errors.New("more than one devcontainer.json found")

	// ErrConfigPermissionDenied is the kind of ConfigPermissionDeniedError.
	ErrConfigPermissionDenied = errors.New("devcontainer.json is outside the workspace search path")

	// ErrDotdevNotFound is returned when a .devcontainer/ folder is required
	// but the configuration does not have one.
	ErrDotdevNotFound = errors.New("the project must have a .devcontainer/ folder at the root of the workspace")
)

// ConfigAmbiguousError lists the candidates found when no explicit config
// was given.
type ConfigAmbiguousError struct {
	Candidates []string
}

func (e *ConfigAmbiguousError) Error() string {
	return fmt.Sprintf("%s, pass --config with one of: %s", ErrConfigAmbiguous, strings.Join(e.Candidates, ", "))
}

func (e *ConfigAmbiguousError) Unwrap() error { return ErrConfigAmbiguous }

// ConfigPermissionDeniedError reports an explicit config that is not one of
// the workspace candidates.
type ConfigPermissionDeniedError struct {
	Config     string
	Candidates []string
}

func (e *ConfigPermissionDeniedError) Error() string {
	return fmt.Sprintf("%s: %s (candidates: %s)", ErrConfigPermissionDenied, e.Config, strings.Join(e.Candidates, ", "))
}

func (e *ConfigPermissionDeniedError) Unwrap() error { return ErrConfigPermissionDenied }

// ConfigFile is a located devcontainer.json.
type ConfigFile struct {
	// Kind is the location pattern the file was found at.
	Kind ConfigKind

	// Path is the canonical (absolute, symlink-free) path of the file.
	Path string

	// Workspace is the canonical workspace folder.
	Workspace string
}

// Dir returns the folder that holds devcontainer.json. Relative paths in
// the configuration (build.dockerfile, build.context, local features) are
// resolved against it.
func (c *ConfigFile) Dir() string {
	return filepath.Dir(c.Path)
}

// Dotdev returns the canonical .devcontainer/ folder of the workspace.
// Plain configs have none and return ErrDotdevNotFound.
func (c *ConfigFile) Dotdev() (string, error) {
	if c.Kind == KindPlain {
		return "", ErrDotdevNotFound
	}
	return canonical(filepath.Join(c.Workspace, ".devcontainer"))
}

// FindConfigs returns every devcontainer.json candidate in workspace, in
// the order nested, plain, scoped (scoped folders sorted by name).
func FindConfigs(workspace string) ([]ConfigFile, error) {
	ws, err := canonical(workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace %s: %w", workspace, err)
	}

	var found []ConfigFile
	add := func(kind ConfigKind, path string) {
		// os.Stat follows symlinks, so a dangling link is not a candidate.
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return
		}
		if p, err := canonical(path); err == nil {
			found = append(found, ConfigFile{Kind: kind, Path: p, Workspace: ws})
		}
	}

	dotdev := filepath.Join(ws, ".devcontainer")
	add(KindNested, filepath.Join(dotdev, "devcontainer.json"))
	add(KindPlain, filepath.Join(ws, ".devcontainer.json"))

	entries, err := os.ReadDir(dotdev)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", dotdev, err)
	}
	// os.ReadDir already sorts by filename; sort again so the order does
	// not depend on that implementation detail.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if !isDir(filepath.Join(dotdev, entry.Name())) {
			continue
		}
		add(KindScoped, filepath.Join(dotdev, entry.Name(), "devcontainer.json"))
	}

	return found, nil
}

// FindConfig selects the devcontainer.json to build from.
//
// Without an explicit path the workspace must contain exactly one
// candidate. With one, it must resolve to one of the candidates.
func FindConfig(workspace, explicit string) (*ConfigFile, error) {
	candidates, err := FindConfigs(workspace)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrConfigNotFound
	}

	paths := make([]string, len(candidates))
	for i, c := range candidates {
		paths[i] = c.Path
	}

	if explicit != "" {
		want, err := canonical(explicit)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config %s: %w", explicit, err)
		}
		for i := range candidates {
			if candidates[i].Path == want {
				return &candidates[i], nil
			}
		}
		return nil, &ConfigPermissionDeniedError{Config: want, Candidates: paths}
	}

	if len(candidates) > 1 {
		return nil, &ConfigAmbiguousError{Candidates: paths}
	}
	return &candidates[0], nil
}

// canonical returns the absolute, symlink-free form of path. The path must
// exist.
func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
