// feature.go resolves feature references from devcontainer.json to local
// feature folders and loads their devcontainer-feature.json metadata.
//
// Only locally referenced features are supported. A local feature is a
// folder below .devcontainer/ that holds devcontainer-feature.json and an
// install.sh entrypoint, and whose name equals the feature id. OCI registry
// and tarball references are reported as not found.
//
// See https://containers.dev/implementors/features-distribution/#addendum-locally-referenced
package devcontainer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/devpp/internal/model"
)

const (
	// FeatureMetadataFile is the metadata file every feature folder holds.
	FeatureMetadataFile = "devcontainer-feature.json"

	// FeatureEntrypointFile is the install script every feature folder holds.
	FeatureEntrypointFile = "install.sh"
)

var (
	ErrReferencePathAbsolute     = errors.New("a local feature may not be referenced by absolute path")
	ErrReferencePathIllegal      = errors.New("a local feature must be contained within a sub-folder of .devcontainer/")
	ErrReferenceNotFound         = errors.New("feature is not found")
	ErrFeatureMetadataNotFound   = errors.New("the local feature's folder must contain a devcontainer-feature.json file")
	ErrFeatureEntrypointNotFound = errors.New("the local feature's folder must contain an install.sh entrypoint script")
	ErrFeatureIDMismatch         = errors.New("the feature folder name must match the feature's id field")
)

// ReferenceError describes why a feature reference could not be resolved
// or loaded. Kind is one of the ErrReference*/ErrFeature* sentinels.
type ReferenceError struct {
	Kind error

	// Ref is the reference as written in devcontainer.json.
	Ref string

	// Path is the resolved folder, when resolution got that far.
	Path string

	// Detail is extra context, such as the mismatching id.
	Detail string
}

func (e *ReferenceError) Error() string {
	msg := fmt.Sprintf("%s: %q", e.Kind, e.Ref)
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ReferenceError) Unwrap() error { return e.Kind }

// ResolveReference maps a feature reference to its canonical local folder.
//
// The reference is joined to the folder holding devcontainer.json. The
// result must exist and lie inside the workspace's .devcontainer/ folder;
// references that traverse out and back in (e.g. "../.devcontainer/x"
// from a scoped config) are accepted.
func ResolveReference(cfg *ConfigFile, ref string) (string, error) {
	if filepath.IsAbs(ref) {
		return "", &ReferenceError{Kind: ErrReferencePathAbsolute, Ref: ref}
	}

	path, err := canonical(filepath.Join(cfg.Dir(), ref))
	if err != nil {
		// Not a local path. Registry and tarball references land here too.
		return "", &ReferenceError{Kind: ErrReferenceNotFound, Ref: ref}
	}

	dotdev, err := cfg.Dotdev()
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(dotdev, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &ReferenceError{
			Kind:   ErrReferencePathIllegal,
			Ref:    ref,
			Path:   path,
			Detail: "resolved outside of " + dotdev,
		}
	}
	return path, nil
}

// rawFeature is the subset of devcontainer-feature.json devpp reads.
type rawFeature struct {
	ID            string               `json:"id"`
	Version       string               `json:"version"`
	Name          string               `json:"name"`
	InstallsAfter []string             `json:"installsAfter"`
	Options       map[string]rawOption `json:"options"`
	ContainerEnv  map[string]string    `json:"containerEnv"`
}

type rawOption struct {
	Type        string          `json:"type"`
	Default     json.RawMessage `json:"default"`
	Description string          `json:"description"`
	Proposals   []string        `json:"proposals"`
	Enum        []string        `json:"enum"`
}

// LoadFeature reads the feature folder at dir, which was resolved from
// ref. The folder must contain devcontainer-feature.json and install.sh,
// and its base name must equal the declared id.
func LoadFeature(ref, dir string) (*model.Feature, error) {
	metadataPath := filepath.Join(dir, FeatureMetadataFile)
	if _, err := os.Stat(metadataPath); err != nil {
		if os.IsNotExist(err) {
			return nil, &ReferenceError{Kind: ErrFeatureMetadataNotFound, Ref: ref, Path: dir}
		}
		return nil, fmt.Errorf("failed to stat %s: %w", metadataPath, err)
	}

	entrypoint := filepath.Join(dir, FeatureEntrypointFile)
	if _, err := os.Stat(entrypoint); err != nil {
		if os.IsNotExist(err) {
			return nil, &ReferenceError{Kind: ErrFeatureEntrypointNotFound, Ref: ref, Path: dir}
		}
		return nil, fmt.Errorf("failed to stat %s: %w", entrypoint, err)
	}

	data, err := os.ReadFile(metadataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", metadataPath, err)
	}
	feature, err := ParseFeature(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", metadataPath, err)
	}

	if got := filepath.Base(dir); got != feature.ID {
		return nil, &ReferenceError{
			Kind:   ErrFeatureIDMismatch,
			Ref:    ref,
			Path:   dir,
			Detail: fmt.Sprintf("expected %q, but got %q", feature.ID, got),
		}
	}

	feature.Dir = dir
	feature.Entrypoint = entrypoint
	return feature, nil
}

// ParseFeature parses devcontainer-feature.json contents (JSONC allowed).
// Options are returned sorted by name and defaults are normalized to
// strings.
func ParseFeature(data []byte) (*model.Feature, error) {
	var raw rawFeature
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, err
	}
	if err := model.ValidateFeatureID(raw.ID); err != nil {
		return nil, err
	}

	feature := &model.Feature{
		ID:            raw.ID,
		Version:       raw.Version,
		Name:          raw.Name,
		InstallsAfter: raw.InstallsAfter,
		ContainerEnv:  raw.ContainerEnv,
	}

	names := make([]string, 0, len(raw.Options))
	for name := range raw.Options {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ro := raw.Options[name]
		opt := model.FeatureOption{
			Name:        name,
			Type:        model.OptionType(ro.Type),
			Description: ro.Description,
			Proposals:   ro.Proposals,
			Enum:        ro.Enum,
		}
		if len(ro.Default) > 0 && string(ro.Default) != "null" {
			def, err := defaultString(ro.Default)
			if err != nil {
				return nil, fmt.Errorf("option %q: %w", name, err)
			}
			opt.Default = def
			opt.HasDefault = true
		}
		feature.Options = append(feature.Options, opt)
	}
	return feature, nil
}

// defaultString decodes an option default, which may be a string or a
// boolean.
func defaultString(data json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		return strconv.FormatBool(b), nil
	}
	return "", fmt.Errorf("default must be a string or a boolean, got %s", string(data))
}
