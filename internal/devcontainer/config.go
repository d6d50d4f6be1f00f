// Package devcontainer handles parsing and analysis of devcontainer.json files.
//
// The devcontainer.json format supports JSONC (JSON with Comments),
// so this package uses github.com/tidwall/jsonc to strip comments before
// parsing with the standard encoding/json library.
//
// Key responsibilities:
//   - Load and parse devcontainer.json (with JSONC support)
//   - Detect the configuration pattern (image / dockerfile / compose)
//   - Extract the features map with normalized option values
//   - Locate devcontainer.json in standard paths
package devcontainer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/devpp/internal/model"
)

// RawDevContainer represents the raw JSON structure of a devcontainer.json file.
// Only the fields relevant to devpp are included; other fields are silently
// ignored during parsing.
//
// Several fields use interface{} or json.RawMessage because the
// devcontainer.json format allows multiple value types for the same field
// (e.g., dockerComposeFile can be a string or an array of strings).
type RawDevContainer struct {
	// Name is the display name for the dev container.
	Name string `json:"name"`

	// Image is the Docker image to use as the base (image pattern).
	Image string `json:"image,omitempty"`

	// Build specifies how to build the base image from a Dockerfile.
	Build *BuildConfig `json:"build,omitempty"`

	// DockerComposeFile is the path(s) to Docker Compose file(s).
	// Can be a single string or an array of strings in devcontainer.json.
	DockerComposeFile interface{} `json:"dockerComposeFile,omitempty"`

	// Service is the name of the primary Compose service.
	Service string `json:"service,omitempty"`

	// Features maps a feature reference to its options. The value is kept
	// raw because it may be an object or a bare version string.
	Features map[string]json.RawMessage `json:"features,omitempty"`

	// OverrideFeatureInstallOrder is accepted for compatibility. devpp
	// derives the order from installsAfter only and ignores it.
	OverrideFeatureInstallOrder []string `json:"overrideFeatureInstallOrder,omitempty"`

	// ContainerEnv sets environment variables inside the container.
	ContainerEnv map[string]string `json:"containerEnv,omitempty"`
}

// BuildConfig holds the Dockerfile build configuration.
// This corresponds to the "build" object in devcontainer.json.
type BuildConfig struct {
	// Dockerfile is the path to the Dockerfile, relative to devcontainer.json.
	Dockerfile string `json:"dockerfile,omitempty"`

	// Context is the Docker build context path, relative to devcontainer.json.
	Context string `json:"context,omitempty"`

	// Target is the stage of the Dockerfile to build on top of.
	Target string `json:"target,omitempty"`

	// Args are build-time variables passed to the Dockerfile via --build-arg.
	Args map[string]string `json:"args,omitempty"`
}

// FeatureRef is one entry of the "features" map.
type FeatureRef struct {
	// Ref is the key as written in devcontainer.json, e.g. "./base-tool".
	Ref string

	// Options are the user's option values, all normalized to strings.
	Options map[string]string
}

// LoadConfig reads a devcontainer.json file, strips JSONC comments, and
// parses it into a RawDevContainer struct.
//
// Returns a CLIError with ExitDevContainerNotFound if the file does not exist.
func LoadConfig(devcontainerPath string) (*RawDevContainer, error) {
	data, err := os.ReadFile(devcontainerPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitDevContainerNotFound,
				fmt.Sprintf("devcontainer.json not found: %s", devcontainerPath),
				err,
			)
		}
		return nil, fmt.Errorf("failed to read devcontainer.json: %w", err)
	}

	raw, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse devcontainer.json at %s: %w", devcontainerPath, err)
	}
	return raw, nil
}

// ParseConfig parses devcontainer.json contents. Comments and trailing
// commas are stripped first, since real-world files frequently contain them.
func ParseConfig(data []byte) (*RawDevContainer, error) {
	var raw RawDevContainer
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}

// DetectPattern determines the devcontainer configuration pattern based on
// the parsed configuration fields.
//
// A Compose configuration takes precedence over other fields (a
// devcontainer.json with both dockerComposeFile and image is treated as
// Compose), then build, then image.
func DetectPattern(raw *RawDevContainer) model.ConfigPattern {
	if raw.DockerComposeFile != nil {
		return model.PatternCompose
	}
	if raw.Build != nil {
		return model.PatternDockerfile
	}
	return model.PatternImage
}

// GetComposeFiles extracts and normalizes the dockerComposeFile field
// from a RawDevContainer into a string slice.
//
// Returns nil if dockerComposeFile is not set.
func GetComposeFiles(raw *RawDevContainer) []string {
	if raw.DockerComposeFile == nil {
		return nil
	}

	switch v := raw.DockerComposeFile.(type) {
	case string:
		return []string{v}
	case []interface{}:
		files := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				files = append(files, s)
			}
		}
		return files
	default:
		return nil
	}
}

// FeatureRefs returns the features map as a slice sorted by reference, so
// that callers iterate it deterministically.
//
// Each value may be:
//   - an object of option → string | boolean | number
//   - a bare string, shorthand for {"version": "<string>"}
//
// Booleans render as "true"/"false" and numbers keep their literal JSON
// spelling ("3.10" stays "3.10").
func (raw *RawDevContainer) FeatureRefs() ([]FeatureRef, error) {
	refs := make([]FeatureRef, 0, len(raw.Features))
	for ref, value := range raw.Features {
		opts, err := parseFeatureOptions(value)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", ref, err)
		}
		refs = append(refs, FeatureRef{Ref: ref, Options: opts})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Ref < refs[j].Ref })
	return refs, nil
}

func parseFeatureOptions(value json.RawMessage) (map[string]string, error) {
	// UseNumber keeps numbers as their literal text instead of float64.
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	opts := make(map[string]string)
	switch v := v.(type) {
	case nil:
	case string:
		opts["version"] = v
	case map[string]interface{}:
		for name, ov := range v {
			s, err := optionString(ov)
			if err != nil {
				return nil, fmt.Errorf("option %q: %w", name, err)
			}
			opts[name] = s
		}
	default:
		return nil, fmt.Errorf("options must be an object or a version string, got %T", v)
	}
	return opts, nil
}

// optionString converts an option value to the string used as a build-arg
// value.
func optionString(v interface{}) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("value must be a string, boolean or number, got %T", v)
	}
}
