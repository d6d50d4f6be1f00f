// Package model defines the domain types for the devpp CLI.
//
// These types are the contract between the devcontainer collaborator
// (which reads devcontainer.json and devcontainer-feature.json) and the
// build orchestrator (which turns them into a Containerfile). They are
// read-only once constructed: the orchestrator never mutates a Feature.
package model

import (
	"fmt"
	"regexp"
	"strings"
)

// ConfigPattern represents the kind of base a devcontainer.json declares.
//
// Pattern detection logic:
//   - dockerComposeFile present → PatternCompose
//   - build present → PatternDockerfile
//   - otherwise → PatternImage
type ConfigPattern string

const (
	// PatternImage uses a pre-built container image directly.
	// Example: {"image": "mcr.microsoft.com/devcontainers/base:ubuntu"}
	PatternImage ConfigPattern = "image"

	// PatternDockerfile builds the base from an existing Dockerfile.
	// Example: {"build": {"dockerfile": "Dockerfile", "context": ".."}}
	PatternDockerfile ConfigPattern = "dockerfile"

	// PatternCompose uses Docker Compose. The primary service's image or
	// build section becomes the base.
	PatternCompose ConfigPattern = "compose"
)

// String returns the string representation of ConfigPattern.
func (p ConfigPattern) String() string {
	return string(p)
}

// OptionType is the declared type of a feature option in
// devcontainer-feature.json.
type OptionType string

const (
	OptionString  OptionType = "string"
	OptionBoolean OptionType = "boolean"
)

// FeatureOption describes one user-configurable option of a feature.
// Defaults are normalized to their string form ("true", "1.0", ...)
// because they end up as build-arg values.
type FeatureOption struct {
	// Name is the option key as declared, e.g. "version".
	Name string `json:"name"`

	// Type is the declared option type.
	Type OptionType `json:"type"`

	// Default is the declared default value, valid only if HasDefault.
	Default string `json:"default,omitempty"`

	// HasDefault distinguishes an absent default from an empty string.
	HasDefault bool `json:"hasDefault"`

	// Description is the human-readable help text, if any.
	Description string `json:"description,omitempty"`

	// Proposals and Enum list suggested or allowed values.
	Proposals []string `json:"proposals,omitempty"`
	Enum      []string `json:"enum,omitempty"`
}

// ArgName returns the build-arg name the option is exposed as.
func (o FeatureOption) ArgName() string {
	return BuildArgName(o.Name)
}

// Feature is a resolved, locally available devcontainer feature.
//
// A Feature is supplied by the devcontainer collaborator per build and is
// never mutated afterwards.
type Feature struct {
	// ID is the feature id from devcontainer-feature.json. It must match
	// the name of the folder that contains the feature.
	ID string `json:"id"`

	// Version is the feature's declared version.
	Version string `json:"version,omitempty"`

	// Name is the display name.
	Name string `json:"name,omitempty"`

	// InstallsAfter lists the ids of features that must be installed
	// before this one, in declaration order.
	InstallsAfter []string `json:"installsAfter,omitempty"`

	// Options are the declared options, sorted by name.
	Options []FeatureOption `json:"options,omitempty"`

	// ContainerEnv is the environment the feature contributes to the
	// image.
	ContainerEnv map[string]string `json:"containerEnv,omitempty"`

	// Dir is the absolute path to the feature folder.
	Dir string `json:"dir"`

	// Entrypoint is the absolute path to the feature's install.sh.
	Entrypoint string `json:"entrypoint"`
}

// featureIDRegex validates feature ids: alphanumeric, dots, hyphens and
// underscores, starting with an alphanumeric character.
var featureIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidateFeatureID checks that id can be used as part of a build stage
// name and as a path segment under /opt.
func ValidateFeatureID(id string) error {
	if id == "" {
		return fmt.Errorf("feature id must not be empty")
	}
	if !featureIDRegex.MatchString(id) {
		return fmt.Errorf("invalid feature id %q: must contain only alphanumeric characters, dots, hyphens and underscores, and start with alphanumeric", id)
	}
	return nil
}

var (
	// nonWordRegex matches every character that cannot appear in a
	// build-arg name.
	nonWordRegex = regexp.MustCompile(`[^\w_]`)

	// leadingRegex matches a run of leading digits and underscores, which
	// collapse to a single underscore.
	leadingRegex = regexp.MustCompile(`^[\d_]+`)
)

// BuildArgName converts a feature option name to the environment variable
// name the devcontainer CLI uses for it: characters outside [A-Za-z0-9_]
// become underscores, a leading run of digits and underscores collapses to
// one underscore, and the result is upper-cased.
//
//	BuildArgName("version")        == "VERSION"
//	BuildArgName("install-tools")  == "INSTALL_TOOLS"
//	BuildArgName("2fa.mode")       == "_FA_MODE"
func BuildArgName(name string) string {
	s := nonWordRegex.ReplaceAllString(name, "_")
	s = leadingRegex.ReplaceAllString(s, "_")
	return strings.ToUpper(s)
}

// ExitCode defines standard CLI exit codes.
// These codes allow scripts and CI systems to programmatically determine
// the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitDevContainerNotFound indicates devcontainer.json was not found,
	// was ambiguous, or could not be parsed.
	ExitDevContainerNotFound ExitCode = 2

	// ExitDockerNotRunning indicates the Docker daemon is not accessible.
	// Only reachable when digest pinning is requested.
	ExitDockerNotRunning ExitCode = 3

	// ExitFeatureResolution indicates a feature reference could not be
	// resolved or its folder is malformed.
	ExitFeatureResolution ExitCode = 4

	// ExitDependencyGraph indicates the feature graph has a cycle or a
	// missing dependency, or a referenced build stage does not exist.
	ExitDependencyGraph ExitCode = 5

	// ExitUnsupported indicates a construct with no Containerfile
	// rendering was requested.
	ExitUnsupported ExitCode = 6

	// ExitOutput indicates the generated Containerfile could not be
	// written.
	ExitOutput ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
