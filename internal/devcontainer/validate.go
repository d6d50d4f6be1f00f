// validate.go provides validation functions that catch devcontainer.json
// mistakes before any Containerfile text is generated.
//
// Validation is advisory where the devcontainer.json format is lenient (for example
// a missing name) and strict where devpp would otherwise produce a broken
// build (for example a Compose file without a service).
package devcontainer

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/mmr-tortoise/devpp/internal/model"
)

// ValidationError represents a specific validation failure in a devcontainer.json file.
type ValidationError struct {
	// Field is the JSON field path that failed validation (e.g., "build.dockerfile").
	Field string

	// Message describes what's wrong with the field value.
	Message string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("devcontainer.json validation error: %s: %s", e.Field, e.Message)
}

// ValidateConfig performs consistency checks on a parsed devcontainer.json
// configuration. It returns a list of validation errors (empty list = valid
// configuration).
//
// Checks performed:
//   - Pattern consistency: dockerComposeFile must not be combined with image or build
//   - Compose fields: service must be set when dockerComposeFile is present
//   - Build paths: dockerfile is required and, like context, should be relative
//   - Base presence: one of image, build or dockerComposeFile must be set
//   - Feature references: must not be absolute paths
func ValidateConfig(raw *RawDevContainer) []ValidationError {
	var errors []ValidationError

	hasImage := raw.Image != ""
	hasBuild := raw.Build != nil
	hasCompose := raw.DockerComposeFile != nil

	if hasCompose && (hasImage || hasBuild) {
		errors = append(errors, ValidationError{
			Field:   "dockerComposeFile",
			Message: "dockerComposeFile should not be combined with image or build fields",
		})
	}

	if hasCompose && raw.Service == "" {
		errors = append(errors, ValidationError{
			Field:   "service",
			Message: "service field is required when dockerComposeFile is specified",
		})
	}

	if !hasImage && !hasBuild && !hasCompose {
		errors = append(errors, ValidationError{
			Field:   "image",
			Message: "one of image, build or dockerComposeFile is required",
		})
	}

	if raw.Build != nil {
		if raw.Build.Dockerfile == "" {
			errors = append(errors, ValidationError{
				Field:   "build.dockerfile",
				Message: "dockerfile is required when build is specified",
			})
		} else if filepath.IsAbs(raw.Build.Dockerfile) {
			errors = append(errors, ValidationError{
				Field:   "build.dockerfile",
				Message: "dockerfile path should be relative to the devcontainer.json directory",
			})
		}
		if raw.Build.Context != "" && filepath.IsAbs(raw.Build.Context) {
			errors = append(errors, ValidationError{
				Field:   "build.context",
				Message: "context path should be relative to the devcontainer.json directory",
			})
		}
	}

	refs := make([]string, 0, len(raw.Features))
	for ref := range raw.Features {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	for _, ref := range refs {
		if filepath.IsAbs(ref) {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("features[%q]", ref),
				Message: "a local feature may not be referenced by absolute path",
			})
		}
	}

	return errors
}

// UnknownOptions returns the names in overrides that the feature does not
// declare, sorted. Such values have no build-arg to land in and are
// ignored by the orchestrator.
func UnknownOptions(feature *model.Feature, overrides map[string]string) []string {
	declared := make(map[string]struct{}, len(feature.Options))
	for _, opt := range feature.Options {
		declared[opt.Name] = struct{}{}
	}

	var unknown []string
	for name := range overrides {
		if _, ok := declared[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}
