package build

import (
	"errors"
	"fmt"
)

// ErrDuplicateFeature is returned when two feature references resolve to
// features with the same id.
var ErrDuplicateFeature = errors.New("feature id is declared more than once")

// FeatureNotFoundError reports an installsAfter entry that names a feature
// the configuration does not declare.
type FeatureNotFoundError struct {
	// ID is the feature whose installsAfter names the missing dependency.
	ID string

	// DependencyID is the missing feature.
	DependencyID string
}

func (e *FeatureNotFoundError) Error() string {
	return fmt.Sprintf("feature %q is dependent on %q, which was not found in the devcontainer.json", e.ID, e.DependencyID)
}

// FeatureOutsideContextError reports a feature folder that the build
// context does not contain, so it cannot be bind-mounted.
type FeatureOutsideContextError struct {
	ID      string
	Dir     string
	Context string
}

func (e *FeatureOutsideContextError) Error() string {
	return fmt.Sprintf("feature %q at %s is outside of the build context %s", e.ID, e.Dir, e.Context)
}

// ErrStageConflict is returned when a stage name devpp generates is
// already used by the embedded Dockerfile or by another generated stage.
var ErrStageConflict = errors.New("stage name is already declared")

// ErrOptionConflict is returned when two options of one feature map to
// the same build-arg name, e.g. "foo-bar" and "foo_bar".
var ErrOptionConflict = errors.New("options map to the same build-arg name")
