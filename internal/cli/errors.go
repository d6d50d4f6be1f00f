package cli

import (
	"errors"

	"github.com/mmr-tortoise/devpp/internal/build"
	"github.com/mmr-tortoise/devpp/internal/containerfile"
	"github.com/mmr-tortoise/devpp/internal/devcontainer"
	"github.com/mmr-tortoise/devpp/internal/docker"
	"github.com/mmr-tortoise/devpp/internal/dockerfile"
	"github.com/mmr-tortoise/devpp/internal/model"
	"github.com/mmr-tortoise/devpp/internal/toposort"
)

// exitCode classifies err. A CLIError anywhere in the chain decides the
// code; otherwise the sentinel and typed errors of the internal packages
// are mapped to their category, and anything else is a general error.
func exitCode(err error) model.ExitCode {
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}

	var (
		validationErr *devcontainer.ValidationError
		referenceErr  *devcontainer.ReferenceError
		outsideErr    *build.FeatureOutsideContextError
		notFoundErr   *build.FeatureNotFoundError
		stageErr      *dockerfile.StageNotFoundError
	)
	switch {
	case errors.Is(err, containerfile.ErrUnsupported),
		errors.Is(err, containerfile.ErrInvalidVariable):
		return model.ExitUnsupported

	case errors.Is(err, toposort.ErrCycle),
		errors.Is(err, toposort.ErrUnknownNode),
		errors.As(err, &notFoundErr),
		errors.As(err, &stageErr),
		errors.Is(err, dockerfile.ErrTargetNotFound),
		errors.Is(err, dockerfile.ErrFromNotFound),
		errors.Is(err, dockerfile.ErrInstructionNotFound),
		errors.Is(err, build.ErrStageConflict):
		return model.ExitDependencyGraph

	case errors.As(err, &referenceErr),
		errors.As(err, &outsideErr),
		errors.Is(err, build.ErrDuplicateFeature),
		errors.Is(err, build.ErrOptionConflict):
		return model.ExitFeatureResolution

	case errors.Is(err, docker.ErrImageNotFound),
		errors.Is(err, docker.ErrDigestNotFound):
		return model.ExitDockerNotRunning

	case errors.Is(err, devcontainer.ErrConfigNotFound),
		errors.Is(err, devcontainer.ErrConfigAmbiguous),
		errors.Is(err, devcontainer.ErrConfigPermissionDenied),
		errors.Is(err, devcontainer.ErrDotdevNotFound),
		errors.Is(err, devcontainer.ErrComposeUnsupported),
		errors.As(err, &validationErr):
		return model.ExitDevContainerNotFound
	}
	return model.ExitGeneralError
}
