package devcontainer

import (
	"fmt"
	"path/filepath"

	"github.com/mmr-tortoise/devpp/internal/model"
)

// BuildInfo tells the orchestrator what the generated Containerfile builds
// on and where its build context is.
type BuildInfo struct {
	// Pattern is the configuration pattern the info was derived from.
	Pattern model.ConfigPattern

	// Context is the canonical build context directory. Feature folders
	// are bind-mounted by their path relative to it, so they must lie
	// inside it.
	Context string

	// Image is the base image reference. Empty when Dockerfile is set.
	Image string

	// Dockerfile is the absolute path of an existing Dockerfile whose
	// Target stage becomes the base.
	Dockerfile string

	// Target is the Dockerfile stage to build on. Empty means the last
	// stage.
	Target string
}

// NewBuildInfo derives BuildInfo from a located and parsed devcontainer.json.
//
// Relative paths resolve against the folder that holds devcontainer.json:
//   - image → the build context is the .devcontainer/ folder (or the
//     config folder for a plain .devcontainer.json)
//   - build → context is build.context (default "."), the Dockerfile is
//     build.dockerfile
//   - dockerComposeFile → the primary service's image or build section
func NewBuildInfo(cfg *ConfigFile, raw *RawDevContainer) (*BuildInfo, error) {
	pattern := DetectPattern(raw)
	info := &BuildInfo{Pattern: pattern}

	switch pattern {
	case model.PatternCompose:
		base, err := ResolveComposeBase(cfg.Dir(), GetComposeFiles(raw), raw.Service)
		if err != nil {
			return nil, err
		}
		if base.Dockerfile == "" {
			info.Image = base.Image
			info.defaultContext(cfg)
			return info, nil
		}
		info.Dockerfile = base.Dockerfile
		info.Target = base.Target
		ctx, err := canonical(base.Context)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve build context %s: %w", base.Context, err)
		}
		info.Context = ctx
		return info, nil

	case model.PatternDockerfile:
		if raw.Build.Dockerfile == "" {
			return nil, &ValidationError{Field: "build.dockerfile", Message: "is required when build is specified"}
		}
		context := raw.Build.Context
		if context == "" {
			context = "."
		}
		ctx, err := canonical(filepath.Join(cfg.Dir(), context))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve build context %s: %w", context, err)
		}
		info.Context = ctx
		info.Dockerfile = filepath.Join(cfg.Dir(), raw.Build.Dockerfile)
		info.Target = raw.Build.Target
		return info, nil

	default:
		if raw.Image == "" {
			return nil, &ValidationError{Field: "image", Message: "one of image, build or dockerComposeFile is required"}
		}
		info.Image = raw.Image
		info.defaultContext(cfg)
		return info, nil
	}
}

// defaultContext sets the context used when devcontainer.json names none.
func (b *BuildInfo) defaultContext(cfg *ConfigFile) {
	if dotdev, err := cfg.Dotdev(); err == nil {
		b.Context = dotdev
		return
	}
	b.Context = cfg.Dir()
}
