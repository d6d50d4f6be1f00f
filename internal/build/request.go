package build

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/devpp/internal/ctxlog"
	"github.com/mmr-tortoise/devpp/internal/devcontainer"
	"github.com/mmr-tortoise/devpp/internal/dockerfile"
	"github.com/mmr-tortoise/devpp/internal/model"
)

// Base is what the generated base stage builds on. Exactly one of Image
// and Dockerfile is set.
type Base struct {
	// Image is an image reference, e.g. "alpine:3.20".
	Image string

	// Platform is rendered as FROM --platform for an image base.
	Platform string

	// Dockerfile is an existing Dockerfile whose body is embedded.
	Dockerfile *dockerfile.Dockerfile

	// Stage is the Dockerfile stage the base stage builds on. Empty means
	// the last stage.
	Stage string
}

// Feature is a resolved feature together with the option values the
// configuration sets for it.
type Feature struct {
	// Ref is the reference as written in devcontainer.json.
	Ref string

	*model.Feature

	// Values maps option names to user-supplied values. Options without
	// a value here fall back to their declared default.
	Values map[string]string
}

// Request is everything needed to generate a Containerfile.
type Request struct {
	// Context is the canonical build context directory.
	Context string

	Base Base

	// Features in declaration order. The build order is computed from
	// their installsAfter lists.
	Features []Feature

	// Target names the final stage.
	Target string

	// Link emits COPY --link for feature artifacts.
	Link bool

	// Escape is the document escape character. Zero means the default
	// backslash. A Dockerfile base keeps its own escape character.
	Escape rune

	// Syntax, when set, is emitted as a "# syntax=" directive. Otherwise a
	// Dockerfile base's syntax directive is carried over.
	Syntax string
}

// Settings are the caller-controlled parts of a Request.
type Settings struct {
	Target   string
	Platform string
	Link     bool
	Escape   rune
	Syntax   string
}

// NewRequest resolves a located devcontainer.json into a Request: it
// derives the base and build context, loads a Dockerfile base, and resolves
// and loads every local feature.
func NewRequest(ctx context.Context, cfg *devcontainer.ConfigFile, raw *devcontainer.RawDevContainer, settings Settings) (*Request, error) {
	logger := ctxlog.FromContext(ctx)

	info, err := devcontainer.NewBuildInfo(cfg, raw)
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved build info",
		"pattern", info.Pattern.String(),
		"context", info.Context,
		"image", info.Image,
		"dockerfile", info.Dockerfile,
		"target", info.Target,
	)

	req := &Request{
		Context: info.Context,
		Target:  settings.Target,
		Link:    settings.Link,
		Escape:  settings.Escape,
		Syntax:  settings.Syntax,
		Base:    Base{Image: info.Image, Platform: settings.Platform, Stage: info.Target},
	}

	if info.Dockerfile != "" {
		df, err := dockerfile.Load(info.Dockerfile)
		if err != nil {
			return nil, err
		}
		req.Base.Dockerfile = df
		if settings.Platform != "" {
			logger.Warn("--platform is ignored for a Dockerfile base", "dockerfile", info.Dockerfile)
		}
	}

	refs, err := raw.FeatureRefs()
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		dir, err := devcontainer.ResolveReference(cfg, ref.Ref)
		if err != nil {
			return nil, err
		}
		f, err := devcontainer.LoadFeature(ref.Ref, dir)
		if err != nil {
			return nil, err
		}
		if unknown := devcontainer.UnknownOptions(f, ref.Options); len(unknown) > 0 {
			logger.Warn("ignoring options the feature does not declare", "feature", f.ID, "options", unknown)
		}
		logger.Debug("resolved feature", "ref", ref.Ref, "id", f.ID, "dir", dir, "installsAfter", f.InstallsAfter)
		req.Features = append(req.Features, Feature{Ref: ref.Ref, Feature: f, Values: ref.Options})
	}
	return req, nil
}

// source returns the feature folder relative to the build context, in
// slash form, for use as a bind mount source.
func (r *Request) source(f Feature) (string, error) {
	rel, err := filepath.Rel(r.Context, f.Dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", &FeatureOutsideContextError{ID: f.ID, Dir: f.Dir, Context: r.Context}
	}
	return filepath.ToSlash(rel), nil
}

