package build

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mmr-tortoise/devpp/internal/containerfile"
	"github.com/mmr-tortoise/devpp/internal/ctxlog"
	"github.com/mmr-tortoise/devpp/internal/model"
	"github.com/mmr-tortoise/devpp/internal/toposort"
)

const (
	// BaseStage is the stage every feature stage and the final stage
	// start from.
	BaseStage = "devpp-base"

	// FeatureStagePrefix prefixes the feature id to name its stage.
	FeatureStagePrefix = "devpp-feature-"

	// FeatureMountRoot is where feature folders are bind-mounted while
	// their install script runs.
	FeatureMountRoot = "/devpp/features"

	// ArtifactRoot holds one folder per feature with everything the
	// feature installs for later stages.
	ArtifactRoot = "/opt"

	// DefaultTarget names the final stage when the caller sets none.
	DefaultTarget = "devcontainer"
)

// FeatureStage returns the stage name of a feature.
func FeatureStage(id string) string { return FeatureStagePrefix + id }

// FeatureMount returns where a feature folder is mounted.
func FeatureMount(id string) string { return path.Join(FeatureMountRoot, id) }

// Artifacts returns a feature's artifact folder.
func Artifacts(id string) string { return path.Join(ArtifactRoot, id) }

// Plan is the resolved shape of a build, before any text is produced.
type Plan struct {
	// Base describes the base stage: an image reference, or a Dockerfile
	// path and stage.
	Base string `json:"base"`

	// Target is the final stage name.
	Target string `json:"target"`

	// Features in build order.
	Features []PlannedFeature `json:"features"`
}

// PlannedFeature is one feature stage.
type PlannedFeature struct {
	ID    string `json:"id"`
	Ref   string `json:"ref"`
	Stage string `json:"stage"`

	// Source is the feature folder relative to the build context.
	Source string `json:"source"`

	Mount     string `json:"mount"`
	Artifacts string `json:"artifacts"`

	// Dependencies are every feature this one installs after, directly or
	// transitively, in build order.
	Dependencies []string `json:"dependencies"`

	// Args are the resolved option values by build-arg name. Options with
	// neither a value nor a default are absent.
	Args map[string]string `json:"args,omitempty"`

	feature Feature
	decls   []containerfile.ArgDecl
}

// NewPlan orders the request's features and resolves their stage layout.
func NewPlan(ctx context.Context, req *Request) (*Plan, error) {
	target := req.Target
	if target == "" {
		target = DefaultTarget
	}

	byID := make(map[string]Feature, len(req.Features))
	nodes := make([]string, 0, len(req.Features))
	for _, f := range req.Features {
		if prev, ok := byID[f.ID]; ok {
			return nil, fmt.Errorf("%w: %q (%s and %s)", ErrDuplicateFeature, f.ID, prev.Ref, f.Ref)
		}
		byID[f.ID] = f
		nodes = append(nodes, f.ID)
	}

	var edges []toposort.Edge[string]
	for _, f := range req.Features {
		for _, dep := range f.InstallsAfter {
			if _, ok := byID[dep]; !ok {
				return nil, &FeatureNotFoundError{ID: f.ID, DependencyID: dep}
			}
			edges = append(edges, toposort.Edge[string]{From: dep, To: f.ID})
		}
	}

	order, err := toposort.Sort(nodes, edges)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("feature build order", "order", order)

	if err := checkStageNames(req, target, order); err != nil {
		return nil, err
	}

	plan := &Plan{Base: describeBase(req), Target: target}
	position := make(map[string]int, len(order))
	for i, id := range order {
		position[id] = i
	}

	closure := make(map[string]map[string]struct{}, len(order))
	for _, id := range order {
		f := byID[id]

		deps := make(map[string]struct{})
		for _, dep := range f.InstallsAfter {
			deps[dep] = struct{}{}
			for d := range closure[dep] {
				deps[d] = struct{}{}
			}
		}
		closure[id] = deps

		sorted := make([]string, 0, len(deps))
		for d := range deps {
			sorted = append(sorted, d)
		}
		sort.Slice(sorted, func(i, j int) bool { return position[sorted[i]] < position[sorted[j]] })

		source, err := req.source(f)
		if err != nil {
			return nil, err
		}

		decls, args, err := resolveArgs(f)
		if err != nil {
			return nil, err
		}
		plan.Features = append(plan.Features, PlannedFeature{
			ID:           id,
			Ref:          f.Ref,
			Stage:        FeatureStage(id),
			Source:       source,
			Mount:        FeatureMount(id),
			Artifacts:    Artifacts(id),
			Dependencies: sorted,
			Args:         args,
			feature:      f,
			decls:        decls,
		})
	}
	return plan, nil
}

// resolveArgs returns one ARG declaration per declared option, in option
// name order. A user value wins over the declared default. Two options
// whose build-arg names collide are an error.
func resolveArgs(f Feature) ([]containerfile.ArgDecl, map[string]string, error) {
	var (
		decls []containerfile.ArgDecl
		args  map[string]string
	)
	owner := make(map[string]string, len(f.Feature.Options))
	for _, opt := range f.Feature.Options {
		decl := containerfile.ArgDecl{Name: model.BuildArgName(opt.Name)}
		if prev, ok := owner[decl.Name]; ok {
			return nil, nil, fmt.Errorf("%w: feature %q options %q and %q are both %s",
				ErrOptionConflict, f.ID, prev, opt.Name, decl.Name)
		}
		owner[decl.Name] = opt.Name

		if v, ok := f.Values[opt.Name]; ok {
			decl.Default, decl.HasDefault = v, true
		} else if opt.HasDefault {
			decl.Default, decl.HasDefault = opt.Default, true
		}
		decls = append(decls, decl)
		if decl.HasDefault {
			if args == nil {
				args = make(map[string]string)
			}
			args[decl.Name] = decl.Default
		}
	}
	return decls, args, nil
}

// checkStageNames rejects generated stage names that collide with each
// other or with stages of the embedded Dockerfile. Stage names compare
// case-insensitively.
func checkStageNames(req *Request, target string, order []string) error {
	taken := make(map[string]string)
	if df := req.Base.Dockerfile; df != nil {
		for _, s := range df.Stages {
			if s != "" {
				taken[strings.ToLower(s)] = "the Dockerfile"
			}
		}
	}

	names := []string{BaseStage}
	for _, id := range order {
		names = append(names, FeatureStage(id))
	}
	names = append(names, target)

	for _, name := range names {
		key := strings.ToLower(name)
		if by, ok := taken[key]; ok {
			return fmt.Errorf("%w: %q by %s", ErrStageConflict, name, by)
		}
		taken[key] = "devpp"
	}
	return nil
}

func describeBase(req *Request) string {
	if df := req.Base.Dockerfile; df != nil {
		stage := req.Base.Stage
		if stage == "" {
			stage = "<last stage>"
		}
		name := df.Path
		if rel, err := filepath.Rel(req.Context, df.Path); err == nil && !strings.HasPrefix(rel, "..") {
			name = filepath.ToSlash(rel)
		}
		return fmt.Sprintf("%s (stage %s)", name, stage)
	}
	return req.Base.Image
}
