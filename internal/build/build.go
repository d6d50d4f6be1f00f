package build

import (
	"context"
	"path"
	"path/filepath"
	"sort"

	"github.com/mmr-tortoise/devpp/internal/containerfile"
	"github.com/mmr-tortoise/devpp/internal/ctxlog"
	"github.com/mmr-tortoise/devpp/internal/devcontainer"
)

// Header is the comment that opens every generated Containerfile.
const Header = "Generated by devpp. DO NOT EDIT."

// Build plans req and emits the Containerfile. Nothing is rendered here;
// unsupported constructs surface when the result is rendered.
func Build(ctx context.Context, req *Request) (*containerfile.Containerfile, error) {
	plan, err := NewPlan(ctx, req)
	if err != nil {
		return nil, err
	}
	return Emit(ctx, req, plan)
}

// Emit turns a plan into instructions.
func Emit(ctx context.Context, req *Request, plan *Plan) (*containerfile.Containerfile, error) {
	cf := containerfile.New()

	pushDirectives(ctx, cf, req)
	cf.Push(containerfile.Comment{Text: Header}, containerfile.Empty{})

	if err := pushBase(cf, req); err != nil {
		return nil, err
	}

	applied := make(map[string]PlannedFeature, len(plan.Features))
	for _, pf := range plan.Features {
		applied[pf.ID] = pf
	}

	for _, pf := range plan.Features {
		cf.Push(
			containerfile.Empty{},
			containerfile.From{Kind: containerfile.Stage{Name: BaseStage}, Name: pf.Stage},
		)
		for _, dep := range pf.Dependencies {
			pushApply(cf, applied[dep], req.Link)
		}
		for _, decl := range pf.decls {
			cf.Push(containerfile.Arg{Decls: []containerfile.ArgDecl{decl}})
		}
		pushEnv(cf, pf.feature.ContainerEnv)

		run, err := containerfile.NewRun(&containerfile.RunOptions{
			Mounts: []containerfile.Mount{containerfile.BindMount{
				Destination: pf.Mount,
				Source:      pf.Source,
			}},
		}, path.Join(pf.Mount, entrypointName(pf)))
		if err != nil {
			return nil, err
		}
		cf.Push(run)
	}

	cf.Push(
		containerfile.Empty{},
		containerfile.From{Kind: containerfile.Stage{Name: BaseStage}, Name: plan.Target},
	)
	for _, pf := range plan.Features {
		pushApply(cf, pf, req.Link)
	}

	ctxlog.FromContext(ctx).Debug("emitted containerfile", "instructions", cf.Len(), "features", len(plan.Features), "target", plan.Target)
	return cf, nil
}

// pushDirectives emits the parser directives: syntax, escape, then check.
func pushDirectives(ctx context.Context, cf *containerfile.Containerfile, req *Request) {
	logger := ctxlog.FromContext(ctx)
	df := req.Base.Dockerfile

	syntax := req.Syntax
	if syntax == "" && df != nil {
		syntax, _ = df.Directive("syntax")
	}
	if syntax != "" {
		cf.Push(containerfile.SyntaxDirective(syntax))
	}

	switch {
	case df != nil:
		if req.Escape != 0 && req.Escape != df.Escape {
			logger.Warn("keeping the Dockerfile escape character", "dockerfile", df.Path, "escape", string(df.Escape), "requested", string(req.Escape))
		}
		if df.Escape != containerfile.DefaultEscape {
			cf.Push(containerfile.EscapeDirective(df.Escape))
		}
	case req.Escape != 0 && req.Escape != containerfile.DefaultEscape:
		cf.Push(containerfile.EscapeDirective(req.Escape))
	}

	if df != nil {
		if check, ok := df.Directive("check"); ok {
			cf.Push(containerfile.CheckDirective(check))
		}
	}
}

// pushBase emits the base stage.
func pushBase(cf *containerfile.Containerfile, req *Request) error {
	if df := req.Base.Dockerfile; df != nil {
		stage, err := df.Target(req.Base.Stage)
		if err != nil {
			return err
		}
		cf.Push(
			containerfile.Verbatim{Text: df.Body},
			containerfile.Empty{},
			containerfile.From{Kind: containerfile.Stage{Name: stage}, Name: BaseStage},
		)
		return nil
	}

	img, _, err := ParseImage(req.Base.Image)
	if err != nil {
		return err
	}
	cf.Push(containerfile.From{Kind: img, Name: BaseStage, Platform: req.Base.Platform})
	return nil
}

// pushApply emits the block that makes an already built feature available
// in the current stage: a marker comment, its containerEnv, and a copy of
// its artifact folder.
func pushApply(cf *containerfile.Containerfile, pf PlannedFeature, link bool) {
	cf.Push(containerfile.Comment{Text: "apply " + pf.ID})
	pushEnv(cf, pf.feature.ContainerEnv)
	cf.Push(containerfile.Copy{
		Destination: pf.Artifacts,
		Options:     &containerfile.CopyOptions{From: containerfile.Stage{Name: pf.Stage}, Link: link},
		Sources:     []string{pf.Artifacts},
	})
}

// entrypointName is the install script's file name inside the mount.
func entrypointName(pf PlannedFeature) string {
	if pf.feature.Entrypoint == "" {
		return devcontainer.FeatureEntrypointFile
	}
	return filepath.Base(pf.feature.Entrypoint)
}

// pushEnv emits one ENV per variable, sorted by name.
func pushEnv(cf *containerfile.Containerfile, env map[string]string) {
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cf.Push(containerfile.Env{Vars: []containerfile.EnvVar{{Name: name, Value: env[name]}}})
	}
}
