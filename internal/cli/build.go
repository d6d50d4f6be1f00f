package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/distribution/reference"
	"github.com/opencontainers/go-digest"
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/devpp/internal/build"
	"github.com/mmr-tortoise/devpp/internal/config"
	"github.com/mmr-tortoise/devpp/internal/ctxlog"
	"github.com/mmr-tortoise/devpp/internal/devcontainer"
	"github.com/mmr-tortoise/devpp/internal/docker"
	"github.com/mmr-tortoise/devpp/internal/model"
	"github.com/mmr-tortoise/devpp/internal/workspace"
)

// buildFlags holds the flag values for the build and plan commands.
type buildFlags struct {
	configPath   string
	settingsPath string
	output       string
	target       string
	platform     string
	escape       string
	syntax       string
	pinDigest    bool
	link         bool
}

// NewBuildCommand creates the "build" subcommand that generates a
// Containerfile from a devcontainer.json.
func NewBuildCommand() *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "build [workspace]",
		Short: "Generate a Containerfile for a workspace",
		Long: `Generate a multi-stage Containerfile from the workspace's devcontainer.json.

The workspace defaults to the top level of the Git working tree that contains
the current directory, or the current directory itself outside Git.

The base stage is the configured image or Dockerfile stage. Every local
feature gets its own stage, in installsAfter order, and the final stage
copies each feature's /opt/<id> folder on top of the base.

Settings are read from .devcontainer/devpp.yaml or devpp.yaml in the
workspace (or --settings). Flags override settings file values.`,
		Example: `  # Print the Containerfile for the current project
  devpp build

  # Write it next to devcontainer.json with a pinned base image
  devpp build -o .devcontainer/Containerfile --pin-digest

  # Pick one of several scoped configurations
  devpp build --config .devcontainer/python/devcontainer.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args, flags)
		},
	}

	addBuildFlags(cmd, flags)
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (- for stdout)")
	cmd.Flags().BoolVar(&flags.pinDigest, "pin-digest", false, "Pin the base image digest from the local Docker daemon")

	return cmd
}

// addBuildFlags registers the flags shared by build and plan.
func addBuildFlags(cmd *cobra.Command, flags *buildFlags) {
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Path to devcontainer.json")
	cmd.Flags().StringVar(&flags.settingsPath, "settings", "", "Path to devpp.yaml")
	cmd.Flags().StringVar(&flags.target, "target", "", "Name of the final stage")
	cmd.Flags().StringVar(&flags.platform, "platform", "", "Platform of the base image (FROM --platform)")
	cmd.Flags().StringVar(&flags.escape, "escape", "", "Escape character of the Containerfile (\\ or `)")
	cmd.Flags().StringVar(&flags.syntax, "syntax", "", "Frontend image for the # syntax= directive")
	cmd.Flags().BoolVar(&flags.link, "link", false, "Emit COPY --link for feature artifacts")
}

// runBuild executes the build command logic.
func runBuild(cmd *cobra.Command, args []string, flags *buildFlags) error {
	ctx := cmd.Context()
	logger := ctxlog.FromContext(ctx)

	req, settings, err := loadRequest(cmd, args, flags)
	if err != nil {
		return err
	}

	if settings.PinDigest {
		if err := pinBase(ctx, req); err != nil {
			return err
		}
	}

	cf, err := build.Build(ctx, req)
	if err != nil {
		return err
	}

	dgst, err := build.Write(cf, settings.Output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	logger.Info("generated Containerfile",
		"output", settings.Output,
		"instructions", cf.Len(),
		"digest", dgst.String(),
	)
	return nil
}

// loadRequest resolves the workspace, settings, and devcontainer.json into
// a build request.
func loadRequest(cmd *cobra.Command, args []string, flags *buildFlags) (*build.Request, *config.Config, error) {
	ctx := cmd.Context()
	logger := ctxlog.FromContext(ctx)

	root, err := resolveWorkspace(ctx, args)
	if err != nil {
		return nil, nil, err
	}

	settings, err := config.Load(root, flags.settingsPath)
	if err != nil {
		return nil, nil, model.WrapCLIError(model.ExitGeneralError, "failed to load settings", err)
	}
	if err := applyFlags(cmd, settings, flags); err != nil {
		return nil, nil, err
	}
	escape, err := settings.EscapeRune()
	if err != nil {
		return nil, nil, model.WrapCLIError(model.ExitGeneralError, "invalid --escape", err)
	}
	if settings.Path != "" {
		logger.Debug("loaded settings", "path", settings.Path)
	}

	cfgFile, err := devcontainer.FindConfig(root, flags.configPath)
	if err != nil {
		return nil, nil, model.WrapCLIError(model.ExitDevContainerNotFound, "failed to locate devcontainer.json", err)
	}
	raw, err := devcontainer.LoadConfig(cfgFile.Path)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("loaded devcontainer.json", "path", cfgFile.Path, "pattern", devcontainer.DetectPattern(raw).String())

	for _, v := range devcontainer.ValidateConfig(raw) {
		logger.Warn("devcontainer.json", "field", v.Field, "problem", v.Message)
	}

	req, err := build.NewRequest(ctx, cfgFile, raw, build.Settings{
		Target:   settings.Target,
		Platform: settings.Platform,
		Link:     settings.Link,
		Escape:   escape,
		Syntax:   settings.Syntax,
	})
	if err != nil {
		return nil, nil, err
	}
	return req, settings, nil
}

// resolveWorkspace returns the workspace folder: the argument when given,
// otherwise the Git top level of the current directory.
func resolveWorkspace(ctx context.Context, args []string) (string, error) {
	if len(args) == 1 {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to resolve workspace %s: %w", args[0], err)
		}
		return abs, nil
	}
	ws, err := workspace.Detect(ctx, ".")
	if err != nil {
		return "", err
	}
	return ws.Root, nil
}

// applyFlags overlays explicitly set flags on the loaded settings.
func applyFlags(cmd *cobra.Command, settings *config.Config, flags *buildFlags) error {
	changed := cmd.Flags().Changed
	if changed("target") {
		settings.Target = flags.target
	}
	if changed("platform") {
		settings.Platform = flags.platform
	}
	if changed("escape") {
		settings.Escape = flags.escape
	}
	if changed("syntax") {
		settings.Syntax = flags.syntax
	}
	if changed("link") {
		settings.Link = flags.link
	}
	if changed("output") {
		settings.Output = flags.output
	}
	if changed("pin-digest") {
		settings.PinDigest = flags.pinDigest
	}
	if err := settings.Validate(); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "invalid settings", err)
	}
	return nil
}

// pinBase replaces an image base with its digest-pinned form. Dockerfile
// bases are left alone; their FROM lines are the Dockerfile's business.
func pinBase(ctx context.Context, req *build.Request) error {
	logger := ctxlog.FromContext(ctx)
	if req.Base.Image == "" {
		logger.Warn("--pin-digest has no effect on a Dockerfile base")
		return nil
	}

	client, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Ping(ctx); err != nil {
		return err
	}

	resolver := build.DigestResolverFunc(func(ctx context.Context, ref reference.Named) (digest.Digest, error) {
		return docker.ResolveDigest(ctx, client.Images(), ref)
	})
	pinned, err := build.PinImage(ctx, resolver, req.Base.Image)
	if err != nil {
		return err
	}
	logger.Debug("pinned base image", "image", req.Base.Image, "pinned", pinned)
	req.Base.Image = pinned
	return nil
}
