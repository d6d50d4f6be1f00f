package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/devpp/internal/build"
)

// NewPlanCommand creates the "plan" subcommand that shows the resolved
// build layout without generating a Containerfile.
func NewPlanCommand() *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "plan [workspace]",
		Short: "Show the feature build order and stage layout",
		Long: `Show how devpp would build the workspace: the base, the final stage, and
every feature stage in build order with its dependencies, build args, and
artifact folder.

Use --json for machine-readable output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, args, flags)
		},
	}

	addBuildFlags(cmd, flags)
	return cmd
}

// runPlan executes the plan command logic.
func runPlan(cmd *cobra.Command, args []string, flags *buildFlags) error {
	req, _, err := loadRequest(cmd, args, flags)
	if err != nil {
		return err
	}

	plan, err := build.NewPlan(cmd.Context(), req)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printPlanJSON(cmd.OutOrStdout(), plan)
	}
	printPlanText(cmd.OutOrStdout(), plan)
	return nil
}

// printPlanJSON outputs the plan as indented JSON.
func printPlanJSON(w io.Writer, plan *build.Plan) error {
	// An empty slice keeps the field a JSON array rather than null.
	if plan.Features == nil {
		plan.Features = []build.PlannedFeature{}
	}
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// printPlanText outputs the plan in a human-readable layout.
//
// Example output:
//
//	Base:   alpine:3.20
//	Target: devcontainer
//
//	1. base-tool (devpp-feature-base-tool)
//	   source:    base-tool
//	   artifacts: /opt/base-tool
//	   args:      CHANNEL=stable VERSION=1.0
func printPlanText(w io.Writer, plan *build.Plan) {
	fmt.Fprintf(w, "Base:   %s\n", plan.Base)
	fmt.Fprintf(w, "Target: %s\n", plan.Target)

	if len(plan.Features) == 0 {
		fmt.Fprintln(w, "\nNo features.")
		return
	}

	for i, f := range plan.Features {
		fmt.Fprintf(w, "\n%d. %s (%s)\n", i+1, f.ID, f.Stage)
		fmt.Fprintf(w, "   source:    %s\n", f.Source)
		fmt.Fprintf(w, "   artifacts: %s\n", f.Artifacts)
		if len(f.Dependencies) > 0 {
			fmt.Fprintf(w, "   after:     %s\n", strings.Join(f.Dependencies, ", "))
		}
		if len(f.Args) > 0 {
			fmt.Fprintf(w, "   args:      %s\n", formatArgs(f.Args))
		}
	}
}

// formatArgs renders build args as space-separated NAME=value pairs,
// sorted by name.
func formatArgs(args map[string]string) string {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, len(names))
	for i, name := range names {
		pairs[i] = name + "=" + args[name]
	}
	return strings.Join(pairs, " ")
}
