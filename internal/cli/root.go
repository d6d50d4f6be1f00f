// Package cli implements the cobra-based CLI commands for devpp.
//
// Each subcommand (build, plan, completion) is defined in its own file
// within this package. This file defines the root command that serves as
// the parent for all subcommands and handles global flags, logging setup,
// and the mapping from errors to exit codes.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/devpp/internal/ctxlog"
	"github.com/mmr-tortoise/devpp/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput switches command output, log records, and error reports
	// to JSON for machine consumption.
	jsonOutput bool

	// verbose lowers the log level to Debug.
	verbose bool
)

// Version, Commit, and Date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// The root command itself does not perform any action. It provides help
// text and global flags, and installs a logger into the command context
// before any subcommand runs.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "devpp",
		Short: "Generate a Containerfile from a devcontainer.json and its local features",
		Long: `devpp turns a devcontainer.json and its locally referenced features into a
plain multi-stage Containerfile that any container build engine can build.

Each feature is installed in its own stage, in installsAfter order, and the
final stage collects every feature's /opt/<id> folder.`,

		// Errors are printed by Execute, in text or JSON.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr())
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	// The explicit completion command replaces cobra's default one.
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(NewBuildCommand())
	rootCmd.AddCommand(NewPlanCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// newLogger builds the process logger: text records on stderr, or JSON
// records with --json. The level is Info, or Debug with --verbose.
func newLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if jsonOutput {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Execute runs the root command and exits the process with the code that
// matches the returned error. This is the main entry point called from
// main.go.
func Execute(rootCmd *cobra.Command) {
	os.Exit(int(run(context.Background(), rootCmd)))
}

// run executes rootCmd and reports a failure on its error stream. It
// returns the exit code instead of exiting so tests can call it.
func run(ctx context.Context, rootCmd *cobra.Command) model.ExitCode {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return model.ExitSuccess
	}

	code := exitCode(err)
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		printError(rootCmd.ErrOrStderr(), code, cliErr.Message, cliErr.Err)
	} else {
		printError(rootCmd.ErrOrStderr(), code, err.Error(), nil)
	}
	return code
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(w io.Writer, code model.ExitCode, message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"code":    int(code),
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// Errors go to stderr even in JSON mode; stdout is reserved for
		// successful command output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if underlying != nil {
		fmt.Fprintf(w, "Error: %s: %v\n", message, underlying)
	} else {
		fmt.Fprintf(w, "Error: %s\n", message)
	}
}
