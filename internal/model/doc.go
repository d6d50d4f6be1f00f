// Package model defines the domain types and value objects for the
// devpp CLI.
//
// This package contains pure data structures with no external
// dependencies: the resolved Feature and FeatureOption records handed from
// the devcontainer collaborator to the build orchestrator, the
// ConfigPattern of a devcontainer.json, and the build-arg naming rule
// shared by both sides.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
