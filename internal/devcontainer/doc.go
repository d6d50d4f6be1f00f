// Package devcontainer handles discovery, parsing, and validation of
// devcontainer.json configuration files and of the local features they
// reference.
//
// It is the supplier side of devpp: everything here turns files on disk
// into typed records (ConfigFile, RawDevContainer, BuildInfo,
// model.Feature) that the build orchestrator consumes. Three base patterns
// are supported:
//
//   - image: Direct container image reference
//   - dockerfile: Builds on a stage of an existing Dockerfile
//   - compose: Uses the primary Compose service's image or build section
//
// Features must be referenced locally (a folder below .devcontainer/).
// Resolution failures are reported as *ReferenceError values whose Kind is
// one of the ErrReference*/ErrFeature* sentinels.
//
// JSONC (JSON with Comments) is supported via github.com/tidwall/jsonc,
// ensuring compatibility with the common practice of commenting
// devcontainer.json files.
package devcontainer
