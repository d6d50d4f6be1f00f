// Package config loads devpp's optional settings file, devpp.yaml.
//
// Settings are layered: Default() supplies every value, a devpp.yaml file
// overlays the fields it sets, and command-line flags (applied by the CLI)
// override both. The file is looked up in the workspace at
// .devcontainer/devpp.yaml and then devpp.yaml, or given explicitly with
// --settings. A missing file is not an error unless it was given
// explicitly.
package config
