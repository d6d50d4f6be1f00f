package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the settings file name looked up in a workspace.
const FileName = "devpp.yaml"

// ErrInvalidEscape is returned when the escape setting is neither a
// backslash nor a backtick.
var ErrInvalidEscape = errors.New("escape must be a backslash or a backtick")

// Config holds the settings for a devpp build.
type Config struct {
	// Target is the name of the final, user-facing stage.
	// Default: devcontainer
	Target string `yaml:"target"`

	// Output is where the Containerfile is written; "-" means stdout.
	// Default: -
	Output string `yaml:"output"`

	// Escape is the escape character of the generated Containerfile.
	// Ignored when the base comes from a Dockerfile, whose own escape
	// character is kept.
	// Default: \
	Escape string `yaml:"escape"`

	// Syntax, when set, is emitted as a "# syntax=" parser directive.
	Syntax string `yaml:"syntax,omitempty"`

	// Platform is passed to the base stage as FROM --platform.
	Platform string `yaml:"platform,omitempty"`

	// PinDigest resolves the base image digest from the local Docker
	// daemon and pins it in the FROM line.
	PinDigest bool `yaml:"pin_digest"`

	// Link emits COPY --link for feature artifacts.
	Link bool `yaml:"link"`

	// Path is the file the settings were loaded from, empty for defaults.
	Path string `yaml:"-"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the settings file.
func Default() *Config {
	return &Config{
		Target: "devcontainer",
		Output: "-",
		Escape: `\`,
	}
}

// Candidates returns the settings file locations searched in workspace,
// in order.
func Candidates(workspace string) []string {
	return []string{
		filepath.Join(workspace, ".devcontainer", FileName),
		filepath.Join(workspace, FileName),
	}
}

// Load returns the settings for workspace. When explicit is non-empty that
// file must exist. Otherwise the first existing candidate is loaded, and
// the defaults are returned when there is none.
func Load(workspace, explicit string) (*Config, error) {
	if explicit != "" {
		return LoadFile(explicit)
	}
	for _, path := range Candidates(workspace) {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}
	return Default(), nil
}

// LoadFile loads configuration from a specific file path, overlaying it on
// Default().
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("failed to load settings %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, c)
}

// Validate checks settings that would otherwise fail late, during rendering.
func (c *Config) Validate() error {
	if c.Target == "" {
		return errors.New("target must not be empty")
	}
	if c.Output == "" {
		return errors.New("output must not be empty")
	}
	if _, err := c.EscapeRune(); err != nil {
		return err
	}
	return nil
}

// EscapeRune returns Escape as a rune.
func (c *Config) EscapeRune() (rune, error) {
	switch c.Escape {
	case `\`:
		return '\\', nil
	case "`":
		return '`', nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidEscape, c.Escape)
	}
}
