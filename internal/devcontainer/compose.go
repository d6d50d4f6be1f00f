// compose.go resolves the base of a Compose-based devcontainer.json.
//
// devpp does not run Compose. It reads the Compose file(s) only to find out
// how the primary service's image is produced, and then treats that exactly
// like an image or Dockerfile configuration:
//   - service.image only → image base
//   - service.build → Dockerfile base (context, dockerfile, target)
//
// Multiple Compose files are merged in order, with later files overriding
// the image and build fields of earlier ones, mirroring Docker Compose's
// override mechanism. Relative paths resolve against the project directory,
// which is the directory of the first Compose file.
package devcontainer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrComposeUnsupported is returned when the primary Compose service has
// neither an image nor a build section.
var ErrComposeUnsupported = errors.New("compose service declares neither image nor build")

// composeFile is the subset of a Compose file devpp reads.
type composeFile struct {
	Services map[string]composeService `yaml:"services"`
}

// composeService holds the fields that decide how a service image is made.
type composeService struct {
	Image string        `yaml:"image,omitempty"`
	Build *composeBuild `yaml:"build,omitempty"`
}

// composeBuild is the long form of a service's build section. The short
// form (a bare context path) is accepted by UnmarshalYAML.
type composeBuild struct {
	Context    string `yaml:"context,omitempty"`
	Dockerfile string `yaml:"dockerfile,omitempty"`
	Target     string `yaml:"target,omitempty"`
}

// UnmarshalYAML accepts both `build: ./dir` and `build: {context: ./dir}`.
func (b *composeBuild) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		b.Context = value.Value
		return nil
	}
	// A local type without the method avoids recursing into UnmarshalYAML.
	type plain composeBuild
	return value.Decode((*plain)(b))
}

// ComposeBase is the resolved base of the primary Compose service.
type ComposeBase struct {
	// Image is set when the service has no build section.
	Image string

	// Context, Dockerfile, and Target are set when the service is built.
	// Context and Dockerfile are absolute.
	Context    string
	Dockerfile string
	Target     string
}

// ResolveComposeBase loads the Compose files (relative to configDir) and
// returns how the given service's image is produced.
func ResolveComposeBase(configDir string, files []string, service string) (*ComposeBase, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("dockerComposeFile must name at least one file")
	}
	if service == "" {
		return nil, fmt.Errorf("service field is required when dockerComposeFile is specified")
	}

	var (
		merged composeService
		found  bool
	)
	for _, f := range files {
		path := f
		if !filepath.IsAbs(path) {
			path = filepath.Join(configDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read compose file: %w", err)
		}

		var cf composeFile
		if err := yaml.Unmarshal(data, &cf); err != nil {
			return nil, fmt.Errorf("failed to parse compose file %s: %w", path, err)
		}

		svc, ok := cf.Services[service]
		if !ok {
			continue
		}
		found = true
		if svc.Image != "" {
			merged.Image = svc.Image
		}
		if svc.Build != nil {
			if merged.Build == nil {
				merged.Build = &composeBuild{}
			}
			if svc.Build.Context != "" {
				merged.Build.Context = svc.Build.Context
			}
			if svc.Build.Dockerfile != "" {
				merged.Build.Dockerfile = svc.Build.Dockerfile
			}
			if svc.Build.Target != "" {
				merged.Build.Target = svc.Build.Target
			}
		}
	}
	if !found {
		return nil, fmt.Errorf("service %q not found in compose files %v", service, files)
	}

	if merged.Build == nil {
		if merged.Image == "" {
			return nil, fmt.Errorf("%w: %q", ErrComposeUnsupported, service)
		}
		return &ComposeBase{Image: merged.Image}, nil
	}

	projectDir := filepath.Dir(files[0])
	if !filepath.IsAbs(projectDir) {
		projectDir = filepath.Join(configDir, projectDir)
	}
	context := merged.Build.Context
	if context == "" {
		context = "."
	}
	if !filepath.IsAbs(context) {
		context = filepath.Join(projectDir, context)
	}
	dockerfile := merged.Build.Dockerfile
	if dockerfile == "" {
		dockerfile = "Dockerfile"
	}
	if !filepath.IsAbs(dockerfile) {
		dockerfile = filepath.Join(context, dockerfile)
	}

	return &ComposeBase{
		Context:    filepath.Clean(context),
		Dockerfile: filepath.Clean(dockerfile),
		Target:     merged.Build.Target,
	}, nil
}
