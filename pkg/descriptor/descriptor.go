// Package descriptor reads the deployment descriptor a hosting container may
// ship alongside the application. The descriptor is the lowest-precedence
// source of the environment name and points the resolver at the directories
// holding properties files and resources. YAML and TOML formats are
// supported, selected by file extension.
package descriptor

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Descriptor holds the container-supplied configuration entries consumed by
// the environment core. All fields are optional.
type Descriptor struct {
	Environment   string            `yaml:"environment" toml:"environment"`
	PropertiesDir string            `yaml:"properties_dir" toml:"properties_dir"`
	ResourcesDir  string            `yaml:"resources_dir" toml:"resources_dir"`
	Settings      map[string]string `yaml:"settings" toml:"settings"`
}

// Load reads and parses a descriptor file. The format is chosen by
// extension: .yaml/.yml or .toml.
func Load(file string) (*Descriptor, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading descriptor %q", file)
	}

	var d Descriptor
	switch ext := strings.ToLower(filepath.Ext(file)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &d)
	case ".toml":
		err = toml.Unmarshal(data, &d)
	default:
		return nil, errors.Errorf("unsupported descriptor format %q", ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing descriptor %q", file)
	}

	if err = d.Validate(); err != nil {
		return nil, errors.Wrapf(err, "descriptor %q is invalid", file)
	}
	return &d, nil
}

// Validate checks that the descriptor entries can actually name files and
// directories on the search path.
func (d *Descriptor) Validate() error {
	if strings.ContainsAny(d.Environment, `/\`) {
		return errors.Errorf("environment name %q must not contain path separators", d.Environment)
	}
	if d.Environment != strings.TrimSpace(d.Environment) {
		return errors.Errorf("environment name %q must not have leading or trailing whitespace", d.Environment)
	}
	return nil
}
