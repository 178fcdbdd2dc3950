package environment

import (
	"strings"

	"github.com/entorn-dev/entorn/pkg/descriptor"
	"github.com/rs/zerolog/log"
)

const (
	// EnvVar is the operating-system variable consulted first when resolving
	// the active environment name.
	EnvVar = "ENTORN_ENV"

	// SettingsKey is the process-level setting consulted second.
	SettingsKey = "entorn.environment"

	// DefaultName is the compile-time fallback when no source names an
	// environment.
	DefaultName = "DEVELOPMENT"
)

// Well-known environment names backing the convenience predicates.
const (
	Development = "DEVELOPMENT"
	Production  = "PRODUCTION"
	Test        = "TEST"
)

// NameSource is one candidate origin for the active environment name.
// Sources are consulted in precedence order; an empty value counts as
// absent, not as a valid name.
type NameSource interface {
	// Lookup returns the candidate name and whether the source defines one.
	Lookup() (string, bool)

	// Name returns a human-readable name for this source (for logging)
	Name() string
}

// ResolveName walks the sources in precedence order and returns the first
// non-empty candidate, normalized to upper case. When every source is unset,
// DefaultName is returned.
func ResolveName(sources ...NameSource) string {
	for _, source := range sources {
		value, ok := source.Lookup()
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		name := strings.ToUpper(strings.TrimSpace(value))
		log.Debug().Str("source", source.Name()).Str("environment", name).Msg("Resolved environment name")
		return name
	}

	log.Debug().Str("environment", DefaultName).Msg("No environment name source set, using default")
	return DefaultName
}

// envVarSource reads the ENTORN_ENV operating-system variable through an
// injectable lookup function.
type envVarSource struct {
	lookup func(string) (string, bool)
}

func (s envVarSource) Lookup() (string, bool) {
	return s.lookup(EnvVar)
}

func (s envVarSource) Name() string {
	return "OS variable " + EnvVar
}

// settingsSource reads the entorn.environment key from the process-level
// settings map.
type settingsSource struct {
	settings map[string]string
}

func (s settingsSource) Lookup() (string, bool) {
	value, ok := s.settings[SettingsKey]
	return value, ok
}

func (s settingsSource) Name() string {
	return "process setting " + SettingsKey
}

// descriptorSource reads the environment entry of the container deployment
// descriptor. Lowest precedence of the three sources.
type descriptorSource struct {
	d *descriptor.Descriptor
}

func (s descriptorSource) Lookup() (string, bool) {
	if s.d == nil {
		return "", false
	}
	return s.d.Environment, s.d.Environment != ""
}

func (s descriptorSource) Name() string {
	return "deployment descriptor"
}
