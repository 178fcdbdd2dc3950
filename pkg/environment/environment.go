// Package environment resolves the active deployment context of a process
// and exposes the configuration bound to it: a layered set of key/value
// properties and environment-scoped resource lookup.
//
// The active name comes from three sources with fixed precedence (the
// ENTORN_ENV OS variable, the entorn.environment process setting, the
// deployment descriptor entry), falling back to DEVELOPMENT. Properties are
// loaded once from <name>.properties layered over environment.properties,
// then narrowed by process-level setting overrides. The resulting state is
// immutable and safe for concurrent readers.
package environment

import (
	"os"
	"strings"
	"sync"

	"github.com/entorn-dev/entorn/internal/snapshot"
	"github.com/entorn-dev/entorn/pkg/descriptor"
	"github.com/entorn-dev/entorn/pkg/properties"
	"github.com/entorn-dev/entorn/pkg/resource"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Options configures the construction of an Environment. Every field is
// optional; the zero value resolves against the real OS environment and the
// current working directory. Tests inject their own sources and filesystems
// instead of touching process state.
type Options struct {
	// LookupEnv reads operating-system variables. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)

	// Settings is the process-level settings channel: it supplies the
	// second name source and the override layer applied on top of the file
	// properties. The map is snapshotted at construction.
	Settings map[string]string

	// Descriptor is the optional container deployment descriptor. Its
	// environment entry is the lowest-precedence name source, its settings
	// feed the override layer below Settings, and its directory entries
	// locate the default filesystems.
	Descriptor *descriptor.Descriptor

	// PropertiesFs overrides the filesystem searched for .properties files.
	// Defaults to the descriptor's properties_dir, or the working directory.
	PropertiesFs afero.Fs

	// ResourcesFs overrides the filesystem searched for resources.
	// Defaults to the descriptor's resources_dir, or the working directory.
	ResourcesFs afero.Fs
}

// Environment is the resolved deployment context. Once constructed it never
// changes: all getters are read-only and safe for concurrent use.
type Environment struct {
	name       string
	properties map[string]string
	resources  *resource.Resolver
}

// New resolves the environment name, loads and merges the property layers,
// applies the setting overrides and wires resource resolution. A malformed
// properties file aborts construction; the returned error wraps
// *properties.ParseError.
func New(opts Options) (*Environment, error) {
	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	name := ResolveName(
		envVarSource{lookup: lookup},
		settingsSource{settings: opts.Settings},
		descriptorSource{d: opts.Descriptor},
	)
	// The name names a properties file and a resource subdirectory, so it
	// must be a single path element no matter which source supplied it.
	if strings.ContainsAny(name, `/\`) {
		return nil, errors.Errorf("environment name %q must not contain path separators", name)
	}

	source, err := properties.Load(propertiesFs(opts), name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to initialize environment %s", name)
	}

	merged := properties.ApplyOverrides(source.Merged(), overrideSettings(opts))
	log.Info().Str("environment", name).Int("properties", len(merged)).Msg("Environment initialized")

	return &Environment{
		name:       name,
		properties: merged,
		resources:  resource.NewResolver(resourcesFs(opts), name),
	}, nil
}

var defaultEnvironment = sync.OnceValues(func() (*Environment, error) {
	return New(Options{})
})

// Default returns the process-wide Environment, constructed from real OS
// state on first use. Exactly one load sequence runs even under concurrent
// first access; every caller observes the same result, including a load
// failure, which is never retried.
func Default() (*Environment, error) {
	return defaultEnvironment()
}

// Name returns the resolved, upper-cased environment name.
func (e *Environment) Name() string {
	return e.name
}

// Is compares the given name against the active one, case-insensitively.
func (e *Environment) Is(name string) bool {
	return strings.EqualFold(e.name, name)
}

// IsDevelopment reports whether the active environment is DEVELOPMENT.
func (e *Environment) IsDevelopment() bool { return e.Is(Development) }

// IsProduction reports whether the active environment is PRODUCTION.
func (e *Environment) IsProduction() bool { return e.Is(Production) }

// IsTest reports whether the active environment is TEST.
func (e *Environment) IsTest() bool { return e.Is(Test) }

// Get returns the resolved value for key. When the key is undefined after
// all layers it fails with *MissingKeyError; there is no silent defaulting.
func (e *Environment) Get(key string) (string, error) {
	value, ok := e.properties[key]
	if !ok {
		return "", &MissingKeyError{Key: key, Environment: e.name}
	}
	return value, nil
}

// GetOrDefault returns the resolved value for key, or def when the key is
// undefined. It never fails.
func (e *Environment) GetOrDefault(key, def string) string {
	if value, ok := e.properties[key]; ok {
		return value
	}
	return def
}

// Resource resolves a logical resource path, preferring the
// environment-scoped directory and falling back to the default scope.
// Propagates *resource.NotFoundError when neither scope has it.
func (e *Environment) Resource(logical string) (resource.Location, error) {
	return e.resources.Resolve(logical)
}

// Properties returns a detached copy of the final merged mapping. Mutating
// the returned map has no effect on the environment.
func (e *Environment) Properties() map[string]string {
	return *snapshot.MustCopy(&e.properties)
}

// overrideSettings builds the override layer input: descriptor-forwarded
// settings below, caller-supplied process settings on top. The result is a
// fresh map, so later caller mutations cannot leak in.
func overrideSettings(opts Options) map[string]string {
	merged := make(map[string]string)
	if opts.Descriptor != nil {
		for k, v := range opts.Descriptor.Settings {
			merged[k] = v
		}
	}
	for k, v := range opts.Settings {
		merged[k] = v
	}
	return merged
}

func propertiesFs(opts Options) afero.Fs {
	if opts.PropertiesFs != nil {
		return opts.PropertiesFs
	}
	return osDirFs(descriptorDir(opts.Descriptor, func(d *descriptor.Descriptor) string { return d.PropertiesDir }))
}

func resourcesFs(opts Options) afero.Fs {
	if opts.ResourcesFs != nil {
		return opts.ResourcesFs
	}
	return osDirFs(descriptorDir(opts.Descriptor, func(d *descriptor.Descriptor) string { return d.ResourcesDir }))
}

func descriptorDir(d *descriptor.Descriptor, field func(*descriptor.Descriptor) string) string {
	if d == nil {
		return "."
	}
	if dir := field(d); dir != "" {
		return dir
	}
	return "."
}

func osDirFs(dir string) afero.Fs {
	return afero.NewBasePathFs(afero.NewOsFs(), dir)
}
