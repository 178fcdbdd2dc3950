// Package resource resolves logical resource paths against an
// environment-aware directory layout. A resource is first looked up inside a
// subdirectory named after the active environment; when the environment does
// not organize that resource, resolution falls back to the default search
// location, so consumers that never split resources per environment keep
// working unchanged.
package resource

import (
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Scope identifies which search location satisfied a lookup. It is carried
// on every Location for diagnostics.
type Scope int

const (
	// ScopeEnvironment means the resource came from the subdirectory named
	// after the active environment.
	ScopeEnvironment Scope = iota
	// ScopeDefault means the resource came from the unscoped search location.
	ScopeDefault
)

func (s Scope) String() string {
	switch s {
	case ScopeEnvironment:
		return "environment"
	case ScopeDefault:
		return "default"
	default:
		return "unknown"
	}
}

// NotFoundError reports that neither the environment-scoped nor the
// default-scoped location contains the requested resource.
type NotFoundError struct {
	Path        string
	Environment string
}

func (e *NotFoundError) Error() string {
	return "resource " + e.Path + " not found in environment " + e.Environment + " nor in the default scope"
}

// Location is a successfully resolved resource: the concrete path inside the
// search filesystem and the scope that satisfied it.
type Location struct {
	Path  string
	Scope Scope

	fsys afero.Fs
}

// Open opens the resolved resource for reading.
func (l Location) Open() (afero.File, error) {
	f, err := l.fsys.Open(l.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening resource %q", l.Path)
	}
	return f, nil
}

// Resolver probes the resource filesystem for environment-scoped and
// default-scoped resources. Safe for concurrent use: the environment name
// never changes after construction and each call is an independent probe.
type Resolver struct {
	fsys    afero.Fs
	envName string
}

// NewResolver creates a resolver rooted at fsys for the given environment
// name. The environment subdirectory is the lower-cased name.
func NewResolver(fsys afero.Fs, envName string) *Resolver {
	return &Resolver{fsys: fsys, envName: envName}
}

// Resolve maps a logical path (e.g. "/hibernate.cfg.xml") to a concrete
// location. The environment-scoped candidate wins; otherwise the default
// scope is probed; otherwise Resolve fails with *NotFoundError.
func (r *Resolver) Resolve(logical string) (Location, error) {
	relative := strings.TrimPrefix(logical, "/")

	scoped := path.Join(strings.ToLower(r.envName), relative)
	found, err := afero.Exists(r.fsys, scoped)
	if err != nil {
		return Location{}, errors.Wrapf(err, "error probing resource %q", scoped)
	}
	if found {
		log.Debug().Str("resource", logical).Str("path", scoped).Msg("Resolved environment-scoped resource")
		return Location{Path: scoped, Scope: ScopeEnvironment, fsys: r.fsys}, nil
	}

	found, err = afero.Exists(r.fsys, relative)
	if err != nil {
		return Location{}, errors.Wrapf(err, "error probing resource %q", relative)
	}
	if found {
		log.Debug().Str("resource", logical).Str("path", relative).Msg("Resolved default-scoped resource")
		return Location{Path: relative, Scope: ScopeDefault, fsys: r.fsys}, nil
	}

	return Location{}, &NotFoundError{Path: logical, Environment: r.envName}
}
