// Package properties loads the layered key/value configuration for a named
// environment. Two Java-style .properties files make up the file layer: an
// environment-specific file (e.g. production.properties) and a shared
// fallback file (environment.properties). Either may be absent; a missing
// file is an empty layer, a malformed file is a fatal error.
package properties

import (
	"os"
	"strings"

	"github.com/magiconair/properties"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// CommonFile is the name-independent fallback layer shared by every
// environment.
const CommonFile = "environment.properties"

// FileName returns the properties file name for an environment name,
// e.g. "PRODUCTION" -> "production.properties".
func FileName(name string) string {
	return strings.ToLower(name) + ".properties"
}

// Source is the ordered pair of property layers loaded for one environment.
// The environment layer takes precedence over the common layer when merged.
type Source struct {
	Environment map[string]string
	Common      map[string]string
}

// ParseError reports a malformed properties file. It aborts environment
// construction: a partially parsed file layer cannot be trusted.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return "malformed properties file " + e.File + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads both property layers for the given environment name from fsys.
// A file that does not exist yields an empty layer; any other read failure
// or a parse failure is returned as an error.
func Load(fsys afero.Fs, name string) (Source, error) {
	environment, err := loadFile(fsys, FileName(name))
	if err != nil {
		return Source{}, err
	}

	common, err := loadFile(fsys, CommonFile)
	if err != nil {
		return Source{}, err
	}

	return Source{Environment: environment, Common: common}, nil
}

// Merged produces the base mapping: for each key the environment layer wins,
// otherwise the common layer supplies the value. The result is a fresh map.
func (s Source) Merged() map[string]string {
	merged := make(map[string]string, len(s.Common)+len(s.Environment))
	for k, v := range s.Common {
		merged[k] = v
	}
	for k, v := range s.Environment {
		merged[k] = v
	}
	return merged
}

func loadFile(fsys afero.Fs, file string) (map[string]string, error) {
	data, err := afero.ReadFile(fsys, file)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("file", file).Msg("Properties file not present, using empty layer")
			return map[string]string{}, nil
		}
		return nil, errors.Wrapf(err, "error reading properties file %q", file)
	}

	// Values stay literal: ${ref} expansion would make lookups depend on
	// load order across layers.
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadBytes(data)
	if err != nil {
		return nil, &ParseError{File: file, Err: err}
	}

	log.Debug().Str("file", file).Int("keys", p.Len()).Msg("Loaded properties file")
	return p.Map(), nil
}
