package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/entorn-dev/entorn/pkg/descriptor"
	"github.com/entorn-dev/entorn/pkg/environment"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Version information set during build
var (
	version = "dev"
)

// settingsFlag collects repeatable -set key=value flags into the
// process-level settings map.
type settingsFlag map[string]string

func (s settingsFlag) String() string {
	pairs := make([]string, 0, len(s))
	for k, v := range s {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func (s settingsFlag) Set(value string) error {
	key, val, found := strings.Cut(value, "=")
	if !found || key == "" {
		return errors.Errorf("setting %q must have the form key=value", value)
	}
	s[key] = val
	return nil
}

type cliOptions struct {
	descriptorFile string
	key            string
	defaultValue   string
	hasDefault     bool
	resourcePath   string
	settings       map[string]string
}

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	debugMode := flag.Bool("debug", false, "Enable debug mode")
	descriptorFile := flag.String("descriptor", "", "Path to deployment descriptor (YAML or TOML)")
	key := flag.String("key", "", "Property key to resolve")
	defaultValue := flag.String("default", "", "Default value when the key is undefined (only with -key)")
	resourcePath := flag.String("resource", "", "Logical resource path to resolve")
	settings := settingsFlag{}
	flag.Var(settings, "set", "Process-level setting override, key=value (repeatable)")

	flag.Parse()

	if *debugMode {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if *showVersion {
		fmt.Printf("%s %s\n", "entorn", version)
		os.Exit(0)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    false,
		TimeFormat: "2006-01-02 15:04:05",
	})

	hasDefault := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "default" {
			hasDefault = true
		}
	})

	err := run(cliOptions{
		descriptorFile: *descriptorFile,
		key:            *key,
		defaultValue:   *defaultValue,
		hasDefault:     hasDefault,
		resourcePath:   *resourcePath,
		settings:       settings,
	}, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("Fatal error")
	}
}

func run(opts cliOptions, out io.Writer) error {
	envOpts := environment.Options{Settings: opts.settings}

	if opts.descriptorFile != "" {
		d, err := descriptor.Load(opts.descriptorFile)
		if err != nil {
			return errors.Wrap(err, "failed to load deployment descriptor")
		}
		envOpts.Descriptor = d
	}

	env, err := environment.New(envOpts)
	if err != nil {
		return errors.Wrap(err, "failed to initialize environment")
	}

	switch {
	case opts.key != "":
		return printKey(env, opts, out)
	case opts.resourcePath != "":
		return printResource(env, opts.resourcePath, out)
	default:
		printSummary(env, out)
		return nil
	}
}

func printKey(env *environment.Environment, opts cliOptions, out io.Writer) error {
	value, err := env.ResolveBinding(environment.Binding{
		Key:        opts.key,
		Default:    opts.defaultValue,
		HasDefault: opts.hasDefault,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, value)
	return err
}

func printResource(env *environment.Environment, logical string, out io.Writer) error {
	loc, err := env.Resource(logical)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s (%s scope)\n", loc.Path, loc.Scope)
	return err
}

func printSummary(env *environment.Environment, out io.Writer) {
	_, _ = fmt.Fprintf(out, "environment: %s\n", env.Name())

	props := env.Properties()
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(out, "%s=%s\n", k, props[k])
	}
}
