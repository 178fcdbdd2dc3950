package properties

import "github.com/rs/zerolog/log"

// ApplyOverrides layers process-level settings on top of the base mapping.
// Overrides narrow, never extend: only keys already defined in base are
// replaced, so operators can tune existing values without the settings
// channel becoming a second place where configuration is defined.
//
// Neither input map is mutated; the caller receives a fresh mapping that is
// the single source of truth from then on.
func ApplyOverrides(base, settings map[string]string) map[string]string {
	merged := make(map[string]string, len(base))
	for k, v := range base {
		merged[k] = v
	}

	for k, v := range settings {
		if _, defined := merged[k]; !defined {
			continue
		}
		log.Debug().Str("key", k).Msg("Property overridden by process-level setting")
		merged[k] = v
	}

	return merged
}
