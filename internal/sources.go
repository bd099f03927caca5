// Package internal provides internal implementation details for confx.
//
// Overview:
//   - Responsibility: Implement base configuration sources (Env, Map)
//   - Key Types: EnvSource, MapSource
//   - Concurrency Model: All sources are safe for concurrent use
//   - Error Semantics: Sources return errors for loading failures
//   - Performance Notes: Loading is a single pass over the backing data
package internal

import (
	"context"
	"os"
	"strings"
)

// EnvOptions configures environment variable source behavior.
type EnvOptions struct {
	Prefix    string // Prefix filter for environment variables (e.g., "APP_")
	Lowercase bool   // Convert keys to lowercase
	Uppercase bool   // Convert keys to uppercase
}

// EnvSource loads configuration from environment variables.
type EnvSource struct {
	prefix    string
	lowercase bool
	uppercase bool
}

// NewEnvSource creates a new environment variable source.
func NewEnvSource(opts EnvOptions) Source {
	return &EnvSource{
		prefix:    opts.Prefix,
		lowercase: opts.Lowercase,
		uppercase: opts.Uppercase,
	}
}

// Load reads configuration from environment variables.
func (s *EnvSource) Load(ctx context.Context) (map[string]string, error) {
	config := make(map[string]string)

	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := parts[0]
		value := parts[1]

		// Apply prefix filter
		if s.prefix != "" && !strings.HasPrefix(key, s.prefix) {
			continue
		}

		// Remove prefix if specified
		if s.prefix != "" {
			key = strings.TrimPrefix(key, s.prefix)
		}

		// Apply case conversion
		if s.lowercase {
			key = strings.ToLower(key)
		} else if s.uppercase {
			key = strings.ToUpper(key)
		}

		config[key] = value
	}

	return config, nil
}

// MapSource serves a fixed key-value map. Useful for tests and for
// embedding defaults in development tooling.
type MapSource struct {
	values map[string]string
}

// NewMapSource creates a new map-backed source. The map is copied.
func NewMapSource(values map[string]string) Source {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &MapSource{values: copied}
}

// Load returns a copy of the backing map.
func (s *MapSource) Load(ctx context.Context) (map[string]string, error) {
	config := make(map[string]string, len(s.values))
	for k, v := range s.values {
		config[k] = v
	}
	return config, nil
}
