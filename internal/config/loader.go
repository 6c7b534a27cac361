package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envKeys maps the environment variables honoured by the runner to config keys.
var envKeys = map[string]string{
	"PAGECHECK_BASE_URL": "base_url",
	"PAGECHECK_HEADLESS": "headless",
	"PAGECHECK_DRIVER":   "driver",
	"PAGECHECK_BROWSER":  "browser",
}

// Load builds a Config from, in increasing priority: Default(), the YAML file
// at path (skipped when path is empty), PAGECHECK_* environment variables and
// overrides (dotted keys, typically the CLI flags the user set explicitly).
// The result is validated.
func Load(path string, overrides map[string]interface{}) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config from %q: %w", path, err)
		}
	}

	for env, key := range envKeys {
		if v, ok := os.LookupEnv(env); ok {
			if err := k.Set(key, v); err != nil {
				return nil, fmt.Errorf("failed to apply %s: %w", env, err)
			}
		}
	}

	for key, v := range overrides {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("failed to apply override %q: %w", key, err)
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("config validation failed for %q: %w", path, err)
		}
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}
