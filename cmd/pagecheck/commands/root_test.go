package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevelFlags(t *testing.T) {
	tests := []struct {
		name         string
		flags        []string
		env          map[string]string
		wantDefault  string
		wantPackages map[string]string
		wantErr      bool
	}{
		{
			name:         "single default level",
			flags:        []string{"debug"},
			wantDefault:  "debug",
			wantPackages: map[string]string{},
		},
		{
			name:         "per-package levels",
			flags:        []string{"default=warn", "scenario.runner=debug"},
			wantDefault:  "warn",
			wantPackages: map[string]string{"scenario.runner": "debug"},
		},
		{
			name:         "env var applies",
			env:          map[string]string{"LOG_LEVEL_BROWSER_ROD": "debug"},
			wantDefault:  "info",
			wantPackages: map[string]string{"browser.rod": "debug"},
		},
		{
			name:         "flag wins over env",
			flags:        []string{"fixture=error"},
			env:          map[string]string{"LOG_LEVEL_FIXTURE": "debug"},
			wantDefault:  "info",
			wantPackages: map[string]string{"fixture": "error"},
		},
		{
			name:    "invalid default",
			flags:   []string{"verbose"},
			wantErr: true,
		},
		{
			name:    "invalid package level",
			flags:   []string{"fixture=loud"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			def, pkgs, err := parseLogLevelFlags(tt.flags)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDefault, def)
			for pkg, level := range tt.wantPackages {
				assert.Equal(t, level, pkgs[pkg], pkg)
			}
		})
	}
}

func TestConvertEnvKeyToPackageName(t *testing.T) {
	assert.Equal(t, "scenario.runner", convertEnvKeyToPackageName("LOG_LEVEL_SCENARIO_RUNNER"))
	assert.Equal(t, "fixture", convertEnvKeyToPackageName("LOG_LEVEL_FIXTURE"))
}

func TestValidateLogLevel(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "warn", "error", "fatal"} {
		assert.NoError(t, validateLogLevel(level), level)
	}
	assert.Error(t, validateLogLevel("trace"))
}
