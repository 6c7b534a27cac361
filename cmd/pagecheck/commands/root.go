package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/moolen/pagecheck/internal/logging"
	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var (
	logLevelFlags []string // Supports multiple --log-level flags
)

var rootCmd = &cobra.Command{
	Use:   "pagecheck",
	Short: "pagecheck - browser-driven checks for the demo Elements page",
	Long: `pagecheck drives a real browser through declarative test cases
(navigate, click, type, assert) and reports pass/fail per case.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLog(logLevelFlags)
	},
}

// Execute runs the root command and prints the returned error.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errCasesFailed) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	// Supports per-package log levels: --log-level debug --log-level scenario.runner=debug
	rootCmd.PersistentFlags().StringSliceVar(&logLevelFlags, "log-level",
		[]string{"info"},
		"Log level for packages. Use 'default=level' for default, or 'package.name=level' for per-package.\n"+
			"Examples: --log-level debug (all), --log-level browser.rod=debug --log-level fixture=warn")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(fixtureCmd)
}

// setupLog initializes logging from the --log-level flags and LOG_LEVEL_* env.
func setupLog(flags []string) error {
	defaultLevel, packageLevels, err := parseLogLevelFlags(flags)
	if err != nil {
		return err
	}
	return logging.Initialize(defaultLevel, packageLevels)
}

// parseLogLevelFlags merges LOG_LEVEL_* environment variables with the CLI
// flags, flags winning.
//
// CLI format: ["debug"], ["default=info", "scenario.runner=debug"]
// Env vars: LOG_LEVEL_SCENARIO_RUNNER=debug (package uppercased, dots to underscores)
//
// Returns: (defaultLevel, packageLevels, error)
func parseLogLevelFlags(flags []string) (string, map[string]string, error) {
	result := make(map[string]string)

	for _, envPair := range os.Environ() {
		if !strings.HasPrefix(envPair, "LOG_LEVEL_") {
			continue
		}
		key, level, ok := strings.Cut(envPair, "=")
		if !ok {
			continue
		}
		result[convertEnvKeyToPackageName(key)] = level
	}

	for _, flag := range flags {
		pkg, level, ok := strings.Cut(flag, "=")
		if !ok {
			result["default"] = flag
			continue
		}
		result[pkg] = level
	}

	defaultLevel := "info"
	if level, exists := result["default"]; exists {
		defaultLevel = level
		delete(result, "default")
	}

	if err := validateLogLevel(defaultLevel); err != nil {
		return "", nil, err
	}
	for pkg, level := range result {
		if err := validateLogLevel(level); err != nil {
			return "", nil, fmt.Errorf("invalid log level for package %q: %v", pkg, err)
		}
	}

	return defaultLevel, result, nil
}

// convertEnvKeyToPackageName converts LOG_LEVEL_SCENARIO_RUNNER -> scenario.runner
func convertEnvKeyToPackageName(envKey string) string {
	name := strings.TrimPrefix(envKey, "LOG_LEVEL_")
	return strings.ToLower(strings.ReplaceAll(name, "_", "."))
}

func validateLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error", "fatal":
		return nil
	}
	return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error, fatal)", level)
}
