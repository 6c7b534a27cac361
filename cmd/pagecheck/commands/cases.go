package commands

import (
	"fmt"

	"github.com/moolen/pagecheck/internal/config"
	"github.com/moolen/pagecheck/internal/elements"
	"github.com/moolen/pagecheck/internal/scenario"
	"github.com/spf13/cobra"
)

// caseFlags select which cases a command works on.
type caseFlags struct {
	configPath string
	scenarios  []string
	noBuiltin  bool
	suite      string
	name       string
}

func (f *caseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Path to the run configuration YAML")
	cmd.Flags().StringSliceVar(&f.scenarios, "scenario", nil, "Additional YAML case file (repeatable)")
	cmd.Flags().BoolVar(&f.noBuiltin, "no-builtin", false, "Skip the built-in Elements suites")
	cmd.Flags().StringVar(&f.suite, "suite", "", "Only cases whose suite path matches this regular expression")
	cmd.Flags().StringVar(&f.name, "name", "", "Only cases whose name matches this regular expression")
}

// overrides returns the config keys set explicitly by these flags.
func (f *caseFlags) overrides(cmd *cobra.Command, into map[string]interface{}) {
	if cmd.Flags().Changed("no-builtin") {
		into["builtin"] = !f.noBuiltin
	}
}

func (f *caseFlags) filter() (scenario.Filter, error) {
	return scenario.ParseFilter(f.suite, f.name)
}

// collectCases gathers the built-in cases (when enabled) followed by the
// cases of every scenario file from the config and the flags.
func collectCases(cfg *config.Config, extra []string) ([]scenario.Case, error) {
	var cases []scenario.Case
	if cfg.Builtin {
		cases = append(cases, elements.Cases()...)
	}

	files := append(append([]string{}, cfg.Scenarios...), extra...)
	loaded, err := scenario.LoadFiles(files...)
	if err != nil {
		return nil, err
	}
	cases = append(cases, loaded...)

	if len(cases) == 0 {
		return nil, fmt.Errorf("no cases to run: built-in suites disabled and no scenario files given")
	}
	return cases, nil
}
