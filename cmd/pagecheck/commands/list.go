package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/moolen/pagecheck/internal/config"
	"github.com/moolen/pagecheck/internal/scenario"
	"github.com/spf13/cobra"
)

var (
	listCases caseFlags
	listSteps bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the test cases without running them",
	RunE: func(cmd *cobra.Command, _ []string) error {
		overrides := map[string]interface{}{}
		listCases.overrides(cmd, overrides)

		cfg, err := config.Load(listCases.configPath, overrides)
		if err != nil {
			return err
		}
		cases, err := collectCases(cfg, listCases.scenarios)
		if err != nil {
			return err
		}
		filter, err := listCases.filter()
		if err != nil {
			return err
		}
		printCases(cmd.OutOrStdout(), filter.Apply(cases), listSteps)
		return nil
	},
}

func init() {
	listCases.register(listCmd)
	listCmd.Flags().BoolVar(&listSteps, "steps", false, "Print the steps of every case")
}

// printCases writes cases as an indented suite tree. Consecutive cases
// sharing a suite prefix are grouped under it.
func printCases(w io.Writer, cases []scenario.Case, steps bool) {
	var prev []string
	for _, c := range cases {
		common := 0
		for common < len(prev) && common < len(c.Suite) && prev[common] == c.Suite[common] {
			common++
		}
		for i := common; i < len(c.Suite); i++ {
			fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", i), c.Suite[i])
		}
		prev = c.Suite

		indent := strings.Repeat("  ", len(c.Suite))
		name := c.Name
		if c.Todo {
			name += " (todo)"
		}
		fmt.Fprintf(w, "%s- %s\n", indent, name)
		if !steps {
			continue
		}
		for i, s := range c.Steps {
			fmt.Fprintf(w, "%s    %d. %s\n", indent, i+1, s)
		}
	}
	fmt.Fprintf(w, "\n%d cases\n", len(cases))
}
