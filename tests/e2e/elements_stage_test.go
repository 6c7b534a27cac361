package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/moolen/pagecheck/internal/browser"
	"github.com/moolen/pagecheck/internal/elements"
	"github.com/moolen/pagecheck/internal/scenario"
	"github.com/moolen/pagecheck/tests/e2e/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ElementsStage struct {
	t       *testing.T
	require *require.Assertions
	assert  *assert.Assertions

	baseURL      string
	driver       browser.Driver
	artifactsDir string
	cases        []scenario.Case
	report       *scenario.Report
}

func NewElementsStage(t *testing.T) (*ElementsStage, *ElementsStage, *ElementsStage) {
	s := &ElementsStage{
		t:       t,
		require: require.New(t),
		assert:  assert.New(t),
	}
	return s, s, s
}

func (s *ElementsStage) and() *ElementsStage {
	return s
}

func (s *ElementsStage) the_elements_page_is_served() *ElementsStage {
	s.baseURL = helpers.BaseURL(s.t)
	s.t.Logf("Testing against %s", s.baseURL)
	return s
}

func (s *ElementsStage) a_browser_is_running() *ElementsStage {
	s.driver = helpers.StartDriver(s.t, 30*time.Second)
	return s
}

func (s *ElementsStage) screenshots_are_kept() *ElementsStage {
	s.artifactsDir = s.t.TempDir()
	return s
}

func (s *ElementsStage) the_builtin_cases() *ElementsStage {
	s.cases = elements.Cases()
	return s
}

func (s *ElementsStage) the_cases_of_suite(suite string) *ElementsStage {
	for _, c := range elements.Cases() {
		if c.TopSuite() == suite {
			s.cases = append(s.cases, c)
		}
	}
	s.require.NotEmpty(s.cases, "no cases in suite %q", suite)
	return s
}

func (s *ElementsStage) a_case(c scenario.Case) *ElementsStage {
	s.cases = append(s.cases, c)
	return s
}

func (s *ElementsStage) the_cases_run_with_parallelism(n int) *ElementsStage {
	runner := scenario.NewRunner(s.driver, scenario.RunnerConfig{
		BaseURL:      s.baseURL,
		Parallelism:  n,
		ArtifactsDir: s.artifactsDir,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	report, err := runner.Run(ctx, s.cases)
	s.require.NoError(err)
	s.report = report
	return s
}

func (s *ElementsStage) every_runnable_case_passes() *ElementsStage {
	for _, r := range s.report.Results {
		if r.Case.Todo {
			s.assert.Equal(scenario.StatusTodo, r.Status, r.Case.FullName())
			continue
		}
		if !s.assert.Equal(scenario.StatusPassed, r.Status, r.Case.FullName()) {
			s.t.Logf("%s: %v", r.Case.FullName(), r.Err)
		}
	}
	return s
}

func (s *ElementsStage) the_summary_counts(passed, todo int) *ElementsStage {
	sum := s.report.Summary()
	s.assert.Equal(passed, sum.Passed, "passed")
	s.assert.Equal(todo, sum.Todo, "todo")
	s.assert.Zero(sum.Failed, "failed")
	s.assert.Zero(sum.Errored, "errored")
	return s
}

func (s *ElementsStage) the_case_fails_with(target interface{}) *ElementsStage {
	s.require.Len(s.report.Results, 1)
	r := s.report.Results[0]
	s.require.Equal(scenario.StatusFailed, r.Status, "unexpected status, err: %v", r.Err)
	s.assert.ErrorAs(r.Err, target)
	return s
}

func (s *ElementsStage) the_case_errors_during_setup() *ElementsStage {
	s.require.Len(s.report.Results, 1)
	r := s.report.Results[0]
	s.require.Equal(scenario.StatusErrored, r.Status)
	var setup *scenario.SetupError
	s.assert.ErrorAs(r.Err, &setup)
	return s
}

func (s *ElementsStage) a_screenshot_was_written() *ElementsStage {
	s.require.Len(s.report.Results, 1)
	artifact := s.report.Results[0].Artifact
	s.require.NotEmpty(artifact)
	s.assert.FileExists(artifact)
	return s
}
