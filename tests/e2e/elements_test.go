package e2e

import (
	"testing"
	"time"

	"github.com/moolen/pagecheck/internal/elements"
	"github.com/moolen/pagecheck/internal/scenario"
)

func TestElementsBuiltinSuites(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping e2e test in short mode")
	}

	given, when, then := NewElementsStage(t)

	given.the_elements_page_is_served().and().
		a_browser_is_running().and().
		the_builtin_cases()

	when.the_cases_run_with_parallelism(4)

	then.every_runnable_case_passes().and().
		the_summary_counts(21, 2)
}

func TestElementsCheckBoxSequential(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping e2e test in short mode")
	}

	given, when, then := NewElementsStage(t)

	given.the_elements_page_is_served().and().
		a_browser_is_running().and().
		the_cases_of_suite(elements.CheckBoxSuite)

	when.the_cases_run_with_parallelism(1)

	then.every_runnable_case_passes()
}

func TestElementsWrongTextFails(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping e2e test in short mode")
	}

	given, when, then := NewElementsStage(t)

	given.the_elements_page_is_served().and().
		a_browser_is_running().and().
		screenshots_are_kept().and().
		a_case(scenario.Case{
			Suite: []string{"e2e"},
			Name:  "wrong header text",
			Steps: []scenario.Step{
				scenario.ExpectTextEquals(".main-header", "Not Elements"),
			},
		})

	when.the_cases_run_with_parallelism(1)

	var assertion *scenario.AssertionError
	then.the_case_fails_with(&assertion).and().
		a_screenshot_was_written()
}

func TestElementsMissingElementTimesOut(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping e2e test in short mode")
	}

	given, when, then := NewElementsStage(t)

	given.the_elements_page_is_served().and().
		a_browser_is_running().and().
		a_case(scenario.Case{
			Suite: []string{"e2e"},
			Name:  "element never appears",
			Steps: []scenario.Step{
				scenario.ExpectPresent("#does-not-exist").WithTimeout(500 * time.Millisecond),
			},
		})

	when.the_cases_run_with_parallelism(1)

	var timeout *scenario.TimeoutError
	then.the_case_fails_with(&timeout)
}

func TestElementsUnreachableEntryErrors(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping e2e test in short mode")
	}

	given, when, then := NewElementsStage(t)

	given.a_browser_is_running().and().
		a_case(scenario.Case{
			Suite:    []string{"e2e"},
			Name:     "unreachable",
			EntryURL: "http://127.0.0.1:1/elements",
			Steps:    []scenario.Step{scenario.ExpectPresent("body")},
		})

	when.the_cases_run_with_parallelism(1)

	then.the_case_errors_during_setup()
}
