// Package scenario runs declarative browser test cases.
//
// A Case is an entry URL plus an ordered list of Steps. Each step is either
// an interaction (click, type) or an assertion on the page (URL, presence,
// absence, text, attribute). The Runner executes cases independently, each
// in a fresh browser session, and reports a Result per case.
package scenario

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Action names what a Step does.
type Action string

const (
	ActionClick                   Action = "click"
	ActionType                    Action = "type"
	ActionExpectURL               Action = "expect-url"
	ActionExpectPresent           Action = "expect-present"
	ActionExpectAbsent            Action = "expect-absent"
	ActionExpectTextEquals        Action = "expect-text-equals"
	ActionExpectTextContains      Action = "expect-text-contains"
	ActionExpectAttributeContains Action = "expect-attribute-contains"
)

// Actions lists every supported action.
var Actions = []Action{
	ActionClick,
	ActionType,
	ActionExpectURL,
	ActionExpectPresent,
	ActionExpectAbsent,
	ActionExpectTextEquals,
	ActionExpectTextContains,
	ActionExpectAttributeContains,
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// IsAssertion reports whether a checks page state rather than changing it.
func (a Action) IsAssertion() bool {
	return strings.HasPrefix(string(a), "expect-")
}

// Step is one interaction or assertion.
type Step struct {
	Action   Action `yaml:"action"`
	Selector string `yaml:"selector,omitempty"`
	// Value is the typed text, the expected text or attribute fragment, or
	// the URL pattern.
	Value     string `yaml:"value,omitempty"`
	Attribute string `yaml:"attribute,omitempty"`
	// Timeout overrides the runner default for this step.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

func Click(selector string) Step {
	return Step{Action: ActionClick, Selector: selector}
}

func Type(selector, text string) Step {
	return Step{Action: ActionType, Selector: selector, Value: text}
}

// ExpectURL checks the current URL against a regular expression.
func ExpectURL(pattern string) Step {
	return Step{Action: ActionExpectURL, Value: pattern}
}

func ExpectPresent(selector string) Step {
	return Step{Action: ActionExpectPresent, Selector: selector}
}

// ExpectAbsent checks that selector matches nothing, waiting at most the
// short absence timeout.
func ExpectAbsent(selector string) Step {
	return Step{Action: ActionExpectAbsent, Selector: selector}
}

func ExpectTextEquals(selector, text string) Step {
	return Step{Action: ActionExpectTextEquals, Selector: selector, Value: text}
}

func ExpectTextContains(selector, text string) Step {
	return Step{Action: ActionExpectTextContains, Selector: selector, Value: text}
}

func ExpectAttributeContains(selector, attribute, fragment string) Step {
	return Step{Action: ActionExpectAttributeContains, Selector: selector, Attribute: attribute, Value: fragment}
}

// WithTimeout returns a copy of s with its own timeout.
func (s Step) WithTimeout(d time.Duration) Step {
	s.Timeout = d
	return s
}

func (s Step) String() string {
	switch s.Action {
	case ActionExpectURL:
		return fmt.Sprintf("%s %q", s.Action, s.Value)
	case ActionType, ActionExpectTextEquals, ActionExpectTextContains:
		return fmt.Sprintf("%s %q %q", s.Action, s.Selector, s.Value)
	case ActionExpectAttributeContains:
		return fmt.Sprintf("%s %q [%s] %q", s.Action, s.Selector, s.Attribute, s.Value)
	default:
		return fmt.Sprintf("%s %q", s.Action, s.Selector)
	}
}

// Validate checks the fields the action requires.
func (s Step) Validate() error {
	if !s.Action.Valid() {
		return fmt.Errorf("unknown action %q", s.Action)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("%s: negative timeout", s.Action)
	}
	if s.Action == ActionExpectURL {
		if s.Value == "" {
			return fmt.Errorf("%s: value (URL pattern) is required", s.Action)
		}
		if _, err := regexp.Compile(s.Value); err != nil {
			return fmt.Errorf("%s: invalid URL pattern: %w", s.Action, err)
		}
		return nil
	}
	if s.Selector == "" {
		return fmt.Errorf("%s: selector is required", s.Action)
	}
	if s.Action == ActionExpectAttributeContains && s.Attribute == "" {
		return fmt.Errorf("%s: attribute is required", s.Action)
	}
	return nil
}

// Case is one independent scenario.
type Case struct {
	// Suite is the path of enclosing suite names, outermost first.
	Suite []string `yaml:"-"`
	Name  string   `yaml:"name"`
	// EntryURL overrides the runner's base URL.
	EntryURL string `yaml:"entry_url,omitempty"`
	Steps    []Step `yaml:"steps,omitempty"`
	// Todo marks a placeholder that is reported but never executed.
	Todo bool `yaml:"todo,omitempty"`
}

// FullName joins the suite path and the case name.
func (c Case) FullName() string {
	return strings.Join(append(append([]string{}, c.Suite...), c.Name), " / ")
}

// TopSuite returns the outermost suite name, or "" for a bare case.
func (c Case) TopSuite() string {
	if len(c.Suite) == 0 {
		return ""
	}
	return c.Suite[0]
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slug is a file-name-safe form of FullName.
func (c Case) Slug() string {
	return strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(c.FullName()), "-"), "-")
}

// Validate checks the case and each of its steps.
func (c Case) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("case in %q has no name", strings.Join(c.Suite, " / "))
	}
	if c.Todo {
		return nil
	}
	if len(c.Steps) == 0 {
		return fmt.Errorf("case %q has no steps", c.FullName())
	}
	for i, s := range c.Steps {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("case %q step %d: %w", c.FullName(), i+1, err)
		}
	}
	return nil
}

// Suite groups cases and nested suites.
type Suite struct {
	Name   string  `yaml:"name"`
	Cases  []Case  `yaml:"cases,omitempty"`
	Suites []Suite `yaml:"suites,omitempty"`
}

// Flatten lists every case of the suites depth-first, cases before nested
// suites, with Case.Suite set to the enclosing path.
func Flatten(suites ...Suite) []Case {
	var out []Case
	for _, s := range suites {
		out = s.flatten(nil, out)
	}
	return out
}

func (s Suite) flatten(parent []string, out []Case) []Case {
	path := append(append([]string{}, parent...), s.Name)
	for _, c := range s.Cases {
		c.Suite = path
		out = append(out, c)
	}
	for _, child := range s.Suites {
		out = child.flatten(path, out)
	}
	return out
}

// Status is the outcome of one case.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusErrored Status = "errored"
	StatusTodo    Status = "todo"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of running one case.
type Result struct {
	Case   Case
	Status Status
	Err    error
	// FailedStep is the index of the failing step, -1 when none failed.
	FailedStep int
	Duration   time.Duration
	// Artifact is the screenshot path written for a failed case.
	Artifact string
}

// Step returns the failing step, if any.
func (r Result) Step() (Step, bool) {
	if r.FailedStep < 0 || r.FailedStep >= len(r.Case.Steps) {
		return Step{}, false
	}
	return r.Case.Steps[r.FailedStep], true
}

// Report is the outcome of one run.
type Report struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Driver    string
	BaseURL   string
	Results   []Result
}

// Summary counts results per status.
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`
	Todo    int `json:"todo"`
	Skipped int `json:"skipped"`
}

// Summary counts the report's results.
func (r *Report) Summary() Summary {
	s := Summary{Total: len(r.Results)}
	for _, res := range r.Results {
		switch res.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusErrored:
			s.Errored++
		case StatusTodo:
			s.Todo++
		case StatusSkipped:
			s.Skipped++
		}
	}
	return s
}

// OK reports whether no case failed or errored.
func (r *Report) OK() bool {
	s := r.Summary()
	return s.Failed == 0 && s.Errored == 0
}
