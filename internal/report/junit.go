package report

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/moolen/pagecheck/internal/scenario"
)

type junitSuites struct {
	XMLName  xml.Name     `xml:"testsuites"`
	Name     string       `xml:"name,attr"`
	Tests    int          `xml:"tests,attr"`
	Failures int          `xml:"failures,attr"`
	Errors   int          `xml:"errors,attr"`
	Skipped  int          `xml:"skipped,attr"`
	Time     string       `xml:"time,attr"`
	Suites   []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Errors   int         `xml:"errors,attr"`
	Skipped  int         `xml:"skipped,attr"`
	Time     string      `xml:"time,attr"`
	Cases    []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitProblem `xml:"failure,omitempty"`
	Error     *junitProblem `xml:"error,omitempty"`
	Skipped   *junitSkipped `xml:"skipped,omitempty"`
}

type junitProblem struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

type junitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

type junitReporter struct{}

// Write emits one testsuite per top-level suite, in first-seen order.
func (junitReporter) Write(w io.Writer, r *scenario.Report) error {
	s := r.Summary()
	out := junitSuites{
		Name:     "pagecheck",
		Tests:    s.Total,
		Failures: s.Failed,
		Errors:   s.Errored,
		Skipped:  s.Todo + s.Skipped,
		Time:     seconds(r.Duration.Seconds()),
	}

	index := map[string]int{}
	durations := map[string]float64{}
	for _, res := range r.Results {
		top := res.Case.TopSuite()
		i, ok := index[top]
		if !ok {
			i = len(out.Suites)
			index[top] = i
			out.Suites = append(out.Suites, junitSuite{Name: top})
		}
		suite := &out.Suites[i]
		suite.Tests++
		durations[top] += res.Duration.Seconds()

		tc := junitCase{
			Name:      caseName(res.Case),
			ClassName: strings.Join(res.Case.Suite, "."),
			Time:      seconds(res.Duration.Seconds()),
		}
		f, _ := describe(res)
		switch res.Status {
		case scenario.StatusFailed:
			suite.Failures++
			tc.Failure = &junitProblem{Message: f.Message, Type: errorType(res.Err), Body: problemBody(res, f)}
		case scenario.StatusErrored:
			suite.Errors++
			tc.Error = &junitProblem{Message: f.Message, Type: errorType(res.Err), Body: problemBody(res, f)}
		case scenario.StatusTodo, scenario.StatusSkipped:
			suite.Skipped++
			tc.Skipped = &junitSkipped{Message: string(res.Status)}
		}
		suite.Cases = append(suite.Cases, tc)
	}
	for i := range out.Suites {
		out.Suites[i].Time = seconds(durations[out.Suites[i].Name])
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// caseName is the case name below the top-level suite.
func caseName(c scenario.Case) string {
	if len(c.Suite) <= 1 {
		return c.Name
	}
	return strings.Join(append(append([]string{}, c.Suite[1:]...), c.Name), " / ")
}

func errorType(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*scenario.")
}

func problemBody(res scenario.Result, f failure) string {
	var b strings.Builder
	if f.Step != "" {
		fmt.Fprintf(&b, "step %d: %s\n", f.Index+1, f.Step)
	}
	b.WriteString(f.Message)
	if res.Artifact != "" {
		fmt.Fprintf(&b, "\nscreenshot: %s", res.Artifact)
	}
	return b.String()
}

func seconds(s float64) string {
	return fmt.Sprintf("%.3f", s)
}
