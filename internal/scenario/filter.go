package scenario

import (
	"fmt"
	"regexp"
	"strings"
)

// Filter selects cases by suite path and case name. Nil patterns match
// everything.
type Filter struct {
	Suite *regexp.Regexp
	Name  *regexp.Regexp
}

// ParseFilter compiles the suite and name patterns. Empty patterns match
// everything.
func ParseFilter(suite, name string) (Filter, error) {
	var f Filter
	var err error
	if suite != "" {
		if f.Suite, err = regexp.Compile(suite); err != nil {
			return Filter{}, fmt.Errorf("invalid suite filter: %w", err)
		}
	}
	if name != "" {
		if f.Name, err = regexp.Compile(name); err != nil {
			return Filter{}, fmt.Errorf("invalid name filter: %w", err)
		}
	}
	return f, nil
}

// Match reports whether c passes the filter. The suite pattern is matched
// against the " / "-joined suite path.
func (f Filter) Match(c Case) bool {
	if f.Suite != nil && !f.Suite.MatchString(strings.Join(c.Suite, " / ")) {
		return false
	}
	if f.Name != nil && !f.Name.MatchString(c.Name) {
		return false
	}
	return true
}

// Apply returns the matching cases, keeping their order.
func (f Filter) Apply(cases []Case) []Case {
	if f.Suite == nil && f.Name == nil {
		return cases
	}
	out := make([]Case, 0, len(cases))
	for _, c := range cases {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}
