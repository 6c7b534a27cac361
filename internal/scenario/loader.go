package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the layout of a YAML case file.
type File struct {
	Suites []Suite `yaml:"suites"`
}

// LoadFile reads and validates a YAML case file.
func LoadFile(path string) ([]Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}
	suites, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return suites, nil
}

// LoadFiles loads every file and returns the flattened cases in file order.
func LoadFiles(paths ...string) ([]Case, error) {
	var cases []Case
	for _, p := range paths {
		suites, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		cases = append(cases, Flatten(suites...)...)
	}
	return cases, nil
}

// Parse decodes a case file. Unknown keys are rejected.
func Parse(data []byte) ([]Suite, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("case file is empty")
		}
		return nil, fmt.Errorf("failed to parse case file: %w", err)
	}
	if len(f.Suites) == 0 {
		return nil, fmt.Errorf("case file defines no suites")
	}

	seen := map[string]bool{}
	for _, c := range Flatten(f.Suites...) {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if seen[c.FullName()] {
			return nil, fmt.Errorf("duplicate case %q", c.FullName())
		}
		seen[c.FullName()] = true
	}
	return f.Suites, nil
}
