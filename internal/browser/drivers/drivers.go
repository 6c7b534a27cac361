// Package drivers selects a browser.Driver backend by name.
package drivers

import (
	"fmt"

	"github.com/moolen/pagecheck/internal/browser"
	"github.com/moolen/pagecheck/internal/browser/pwdriver"
	"github.com/moolen/pagecheck/internal/browser/roddriver"
)

// New returns the driver registered under name.
func New(name string, opts browser.Options) (browser.Driver, error) {
	switch name {
	case pwdriver.Name, "":
		return pwdriver.New(opts), nil
	case roddriver.Name:
		return roddriver.New(opts), nil
	default:
		return nil, fmt.Errorf("unknown driver %q (want %s or %s)", name, pwdriver.Name, roddriver.Name)
	}
}
