package browser

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"
)

// CheckVersion verifies a browser version string against constraint. The
// version may carry a product prefix ("HeadlessChrome/120.0.6099.109").
// An empty constraint accepts anything.
func CheckVersion(reported, constraint string) error {
	if constraint == "" {
		return nil
	}

	c, err := version.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid browser version constraint %q: %w", constraint, err)
	}

	raw := reported
	if i := strings.LastIndex(raw, "/"); i >= 0 {
		raw = raw[i+1:]
	}
	v, err := version.NewVersion(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("cannot parse browser version %q: %w", reported, err)
	}

	if !c.Check(v) {
		return fmt.Errorf("browser version %s does not satisfy %q", v, constraint)
	}
	return nil
}
