package drivers

import (
	"testing"

	"github.com/moolen/pagecheck/internal/browser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, name := range []string{"playwright", "rod", ""} {
		d, err := New(name, browser.Options{})
		require.NoError(t, err, name)
		if name == "" {
			name = "playwright"
		}
		assert.Equal(t, name, d.Name())
	}

	_, err := New("selenium", browser.Options{})
	assert.ErrorContains(t, err, `unknown driver "selenium"`)
}
