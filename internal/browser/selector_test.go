package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelector(t *testing.T) {
	tests := []struct {
		raw  string
		want []Part
	}{
		{"#item-0", []Part{{Kind: PartCSS, Value: "#item-0"}}},
		{"[aria-label=\"Expand all\"]", []Part{{Kind: PartCSS, Value: "[aria-label=\"Expand all\"]"}}},
		{"#output >> #permanentAddress", []Part{
			{Kind: PartCSS, Value: "#output"},
			{Kind: PartCSS, Value: "#permanentAddress"},
		}},
		{"form >> #userName-wrapper", []Part{
			{Kind: PartCSS, Value: "form"},
			{Kind: PartCSS, Value: "#userName-wrapper"},
		}},
		{"text=Current Address :", []Part{{Kind: PartText, Value: "Current Address :"}}},
		{`"Word File.doc"`, []Part{{Kind: PartExactText, Value: "Word File.doc"}}},
		{`text="Desktop"`, []Part{{Kind: PartExactText, Value: "Desktop"}}},
		{":nth-match(li ol [title=Toggle], 3)", []Part{{Kind: PartNthMatch, Value: "li ol [title=Toggle]", Index: 3}}},
		{"css=.main-header", []Part{{Kind: PartCSS, Value: ".main-header"}}},
		{`.show >> "a >> b"`, []Part{
			{Kind: PartCSS, Value: ".show"},
			{Kind: PartExactText, Value: "a >> b"},
		}},
		{"div > span", []Part{{Kind: PartCSS, Value: "div > span"}}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			sel, err := ParseSelector(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sel.Parts)
			assert.Equal(t, tt.raw, sel.String())
		})
	}
}

func TestParseSelectorErrors(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"#a >> ",
		">> #a",
		`"unterminated`,
		":nth-match(li, 0)",
		":nth-match(li, x)",
		":nth-match(li)",
		":nth-match(, 2)",
		"text=",
		"a)",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseSelector(raw)
			assert.Error(t, err)
		})
	}
}

func TestCheckVersion(t *testing.T) {
	assert.NoError(t, CheckVersion("anything", ""))
	assert.NoError(t, CheckVersion("HeadlessChrome/120.0.6099.109", ">= 120"))
	assert.NoError(t, CheckVersion("131.0.6778.33", ">= 120, < 200"))

	err := CheckVersion("HeadlessChrome/99.0.1", ">= 120")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not satisfy")

	assert.Error(t, CheckVersion("not-a-version", ">= 1"))
	assert.Error(t, CheckVersion("1.0", "newest"))
}
