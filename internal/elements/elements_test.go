package elements

import (
	"testing"

	"github.com/moolen/pagecheck/internal/browser"
	"github.com/moolen/pagecheck/internal/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoldenSelectionsMatchTree(t *testing.T) {
	assert.Equal(t, HomeSelection, SelectionText("home"))
	assert.Equal(t, DesktopSelection, SelectionText("desktop"))
	assert.Equal(t, DocumentsSelection, SelectionText("documents"))
	// A partially checked home becomes fully checked.
	assert.Equal(t, HomeSelection, SelectionText("desktop", "home"))
}

func TestSelectionText(t *testing.T) {
	assert.Equal(t, "", SelectionText())
	assert.Equal(t, "", SelectionText("unknown"))
	assert.Equal(t, "You have selected :wordFile", SelectionText("wordFile"))
	assert.Equal(t, "You have selected :desktopnotescommands", SelectionText("notes", "commands"))
	assert.Equal(t, "You have selected :downloadswordFileexcelFile", SelectionText("wordFile", "excelFile"))
}

func TestCheckboxTree(t *testing.T) {
	tree := CheckboxTree()
	assert.Equal(t, []string{
		"Home", "Desktop", "Notes", "Commands", "Documents", "WorkSpace", "React",
		"Angular", "Veu", "Office", "Public", "Private", "Classified", "General",
		"Downloads", "Word File.doc", "Excel File.doc",
	}, tree.Labels())

	office, ok := tree.Find("office")
	require.True(t, ok)
	assert.Equal(t, []string{"public", "private", "classified", "general"}, office.Leaves())
	assert.False(t, office.IsLeaf())

	_, ok = tree.Find("nope")
	assert.False(t, ok)
}

func TestCases(t *testing.T) {
	cases := Cases()

	var todo, runnable int
	for _, c := range cases {
		require.NoError(t, c.Validate(), c.FullName())
		if c.Todo {
			todo++
			continue
		}
		runnable++
		assert.Empty(t, c.EntryURL, c.FullName())
	}
	assert.Equal(t, 21, runnable)
	assert.Equal(t, 2, todo)

	suites := map[string]int{}
	for _, c := range cases {
		suites[c.TopSuite()]++
	}
	assert.Equal(t, map[string]int{TextBoxSuite: 7, CheckBoxSuite: 14, GeneralSuite: 2}, suites)
}

func TestCaseSelectorsParse(t *testing.T) {
	for _, c := range Cases() {
		for _, s := range c.Steps {
			if s.Selector == "" {
				continue
			}
			_, err := browser.ParseSelector(s.Selector)
			assert.NoError(t, err, "%s: %s", c.FullName(), s)
		}
	}
}

func TestCaseNamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range Cases() {
		assert.False(t, seen[c.FullName()], c.FullName())
		seen[c.FullName()] = true
	}
}

func find(t *testing.T, name string) scenario.Case {
	t.Helper()
	for _, c := range Cases() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("case %q not found", name)
	return scenario.Case{}
}

func TestTextBoxCases(t *testing.T) {
	c := find(t, "Should not display fields that where not filled")
	assert.Equal(t, []scenario.Step{
		scenario.Click("#item-0"),
		scenario.Type("#currentAddress", "test address"),
		scenario.Type("#permanentAddress", "test address that is permanent"),
		scenario.Click("#submit"),
		scenario.ExpectAbsent("#name"),
		scenario.ExpectAbsent("#email"),
	}, c.Steps)
	assert.Equal(t, []string{TextBoxSuite, "Main tests"}, c.Suite)

	c = find(t, "Should display the information that was provided in the inputs")
	assert.Contains(t, c.Steps, scenario.ExpectTextContains("text=Test current address", "Test current address"))
}

func TestCheckBoxCases(t *testing.T) {
	c := find(t, "Should display all items after clicking '+' icon")
	// open, expand, one presence check per label
	assert.Len(t, c.Steps, 2+17)
	assert.Equal(t, scenario.ExpectPresent(`"Word File.doc"`), c.Steps[len(c.Steps)-2])

	c = find(t, "Should display selected file's filename in results")
	assert.Equal(t, scenario.Click(":nth-match(li ol [title=Toggle], 3)"), c.Steps[2])
}

func TestGeneralCases(t *testing.T) {
	c := find(t, "Should display element list navigation bar with expected items")
	require.Len(t, c.Steps, 1+len(NavItems))
	assert.Equal(t, scenario.ExpectTextEquals(".show >> #item-6", "Broken Links - Images"), c.Steps[7])
}
