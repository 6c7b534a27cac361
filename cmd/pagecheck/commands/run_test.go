package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/moolen/pagecheck/internal/config"
	"github.com/moolen/pagecheck/internal/elements"
	"github.com/moolen/pagecheck/internal/scenario"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagOverridesOnlyChanged(t *testing.T) {
	cmd := &cobra.Command{Use: "run"}
	var (
		url      string
		parallel int
		head     bool
	)
	cmd.Flags().StringVar(&url, "base-url", "", "")
	cmd.Flags().IntVarP(&parallel, "parallelism", "p", 0, "")
	cmd.Flags().BoolVar(&head, "headless", true, "")
	cmd.Flags().Bool("no-builtin", false, "")

	require.NoError(t, cmd.ParseFlags([]string{"--base-url", "http://localhost:8080/elements", "-p", "2"}))

	got := flagOverrides(cmd)
	assert.Equal(t, map[string]interface{}{
		"base_url":    "http://localhost:8080/elements",
		"parallelism": "2",
	}, got)
}

func TestFlagOverridesApplyToConfig(t *testing.T) {
	cmd := &cobra.Command{Use: "run"}
	cmd.Flags().Bool("headless", true, "")
	cmd.Flags().Duration("timeout", 0, "")
	cmd.Flags().BoolVar(&runCases.noBuiltin, "no-builtin", false, "")
	t.Cleanup(func() { runCases.noBuiltin = false })

	require.NoError(t, cmd.ParseFlags([]string{"--headless=false", "--timeout", "5s", "--no-builtin"}))

	cfg, err := config.Load("", flagOverrides(cmd))
	require.NoError(t, err)
	assert.False(t, cfg.Headless)
	assert.Equal(t, "5s", cfg.Timeouts.Default.String())
	assert.False(t, cfg.Builtin)
}

func TestCollectCases(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extra.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
suites:
  - name: Extra
    cases:
      - name: header is shown
        steps:
          - action: expect-present
            selector: .main-header
`), 0o644))

	t.Run("builtin and files", func(t *testing.T) {
		cfg := config.Default()
		cases, err := collectCases(cfg, []string{path})
		require.NoError(t, err)
		assert.Len(t, cases, len(elements.Cases())+1)
		assert.Equal(t, "header is shown", cases[len(cases)-1].Name)
	})

	t.Run("files only", func(t *testing.T) {
		cfg := config.Default()
		cfg.Builtin = false
		cases, err := collectCases(cfg, []string{path})
		require.NoError(t, err)
		require.Len(t, cases, 1)
		assert.Equal(t, []string{"Extra"}, cases[0].Suite)
	})

	t.Run("nothing to run", func(t *testing.T) {
		cfg := config.Default()
		cfg.Builtin = false
		_, err := collectCases(cfg, nil)
		assert.Error(t, err)
	})
}

func TestPrintCases(t *testing.T) {
	cases := []scenario.Case{
		{Suite: []string{"Text Box"}, Name: "fills the form", Steps: []scenario.Step{scenario.Click("#submit")}},
		{Suite: []string{"Text Box"}, Name: "rejects bad email"},
		{Suite: []string{"Check Box", "Expand"}, Name: "expands all"},
		{Suite: []string{"Check Box", "Expand"}, Name: "later", Todo: true},
	}

	var buf bytes.Buffer
	printCases(&buf, cases, true)

	want := strings.Join([]string{
		"Text Box",
		"  - fills the form",
		`      1. click "#submit"`,
		"  - rejects bad email",
		"Check Box",
		"  Expand",
		"    - expands all",
		"    - later (todo)",
		"",
		"4 cases",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

const extraCases = `
suites:
  - name: Extra
    cases:
      - name: header is shown
        steps:
          - action: expect-present
            selector: .main-header
`

func TestListScenarioFileOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.yaml")
	require.NoError(t, os.WriteFile(path, []byte(extraCases), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"list", "--no-builtin", "--scenario", path})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		listCases = caseFlags{}
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "Extra\n  - header is shown\n\n1 cases\n", out.String())
}

func TestReloadConfigKeepsFlagOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagecheck.yaml")
	write := func(content string) {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("base_url: http://localhost:8080/elements\nparallelism: 2\ntimeouts: {default: 10s}\n")

	runCases.configPath = path
	t.Cleanup(func() { runCases.configPath = "" })

	cmd := &cobra.Command{Use: "run"}
	cmd.Flags().StringP("format", "f", "", "")
	require.NoError(t, cmd.ParseFlags([]string{"-f", "json"}))

	prev, err := config.Load(path, flagOverrides(cmd))
	require.NoError(t, err)
	require.Equal(t, "json", prev.Report.Format)

	write("base_url: http://localhost:9090/elements\nparallelism: 3\ntimeouts: {default: 20s, absence: 2s}\ndriver: rod\nartifacts_dir: shots\n")

	next, err := reloadConfig(cmd, prev)
	require.NoError(t, err)
	assert.Equal(t, "json", next.Report.Format, "flag override survives reload")
	assert.Equal(t, "playwright", next.Driver, "browser settings need a restart")

	env := &runEnv{}
	rc := env.runnerConfig(next)
	assert.Equal(t, "http://localhost:9090/elements", rc.BaseURL)
	assert.Equal(t, 3, rc.Parallelism)
	assert.Equal(t, 20*time.Second, rc.DefaultTimeout)
	assert.Equal(t, 2*time.Second, rc.AbsenceTimeout)
	assert.Equal(t, "shots", rc.ArtifactsDir)

	env.baseURL = "http://127.0.0.1:4000/elements"
	assert.Equal(t, env.baseURL, env.runnerConfig(next).BaseURL)
}
