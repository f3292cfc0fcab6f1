package validate

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsmith/mksite/internal/config"
)

func setupProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		mode := os.FileMode(0o644)
		if filepath.Ext(name) == ".sh" || filepath.Ext(name) == ".py" {
			mode = 0o755
		}
		require.NoError(t, os.WriteFile(p, []byte(content), mode))
	}
	return dir
}

func parse(t *testing.T, yml string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(yml))
	require.NoError(t, err)
	return cfg
}

func TestCheckCleanConfig(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"docs/index.md":         "# Home\n",
		"docs/credentials.md":   "# Credentials\n",
		"docs/gen_ref_pages.py": "#!/usr/bin/env python3\n",
		"prefect_aws/blocks.py": "# module\n",
	})
	cfg := parse(t, `site_name: prefect-aws
theme:
  name: material
  palette:
    primary: blue
    accent: blue
markdown_extensions:
  - admonition
  - codehilite:
      css_class: highlight
  - toc:
      permalink: true
  - pymdownx.superfences
  - pymdownx.tabbed
plugins:
  - search
  - gen-files:
      scripts:
        - docs/gen_ref_pages.py
  - mkdocstrings:
      watch:
        - prefect_aws
nav:
  - Home: index.md
  - Credentials: credentials.md
`)

	result := Check(cfg, dir)
	assert.False(t, result.HasErrors(), "issues: %v", result.Issues)
	assert.Empty(t, result.Issues)
}

func TestCheckMissingNavPage(t *testing.T) {
	dir := setupProject(t, map[string]string{"docs/index.md": "# Home\n"})
	cfg := parse(t, `site_name: x
nav:
  - Home: index.md
  - Ghost: ghost.md
`)
	result := Check(cfg, dir)
	require.True(t, result.HasErrors())
	assert.Equal(t, 1, result.ErrorCount())
	assert.Contains(t, result.Issues[0].Message, "ghost.md")
}

func TestCheckMissingNavPageDowngradedWhenGenerated(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"docs/index.md": "# Home\n",
		"gen.sh":        "#!/bin/sh\n",
	})
	cfg := parse(t, `site_name: x
plugins:
  - gen-files:
      scripts:
        - gen.sh
nav:
  - Home: index.md
  - Reference: reference/index.md
`)
	result := Check(cfg, dir)
	assert.False(t, result.HasErrors(), "issues: %v", result.Issues)
	assert.Equal(t, 1, result.WarningCount())
}

func TestCheckBrokenPageLink(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"docs/index.md": "# Home\n\nSee the [setup](setup.md) and the [guide](guide.md).\n",
		"docs/setup.md": "# Setup\n",
	})
	cfg := parse(t, "site_name: x\n")

	result := Check(cfg, dir)
	require.True(t, result.HasErrors())
	require.Equal(t, 1, result.ErrorCount())
	assert.Contains(t, result.Issues[0].Message, "guide.md")
}

func TestCheckPageLinkSkipsExternalAndAssets(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"docs/index.md": "# Home\n\n[site](https://example.com/x.md), [mail](mailto:a@b.c), ![pic](img/missing.png), [frag](#anchor).\n",
	})
	cfg := parse(t, "site_name: x\n")

	result := Check(cfg, dir)
	assert.False(t, result.HasErrors(), "issues: %v", result.Issues)
}

func TestCheckBrokenPageLinkDowngradedWhenGenerated(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"docs/index.md": "# Home\n\nAPI docs live in the [reference](reference/index.md).\n",
		"gen.sh":        "#!/bin/sh\n",
	})
	cfg := parse(t, `site_name: x
plugins:
  - gen-files:
      scripts:
        - gen.sh
`)

	result := Check(cfg, dir)
	assert.False(t, result.HasErrors(), "issues: %v", result.Issues)
	assert.Equal(t, 1, result.WarningCount())
}

func TestCheckUnrecognizedIdentifiers(t *testing.T) {
	dir := setupProject(t, map[string]string{"docs/index.md": "# Home\n"})
	cfg := parse(t, `site_name: x
markdown_extensions:
  - admonition
  - pymdownx.imaginary
plugins:
  - search
  - chatbot
`)
	result := Check(cfg, dir)
	require.True(t, result.HasErrors())
	assert.Equal(t, 2, result.ErrorCount())

	var fields []string
	for _, issue := range result.Issues {
		fields = append(fields, issue.Field)
	}
	assert.Contains(t, fields, "markdown_extensions")
	assert.Contains(t, fields, "plugins")
}

func TestCheckMissingScript(t *testing.T) {
	dir := setupProject(t, map[string]string{"docs/index.md": "# Home\n"})
	cfg := parse(t, `site_name: x
plugins:
  - gen-files:
      scripts:
        - scripts/absent.py
`)
	result := Check(cfg, dir)
	require.True(t, result.HasErrors())
	assert.Contains(t, result.Issues[0].Message, "scripts/absent.py")
}

func TestCheckNonExecutableScriptWarns(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no executable bit on windows")
	}
	dir := setupProject(t, map[string]string{"docs/index.md": "# Home\n"})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gen.txt"), []byte("not a script"), 0o644))

	cfg := parse(t, `site_name: x
plugins:
  - gen-files:
      scripts:
        - gen.txt
`)
	result := Check(cfg, dir)
	assert.False(t, result.HasErrors())
	assert.Equal(t, 1, result.WarningCount())
	assert.Contains(t, result.Issues[0].Message, "not executable")
}

func TestCheckPaletteAndTheme(t *testing.T) {
	dir := setupProject(t, map[string]string{"docs/index.md": "# Home\n"})
	cfg := parse(t, `site_name: x
theme:
  name: neon
  palette:
    primary: ultraviolet
`)
	result := Check(cfg, dir)
	assert.False(t, result.HasErrors())
	assert.Equal(t, 2, result.WarningCount())
}

func TestCheckMissingDocsDirAndSiteName(t *testing.T) {
	cfg := parse(t, "site_name: x\n")
	cfg.SiteName = ""
	result := Check(cfg, t.TempDir())
	assert.Equal(t, 2, result.ErrorCount())
}

func TestCheckBadDurations(t *testing.T) {
	dir := setupProject(t, map[string]string{"docs/index.md": "# Home\n"})
	cfg := parse(t, `site_name: x
serve:
  rebuild_interval: soonish
linkcheck:
  timeout: whenever
`)
	result := Check(cfg, dir)
	assert.Equal(t, 2, result.ErrorCount())
}

func TestIssueString(t *testing.T) {
	i := Issue{Severity: SeverityError, Field: "nav", Message: "page x not found"}
	assert.Equal(t, "ERROR nav: page x not found", i.String())
}
