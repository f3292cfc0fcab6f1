package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `site_name: prefect-aws
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
      rendering:
        show_root_heading: true
        show_source: false
      watch:
        - prefect_aws
nav:
  - Home: index.md
  - Credentials: credentials.md
  - S3: s3.md
  - Secrets Manager: secrets_manager.md
  - ECS: ecs.md
`

func TestParseSampleConfig(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "prefect-aws", cfg.SiteName)
	assert.Equal(t, ThemeMaterial, cfg.Theme.Type())
	assert.Equal(t, "blue", cfg.Theme.Palette.Primary)
	assert.Equal(t, "blue", cfg.Theme.Palette.Accent)

	// Extension order must survive decoding.
	assert.Equal(t,
		[]string{"admonition", "codehilite", "toc", "pymdownx.superfences", "pymdownx.tabbed"},
		cfg.MarkdownExtensions.Names())

	toc, ok := cfg.MarkdownExtensions.Find("toc")
	require.True(t, ok)
	assert.True(t, toc.Bool("permalink", false))

	hilite, ok := cfg.MarkdownExtensions.Find("codehilite")
	require.True(t, ok)
	assert.Equal(t, "highlight", hilite.String("css_class", ""))

	assert.Equal(t, []string{"search", "gen-files", "mkdocstrings"}, cfg.Plugins.Names())

	gen, ok := cfg.Plugins.Find("gen-files")
	require.True(t, ok)
	assert.Equal(t, []string{"docs/gen_ref_pages.py"}, gen.Strings("scripts"))

	ref, ok := cfg.Plugins.Find("mkdocstrings")
	require.True(t, ok)
	assert.Equal(t, []string{"prefect_aws"}, ref.Strings("watch"))
	rendering := ref.Map("rendering")
	require.NotNil(t, rendering)
	assert.Equal(t, true, rendering["show_root_heading"])

	assert.Equal(t,
		[]string{"index.md", "credentials.md", "s3.md", "secrets_manager.md", "ecs.md"},
		cfg.Nav.Pages())
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("site_name: Minimal\n"))
	require.NoError(t, err)

	assert.Equal(t, "docs", cfg.DocsDir)
	assert.Equal(t, "site", cfg.SiteDir)
	assert.Equal(t, "material", cfg.Theme.Name)
	assert.Equal(t, "localhost:8000", cfg.Serve.Addr)
	assert.Equal(t, 8, cfg.LinkCheck.Concurrency)
}

func TestParseExpandsEnvironment(t *testing.T) {
	t.Setenv("MKSITE_TEST_SITE", "Expanded Name")
	cfg, err := Parse([]byte("site_name: ${MKSITE_TEST_SITE}\n"))
	require.NoError(t, err)
	assert.Equal(t, "Expanded Name", cfg.SiteName)
}

func TestSaveRoundTripPreservesOrder(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "mksite.yml")
	require.NoError(t, cfg.Save(path))

	reloaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.MarkdownExtensions.Names(), reloaded.MarkdownExtensions.Names())
	assert.Equal(t, cfg.Plugins.Names(), reloaded.Plugins.Names())
	assert.Equal(t, cfg.Nav.Pages(), reloaded.Nav.Pages())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("site_name: [unclosed\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestServeConfigDurations(t *testing.T) {
	s := ServeConfig{RebuildInterval: "30m"}
	d, err := s.RebuildIntervalDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, d)

	s.RebuildInterval = ""
	d, err = s.RebuildIntervalDuration()
	require.NoError(t, err)
	assert.Zero(t, d)

	s.RebuildInterval = "not-a-duration"
	_, err = s.RebuildIntervalDuration()
	require.Error(t, err)

	s.RebuildInterval = "-5m"
	_, err = s.RebuildIntervalDuration()
	require.Error(t, err)
}

func TestSourceDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`site_name: X
sources:
  - url: https://example.com/org/repo.git
    name: repo
`))
	require.NoError(t, err)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "main", cfg.Sources[0].Branch)
	assert.Equal(t, "docs", cfg.Sources[0].Path)
}
