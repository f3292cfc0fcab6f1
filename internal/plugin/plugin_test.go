package plugin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsmith/mksite/internal/config"
)

func TestKnownPluginSet(t *testing.T) {
	for _, name := range []string{"search", "gen-files", "mkdocstrings"} {
		assert.True(t, Known(name), name)
	}
	assert.False(t, Known("unheard-of"))
	assert.Equal(t, []string{"gen-files", "mkdocstrings", "search"}, KnownPlugins())
}

func TestFromConfigPreservesOrder(t *testing.T) {
	plugins, err := FromConfig(config.EntryList{
		{Name: "search"},
		{Name: "gen-files", Options: map[string]any{"scripts": []any{"x.sh"}}},
	})
	require.NoError(t, err)
	require.Len(t, plugins, 2)
	assert.Equal(t, "search", plugins[0].Name())
	assert.Equal(t, "gen-files", plugins[1].Name())
}

func TestFromConfigUnknownPlugin(t *testing.T) {
	_, err := FromConfig(config.EntryList{{Name: "telemetry-uploader"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telemetry-uploader")
}

func TestGenFilesRequiresScripts(t *testing.T) {
	_, err := FromConfig(config.EntryList{{Name: "gen-files"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scripts")
}

func TestSearchPostBuildWritesIndex(t *testing.T) {
	siteDir := t.TempDir()
	plugins, err := FromConfig(config.EntryList{{Name: "search"}})
	require.NoError(t, err)

	b := &BuildContext{
		SiteDir: siteDir,
		Pages: []RenderedPage{
			{Title: "Home", URL: "", HTML: []byte("<h1>Home</h1><p>welcome   text</p><script>junk()</script>")},
			{Title: "S3", URL: "s3/", HTML: []byte("<p>bucket ops</p>")},
		},
	}
	require.NoError(t, plugins[0].PostBuild(context.Background(), b))

	data, err := os.ReadFile(filepath.Join(siteDir, "search_index.json"))
	require.NoError(t, err)

	var index struct {
		Docs []struct {
			Location, Title, Text string
		} `json:"docs"`
	}
	require.NoError(t, json.Unmarshal(data, &index))
	require.Len(t, index.Docs, 2)
	assert.Equal(t, "Home welcome text", index.Docs[0].Text)
	assert.Equal(t, "s3/", index.Docs[1].Location)
}

func TestGenFilesRunsScript(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script execution")
	}
	baseDir := t.TempDir()
	docsDir := t.TempDir()

	script := filepath.Join(baseDir, "gen.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho '# Generated' > \"$MKSITE_DOCS_DIR/generated.md\"\n"), 0o755))

	plugins, err := FromConfig(config.EntryList{
		{Name: "gen-files", Options: map[string]any{"scripts": []any{"gen.sh"}}},
	})
	require.NoError(t, err)

	cfg, err := config.Parse([]byte("site_name: t\n"))
	require.NoError(t, err)
	b := &BuildContext{Config: cfg, BaseDir: baseDir, DocsDir: docsDir}
	require.NoError(t, plugins[0].PreBuild(context.Background(), b))

	generated, err := os.ReadFile(filepath.Join(docsDir, "generated.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Generated\n", string(generated))
}

func TestGenFilesMissingScript(t *testing.T) {
	plugins, err := FromConfig(config.EntryList{
		{Name: "gen-files", Options: map[string]any{"scripts": []any{"absent.sh"}}},
	})
	require.NoError(t, err)

	cfg, err := config.Parse([]byte("site_name: t\n"))
	require.NoError(t, err)
	b := &BuildContext{Config: cfg, BaseDir: t.TempDir(), DocsDir: t.TempDir()}
	err = plugins[0].PreBuild(context.Background(), b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.sh")
}

func TestAPIRefGeneratesPages(t *testing.T) {
	baseDir := t.TempDir()
	docsDir := t.TempDir()

	pkgDir := filepath.Join(baseDir, "awslib")
	require.NoError(t, os.MkdirAll(pkgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "creds.go"),
		[]byte("// Package awslib manages credentials.\n// It wraps provider chains.\npackage awslib\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "creds_test.go"),
		[]byte("package awslib\n"), 0o644))

	plugins, err := FromConfig(config.EntryList{
		{Name: "mkdocstrings", Options: map[string]any{
			"watch":     []any{"awslib"},
			"rendering": map[string]any{"show_root_heading": true, "show_source": true},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"awslib"}, WatchPaths(plugins))

	cfg, err := config.Parse([]byte("site_name: t\n"))
	require.NoError(t, err)
	b := &BuildContext{Config: cfg, BaseDir: baseDir, DocsDir: docsDir}
	require.NoError(t, plugins[0].PreBuild(context.Background(), b))

	page, err := os.ReadFile(filepath.Join(docsDir, "reference", "awslib", "creds.go.md"))
	require.NoError(t, err)
	content := string(page)
	assert.Contains(t, content, "# creds.go")
	assert.Contains(t, content, "Package awslib manages credentials.")
	assert.Contains(t, content, "```go")

	// Test files are excluded.
	_, err = os.Stat(filepath.Join(docsDir, "reference", "awslib", "creds_test.go.md"))
	assert.True(t, os.IsNotExist(err))

	index, err := os.ReadFile(filepath.Join(docsDir, "reference", "awslib", "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "[creds.go](creds.go.md)")
}

func TestAPIRefMissingWatchTree(t *testing.T) {
	plugins, err := FromConfig(config.EntryList{
		{Name: "mkdocstrings", Options: map[string]any{"watch": []any{"nope"}}},
	})
	require.NoError(t, err)

	cfg, err := config.Parse([]byte("site_name: t\n"))
	require.NoError(t, err)
	b := &BuildContext{Config: cfg, BaseDir: t.TempDir(), DocsDir: t.TempDir()}
	require.Error(t, plugins[0].PreBuild(context.Background(), b))
}
