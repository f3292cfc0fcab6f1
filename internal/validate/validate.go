// Package validate implements the configuration acceptance checks: schema
// well-formedness, nav path resolution, script presence, and identifier
// recognition against the installed extension and plugin sets.
package validate

import (
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/docsmith/mksite/internal/config"
	"github.com/docsmith/mksite/internal/markdown"
	"github.com/docsmith/mksite/internal/plugin"
)

// Check validates the configuration against the filesystem rooted at
// baseDir (the config file's directory).
func Check(cfg *config.Config, baseDir string) *Result {
	v := &validator{cfg: cfg, baseDir: baseDir, result: &Result{}}
	v.checkIdentity()
	v.checkTheme()
	v.checkExtensions()
	v.checkPlugins()
	v.checkNav()
	v.checkPageLinks()
	v.checkDurations()
	return v.result
}

type validator struct {
	cfg     *config.Config
	baseDir string
	result  *Result
}

func (v *validator) abs(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(v.baseDir, p)
}

func (v *validator) checkIdentity() {
	if v.cfg.SiteName == "" {
		v.result.errorf("site_name", "must not be empty")
	}
	if _, err := os.Stat(v.abs(v.cfg.DocsDir)); err != nil {
		v.result.errorf("docs_dir", "directory %s not found", v.cfg.DocsDir)
	}
}

func (v *validator) checkTheme() {
	if v.cfg.Theme.Type() == "" {
		v.result.warnf("theme.name", "unknown theme %q, the plain layout will be used", v.cfg.Theme.Name)
	}
	if c := v.cfg.Theme.Palette.Primary; c != "" && !config.KnownPaletteColor(c) {
		v.result.warnf("theme.palette.primary", "unknown color name %q", c)
	}
	if c := v.cfg.Theme.Palette.Accent; c != "" && !config.KnownPaletteColor(c) {
		v.result.warnf("theme.palette.accent", "unknown color name %q", c)
	}
}

func (v *validator) checkExtensions() {
	for _, entry := range v.cfg.MarkdownExtensions {
		if !markdown.Known(entry.Name) {
			v.result.errorf("markdown_extensions", "unrecognized extension %q", entry.Name)
		}
	}
}

func (v *validator) checkPlugins() {
	for _, entry := range v.cfg.Plugins {
		if !plugin.Known(entry.Name) {
			v.result.errorf("plugins", "unrecognized plugin %q", entry.Name)
			continue
		}
		switch entry.Name {
		case "gen-files":
			v.checkScripts(entry)
		case "mkdocstrings":
			v.checkWatchTrees(entry)
		}
	}
}

func (v *validator) checkScripts(entry config.Entry) {
	scripts := entry.Strings("scripts")
	if len(scripts) == 0 {
		v.result.errorf("plugins.gen-files", "requires at least one entry under scripts")
		return
	}
	for _, script := range scripts {
		info, err := os.Stat(v.abs(script))
		switch {
		case err != nil:
			v.result.errorf("plugins.gen-files", "generation script %s not found", script)
		case info.IsDir():
			v.result.errorf("plugins.gen-files", "generation script %s is a directory", script)
		case runtime.GOOS != "windows" && info.Mode()&0o111 == 0:
			// Advisory only: there is no executable bit to check on Windows.
			v.result.warnf("plugins.gen-files", "generation script %s is not executable", script)
		}
	}
}

func (v *validator) checkWatchTrees(entry config.Entry) {
	for _, tree := range entry.Strings("watch") {
		if _, err := os.Stat(v.abs(tree)); err != nil {
			v.result.errorf("plugins.mkdocstrings", "watched source tree %s not found", tree)
		}
	}
}

// checkNav verifies every nav path resolves to an existing page. Pages under
// a generated subtree are downgraded to warnings when a generating plugin is
// configured, since they only exist after its PreBuild hook runs.
func (v *validator) checkNav() {
	docsDir := v.abs(v.cfg.DocsDir)
	generated := v.cfg.Plugins.Has("gen-files") || v.cfg.Plugins.Has("mkdocstrings")
	seen := map[string]bool{}

	_ = v.cfg.Nav.Walk(func(item config.NavItem, _ int) error {
		if item.IsSection() || item.Path == "" {
			return nil
		}
		if seen[item.Path] {
			v.result.warnf("nav", "page %s appears more than once", item.Path)
		}
		seen[item.Path] = true
		if _, err := os.Stat(filepath.Join(docsDir, filepath.FromSlash(item.Path))); err != nil {
			if generated {
				v.result.warnf("nav", "page %s not found (may be generated at build time)", item.Path)
			} else {
				v.result.errorf("nav", "page %s not found under %s", item.Path, v.cfg.DocsDir)
			}
		}
		return nil
	})
}

// checkPageLinks extracts the links authored in every markdown page and
// verifies that relative links to other markdown files resolve within the
// docs tree. Missing targets downgrade to warnings when a generating plugin
// is configured, since those pages only exist after its PreBuild hook runs.
func (v *validator) checkPageLinks() {
	docsDir := v.abs(v.cfg.DocsDir)
	pipeline, _ := markdown.NewPipelineLenient(v.cfg.MarkdownExtensions)
	generated := v.cfg.Plugins.Has("gen-files") || v.cfg.Plugins.Has("mkdocstrings")

	_ = filepath.WalkDir(docsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// checkIdentity already reports a missing docs dir.
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != docsDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(p), ".md") {
			return nil
		}
		body, err := os.ReadFile(p)
		if err != nil {
			v.result.errorf("pages", "read %s: %v", p, err)
			return nil
		}
		rel, err := filepath.Rel(docsDir, p)
		if err != nil {
			return nil
		}
		source := filepath.ToSlash(rel)
		for _, link := range pipeline.ExtractLinks(body) {
			if link.Kind == markdown.LinkKindAuto {
				continue
			}
			target, ok := relativePageTarget(source, link.Destination)
			if !ok {
				continue
			}
			if _, err := os.Stat(filepath.Join(docsDir, filepath.FromSlash(target))); err != nil {
				if generated {
					v.result.warnf("pages", "%s links to %s which was not found (may be generated at build time)", source, link.Destination)
				} else {
					v.result.errorf("pages", "%s links to %s which was not found under %s", source, link.Destination, v.cfg.DocsDir)
				}
			}
		}
		return nil
	})
}

// relativePageTarget resolves a link destination against its source page and
// returns the docs-relative markdown file it points at, if any. External,
// absolute, fragment-only and non-markdown destinations report false.
func relativePageTarget(sourcePath, dest string) (string, bool) {
	if dest == "" || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "/") {
		return "", false
	}
	if u, err := url.Parse(dest); err != nil || u.IsAbs() {
		return "", false
	}
	target := dest
	if i := strings.IndexAny(dest, "#?"); i >= 0 {
		target = dest[:i]
	}
	if !strings.EqualFold(path.Ext(target), ".md") {
		return "", false
	}
	resolved := path.Join(path.Dir(sourcePath), target)
	if resolved == ".." || strings.HasPrefix(resolved, "../") {
		return "", false
	}
	return resolved, true
}

func (v *validator) checkDurations() {
	if _, err := v.cfg.Serve.RebuildIntervalDuration(); err != nil {
		v.result.errorf("serve.rebuild_interval", "%v", err)
	}
	if _, err := v.cfg.LinkCheck.TimeoutDuration(); err != nil {
		v.result.errorf("linkcheck.timeout", "%v", err)
	}
}
