package plugin

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/docsmith/mksite/internal/config"
)

func init() {
	Register("mkdocstrings", func(entry config.Entry) (Plugin, error) {
		p := &apiRefPlugin{
			watch:           entry.Strings("watch"),
			showSource:      false,
			showRootHeading: true,
		}
		if rendering := entry.Map("rendering"); rendering != nil {
			if v, ok := rendering["show_source"]; ok {
				p.showSource = cast.ToBool(v)
			}
			if v, ok := rendering["show_root_heading"]; ok {
				p.showRootHeading = cast.ToBool(v)
			}
		}
		return p, nil
	})
}

// sourceExtensions maps recognized source files to their comment leader.
var sourceExtensions = map[string]string{
	".go": "//",
	".py": "#",
	".sh": "#",
	".rb": "#",
	".js": "//",
	".ts": "//",
}

// apiRefPlugin generates API-reference pages for the watched source trees:
// one markdown page per source file under reference/<tree>/, carrying the
// file's leading documentation comment and, optionally, the source listing.
type apiRefPlugin struct {
	watch           []string
	showSource      bool
	showRootHeading bool
}

func (p *apiRefPlugin) Name() string { return "mkdocstrings" }

func (p *apiRefPlugin) PreBuild(_ context.Context, b *BuildContext) error {
	for _, root := range p.watch {
		rootDir := root
		if !filepath.IsAbs(rootDir) {
			rootDir = filepath.Join(b.BaseDir, root)
		}
		if _, err := os.Stat(rootDir); err != nil {
			return fmt.Errorf("watched source tree %s: %w", root, err)
		}
		if err := p.generateTree(b, root, rootDir); err != nil {
			return err
		}
	}
	return nil
}

func (p *apiRefPlugin) generateTree(b *BuildContext, root, rootDir string) error {
	refDir := filepath.Join(b.DocsDir, "reference", filepath.Base(root))
	var pages []string

	err := filepath.Walk(rootDir, func(src string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") || info.Name() == "vendor" || info.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		leader, ok := sourceExtensions[filepath.Ext(src)]
		if !ok || strings.HasSuffix(src, "_test.go") {
			return nil
		}
		rel, err := filepath.Rel(rootDir, src)
		if err != nil {
			return err
		}
		page, err := p.renderReferencePage(src, rel, leader)
		if err != nil {
			return err
		}
		out := filepath.Join(refDir, filepath.ToSlash(rel)+".md")
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(out, page, 0o644); err != nil {
			return err
		}
		pages = append(pages, filepath.ToSlash(rel)+".md")
		return nil
	})
	if err != nil {
		return fmt.Errorf("generate reference pages for %s: %w", root, err)
	}

	sort.Strings(pages)
	if err := p.writeTreeIndex(refDir, root, pages); err != nil {
		return err
	}
	slog.Debug("Generated reference pages", "tree", root, "pages", len(pages))
	return nil
}

func (p *apiRefPlugin) renderReferencePage(src, rel, leader string) ([]byte, error) {
	doc, err := leadingComment(src, leader)
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", src, err)
	}

	var buf strings.Builder
	if p.showRootHeading {
		fmt.Fprintf(&buf, "# %s\n\n", path.Base(filepath.ToSlash(rel)))
	}
	if doc != "" {
		buf.WriteString(doc)
		buf.WriteString("\n\n")
	}
	if p.showSource {
		content, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("read source %s: %w", src, err)
		}
		lang := strings.TrimPrefix(filepath.Ext(src), ".")
		fmt.Fprintf(&buf, "```%s\n%s```\n", lang, ensureTrailingNewline(string(content)))
	}
	return []byte(buf.String()), nil
}

func (p *apiRefPlugin) writeTreeIndex(refDir, root string, pages []string) error {
	var buf strings.Builder
	fmt.Fprintf(&buf, "# %s reference\n\n", filepath.Base(root))
	for _, page := range pages {
		fmt.Fprintf(&buf, "- [%s](%s)\n", strings.TrimSuffix(page, ".md"), page)
	}
	if err := os.MkdirAll(refDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(refDir, "index.md"), []byte(buf.String()), 0o644)
}

func (p *apiRefPlugin) PostBuild(context.Context, *BuildContext) error { return nil }

func (p *apiRefPlugin) WatchPaths() []string { return p.watch }

// leadingComment returns the comment block at the top of a source file,
// skipping shebang lines and stripping comment leaders.
func leadingComment(src, leader string) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if len(lines) == 0 && strings.HasPrefix(line, "#!") {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, leader) {
			break
		}
		lines = append(lines, strings.TrimSpace(strings.TrimPrefix(trimmed, leader)))
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

func ensureTrailingNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
