package site

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docsmith/mksite/internal/markdown"
)

// Page is one markdown source mapped into the rendered site.
type Page struct {
	Title      string
	SourcePath string // docs-relative markdown path, slash-separated
	OutputPath string // site-relative rendered path, slash-separated
	URL        string // site-relative directory URL ("" for the root index)
}

// outputMapping computes the rendered location for a markdown source.
// Pages render as pretty URLs: guide.md becomes guide/index.html served
// at guide/, while any index.md renders in place.
func outputMapping(sourcePath string) (outputPath, pageURL string) {
	trimmed := strings.TrimSuffix(sourcePath, path.Ext(sourcePath))
	if path.Base(trimmed) == "index" {
		dir := path.Dir(trimmed)
		if dir == "." {
			return "index.html", ""
		}
		return path.Join(dir, "index.html"), dir + "/"
	}
	return path.Join(trimmed, "index.html"), trimmed + "/"
}

// pageLinkResolver rewrites relative links authored against the docs tree
// so they resolve from the pretty URL the page renders to. A link written
// as [guide](guide.md) would otherwise survive verbatim into the HTML and
// 404; markdown targets map through outputMapping, assets keep their
// mirrored path. External and absolute destinations pass through untouched.
func pageLinkResolver(sourcePath string) markdown.LinkResolver {
	_, pageURL := outputMapping(sourcePath)
	depth := strings.Count(pageURL, "/")
	return func(dest string) (string, bool) {
		if dest == "" || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "/") {
			return "", false
		}
		if u, err := url.Parse(dest); err != nil || u.IsAbs() {
			return "", false
		}
		target := dest
		suffix := ""
		if i := strings.IndexAny(dest, "#?"); i >= 0 {
			target, suffix = dest[:i], dest[i:]
		}
		if target == "" {
			return "", false
		}
		resolved := path.Join(path.Dir(sourcePath), target)
		if resolved == "." || resolved == ".." || strings.HasPrefix(resolved, "../") {
			return "", false
		}
		prefix := strings.Repeat("../", depth)
		if strings.EqualFold(path.Ext(target), ".md") {
			_, targetURL := outputMapping(resolved)
			href := prefix + targetURL
			if href == "" {
				href = "./"
			}
			return href + suffix, true
		}
		href := prefix + resolved
		if strings.HasSuffix(target, "/") {
			href += "/"
		}
		return href + suffix, true
	}
}

// DiscoverPages walks the docs directory and returns every markdown page,
// sorted with index files ahead of their siblings.
func DiscoverPages(docsDir string) ([]*Page, error) {
	var pages []*Page
	err := filepath.WalkDir(docsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
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
		rel, err := filepath.Rel(docsDir, p)
		if err != nil {
			return err
		}
		source := filepath.ToSlash(rel)
		out, url := outputMapping(source)
		pages = append(pages, &Page{SourcePath: source, OutputPath: out, URL: url})
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("docs directory %s does not exist", docsDir)
		}
		return nil, fmt.Errorf("walk docs directory: %w", err)
	}

	sort.Slice(pages, func(i, j int) bool {
		return pageSortKey(pages[i].SourcePath) < pageSortKey(pages[j].SourcePath)
	})
	return pages, nil
}

// pageSortKey orders index files before their siblings at each level.
func pageSortKey(sourcePath string) string {
	dir, base := path.Split(sourcePath)
	if base == "index.md" {
		return dir + "\x00"
	}
	return dir + base
}
