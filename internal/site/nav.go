package site

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/docsmith/mksite/internal/config"
)

// NavNode is one entry in the resolved navigation tree. Leaf nodes point
// at a page; section nodes carry children and no URL.
type NavNode struct {
	Title    string
	URL      string
	Page     *Page
	Children []*NavNode
}

// IsSection reports whether the node groups children rather than linking a page.
func (n *NavNode) IsSection() bool { return len(n.Children) > 0 }

// ResolveNav maps the configured navigation onto discovered pages, keeping
// the configured order. Entries naming a page that was not discovered are
// returned separately so the caller can warn. When no navigation is
// configured the tree is derived from the docs layout.
func ResolveNav(items config.NavList, pages []*Page) (nodes []*NavNode, missing []string) {
	if len(items) == 0 {
		return deriveNav(pages), nil
	}

	byPath := make(map[string]*Page, len(pages))
	for _, p := range pages {
		byPath[p.SourcePath] = p
	}

	var build func(items config.NavList) []*NavNode
	build = func(items config.NavList) []*NavNode {
		var out []*NavNode
		for _, item := range items {
			if item.IsSection() {
				node := &NavNode{Title: item.Label, Children: build(item.Children)}
				out = append(out, node)
				continue
			}
			page, ok := byPath[item.Path]
			if !ok {
				missing = append(missing, item.Path)
				continue
			}
			title := item.Label
			if title == "" {
				title = page.Title
			}
			if title == "" {
				title = TitleFromPath(item.Path)
			}
			out = append(out, &NavNode{Title: title, URL: page.URL, Page: page})
		}
		return out
	}
	return build(items), missing
}

// deriveNav builds a flat-by-directory nav tree from the page list itself.
func deriveNav(pages []*Page) []*NavNode {
	root := &NavNode{}
	sections := map[string]*NavNode{"": root}

	sectionFor := func(dir string) *NavNode {
		if node, ok := sections[dir]; ok {
			return node
		}
		// Create intermediate sections top-down so nesting stays ordered.
		parts := strings.Split(dir, "/")
		parent := root
		for i := range parts {
			prefix := strings.Join(parts[:i+1], "/")
			node, ok := sections[prefix]
			if !ok {
				node = &NavNode{Title: TitleFromPath(parts[i])}
				parent.Children = append(parent.Children, node)
				sections[prefix] = node
			}
			parent = node
		}
		return parent
	}

	for _, p := range pages {
		dir := path.Dir(p.SourcePath)
		if dir == "." {
			dir = ""
		}
		title := p.Title
		if title == "" {
			title = TitleFromPath(p.SourcePath)
		}
		section := sectionFor(dir)
		section.Children = append(section.Children, &NavNode{Title: title, URL: p.URL, Page: p})
	}
	return root.Children
}

var navTitleCaser = cases.Title(language.English)

// TitleFromPath derives a display title from a file or directory name:
// "getting-started.md" becomes "Getting Started".
func TitleFromPath(p string) string {
	base := path.Base(p)
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "index" {
		parent := path.Base(path.Dir(p))
		if parent != "." && parent != "/" {
			base = parent
		} else {
			base = "Home"
		}
	}
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return navTitleCaser.String(norm.NFC.String(base))
}
