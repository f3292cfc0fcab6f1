package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/docsmith/mksite/internal/config"
)

func init() {
	Register("search", func(entry config.Entry) (Plugin, error) {
		return &searchPlugin{
			indexName: entry.String("index_name", "search_index.json"),
		}, nil
	})
}

// searchPlugin emits a JSON search index over the rendered pages.
type searchPlugin struct {
	indexName string
}

type searchIndex struct {
	Docs []searchDoc `json:"docs"`
}

type searchDoc struct {
	Location string `json:"location"`
	Title    string `json:"title"`
	Text     string `json:"text"`
}

func (p *searchPlugin) Name() string { return "search" }

func (p *searchPlugin) PreBuild(context.Context, *BuildContext) error { return nil }

func (p *searchPlugin) PostBuild(_ context.Context, b *BuildContext) error {
	index := searchIndex{Docs: make([]searchDoc, 0, len(b.Pages))}
	for _, page := range b.Pages {
		text, err := extractText(page.HTML)
		if err != nil {
			return fmt.Errorf("extract text from %s: %w", page.SourcePath, err)
		}
		index.Docs = append(index.Docs, searchDoc{
			Location: page.URL,
			Title:    page.Title,
			Text:     text,
		})
	}

	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("marshal search index: %w", err)
	}
	out := filepath.Join(b.SiteDir, p.indexName)
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write search index: %w", err)
	}
	slog.Debug("Wrote search index", "path", out, "docs", len(index.Docs))
	return nil
}

func (p *searchPlugin) WatchPaths() []string { return nil }

// extractText flattens rendered HTML into whitespace-normalized plain text.
func extractText(rendered []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(rendered))
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		case n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style"):
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)
	return strings.Join(strings.Fields(buf.String()), " "), nil
}
