package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/docsmith/mksite/internal/config"
)

// Pipeline is a markdown renderer assembled from configured extension
// entries. Entry order controls assembly order.
type Pipeline struct {
	md goldmark.Markdown
}

// settings accumulates goldmark options while extension builders run.
type settings struct {
	parserOptions   []parser.Option
	rendererOptions []renderer.Option
	extenders       []goldmark.Extender

	// codeClass is the css class wrapped around fenced code blocks; set by
	// codehilite/pymdownx.highlight.
	codeClass string
}

// NewPipeline builds a pipeline from the configured extensions. Unknown
// identifiers are an error; use NewPipelineLenient at build time where a
// warning-and-skip is wanted instead.
func NewPipeline(extensions config.EntryList) (*Pipeline, error) {
	p, unknown := assemble(extensions)
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unrecognized markdown extensions: %s", strings.Join(unknown, ", "))
	}
	return p, nil
}

// NewPipelineLenient builds a pipeline, skipping unrecognized identifiers and
// returning them for the caller to report.
func NewPipelineLenient(extensions config.EntryList) (*Pipeline, []string) {
	return assemble(extensions)
}

func assemble(extensions config.EntryList) (*Pipeline, []string) {
	s := &settings{}
	var unknown []string
	for _, entry := range extensions {
		builder, ok := lookupBuilder(entry.Name)
		if !ok {
			unknown = append(unknown, entry.Name)
			continue
		}
		builder(entry, s)
	}

	opts := []goldmark.Option{
		// Documentation pages routinely embed raw HTML.
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		goldmark.WithParserOptions(parser.WithASTTransformers(
			util.Prioritized(linkRewriteTransformer{}, 500),
		)),
	}
	if len(s.parserOptions) > 0 {
		opts = append(opts, goldmark.WithParserOptions(s.parserOptions...))
	}
	if len(s.rendererOptions) > 0 {
		opts = append(opts, goldmark.WithRendererOptions(s.rendererOptions...))
	}
	opts = append(opts, goldmark.WithExtensions(s.extenders...))
	if s.codeClass != "" {
		opts = append(opts, goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(util.Prioritized(&codeBlockRenderer{class: s.codeClass}, 200)),
		))
	}
	return &Pipeline{md: goldmark.New(opts...)}, unknown
}

// Render converts a markdown body to HTML.
func (p *Pipeline) Render(body []byte) ([]byte, error) {
	return p.RenderPage(body, nil)
}

// RenderPage converts a markdown body to HTML, rewriting link and image
// destinations through resolve. A nil resolver leaves links as written.
func (p *Pipeline) RenderPage(body []byte, resolve LinkResolver) ([]byte, error) {
	var buf bytes.Buffer
	pc := parser.NewContext()
	if resolve != nil {
		pc.Set(linkResolverKey, resolve)
	}
	if err := p.md.Convert(body, &buf, parser.WithContext(pc)); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// Parse parses a markdown body into a goldmark AST without rendering.
func (p *Pipeline) Parse(body []byte) gmast.Node {
	return p.md.Parser().Parse(text.NewReader(body))
}

// Title returns the text of the first level-1 heading, or "".
func (p *Pipeline) Title(body []byte) string {
	root := p.Parse(body)
	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if h, ok := n.(*gmast.Heading); ok && h.Level == 1 {
			title = string(headingText(h, body))
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	return title
}

func headingText(h *gmast.Heading, source []byte) []byte {
	var buf bytes.Buffer
	// Titles like "Using *S3*" keep their text inside emphasis and code
	// spans, so the whole inline subtree has to be visited.
	_ = gmast.Walk(h, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if t, ok := n.(*gmast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
		return gmast.WalkContinue, nil
	})
	return buf.Bytes()
}
