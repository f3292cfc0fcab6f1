package markdown

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Admonition implements the `!!! note "Title"` callout block form: a marker
// line followed by a body indented by four spaces.
type Admonition struct {
	gmast.BaseBlock
	AdmonitionType string
	Title          string
}

// KindAdmonition is the node kind of the admonition block.
var KindAdmonition = gmast.NewNodeKind("Admonition")

// Kind implements ast.Node.
func (n *Admonition) Kind() gmast.NodeKind { return KindAdmonition }

// Dump implements ast.Node.
func (n *Admonition) Dump(source []byte, level int) {
	gmast.DumpHelper(n, source, level, map[string]string{
		"Type":  n.AdmonitionType,
		"Title": n.Title,
	}, nil)
}

var admonitionMarker = regexp.MustCompile(`^!!!\s+([\w-]+)(?:\s+"([^"]*)")?\s*$`)

type admonitionParser struct{}

func (p *admonitionParser) Trigger() []byte { return []byte{'!'} }

func (p *admonitionParser) Open(_ gmast.Node, reader text.Reader, pc parser.Context) (gmast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || line[pos] != '!' {
		return nil, parser.NoChildren
	}
	match := admonitionMarker.FindSubmatch(util.TrimRightSpace(line[pos:]))
	if match == nil {
		return nil, parser.NoChildren
	}
	node := &Admonition{
		AdmonitionType: strings.ToLower(string(match[1])),
	}
	if len(match) > 2 {
		node.Title = string(match[2])
	}
	if node.Title == "" {
		node.Title = defaultAdmonitionTitle(node.AdmonitionType)
	}
	reader.Advance(segment.Len() - 1)
	return node, parser.HasChildren
}

func (p *admonitionParser) Continue(_ gmast.Node, reader text.Reader, _ parser.Context) parser.State {
	line, _ := reader.PeekLine()
	if util.IsBlank(line) {
		return parser.Continue | parser.HasChildren
	}
	childPos, padding := util.IndentPosition(line, reader.LineOffset(), 4)
	if childPos < 0 {
		return parser.Close
	}
	reader.AdvanceAndSetPadding(childPos, padding)
	return parser.Continue | parser.HasChildren
}

func (p *admonitionParser) Close(gmast.Node, text.Reader, parser.Context) {}

func (p *admonitionParser) CanInterruptParagraph() bool { return true }

func (p *admonitionParser) CanAcceptIndentedLine() bool { return false }

func defaultAdmonitionTitle(typ string) string {
	if typ == "" {
		return ""
	}
	return strings.ToUpper(typ[:1]) + typ[1:]
}

type admonitionRenderer struct{}

func (r *admonitionRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindAdmonition, r.render)
}

func (r *admonitionRenderer) render(w util.BufWriter, _ []byte, node gmast.Node, entering bool) (gmast.WalkStatus, error) {
	n := node.(*Admonition)
	if entering {
		_, _ = w.WriteString(`<div class="admonition `)
		_, _ = w.Write(util.EscapeHTML([]byte(n.AdmonitionType)))
		_, _ = w.WriteString("\">\n")
		if n.Title != "" {
			_, _ = w.WriteString(`<p class="admonition-title">`)
			_, _ = w.Write(util.EscapeHTML([]byte(n.Title)))
			_, _ = w.WriteString("</p>\n")
		}
	} else {
		_, _ = w.WriteString("</div>\n")
	}
	return gmast.WalkContinue, nil
}

type admonitionExtender struct{}

func (e *admonitionExtender) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(util.Prioritized(&admonitionParser{}, 799)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(&admonitionRenderer{}, 500)))
}
