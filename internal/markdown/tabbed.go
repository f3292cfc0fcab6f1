package markdown

import (
	"regexp"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Tab implements the `=== "Label"` tabbed block form: a marker line followed
// by a body indented by four spaces. Adjacent tabs share a group in the
// rendered output purely through CSS classes.
type Tab struct {
	gmast.BaseBlock
	Title string
}

// KindTab is the node kind of the tab block.
var KindTab = gmast.NewNodeKind("Tab")

// Kind implements ast.Node.
func (n *Tab) Kind() gmast.NodeKind { return KindTab }

// Dump implements ast.Node.
func (n *Tab) Dump(source []byte, level int) {
	gmast.DumpHelper(n, source, level, map[string]string{"Title": n.Title}, nil)
}

var tabMarker = regexp.MustCompile(`^===\s+"([^"]*)"\s*$`)

type tabbedParser struct{}

func (p *tabbedParser) Trigger() []byte { return []byte{'='} }

func (p *tabbedParser) Open(_ gmast.Node, reader text.Reader, pc parser.Context) (gmast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || line[pos] != '=' {
		return nil, parser.NoChildren
	}
	match := tabMarker.FindSubmatch(util.TrimRightSpace(line[pos:]))
	if match == nil {
		return nil, parser.NoChildren
	}
	node := &Tab{Title: string(match[1])}
	reader.Advance(segment.Len() - 1)
	return node, parser.HasChildren
}

func (p *tabbedParser) Continue(_ gmast.Node, reader text.Reader, _ parser.Context) parser.State {
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

func (p *tabbedParser) Close(gmast.Node, text.Reader, parser.Context) {}

func (p *tabbedParser) CanInterruptParagraph() bool { return true }

func (p *tabbedParser) CanAcceptIndentedLine() bool { return false }

type tabbedRenderer struct{}

func (r *tabbedRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindTab, r.render)
}

func (r *tabbedRenderer) render(w util.BufWriter, _ []byte, node gmast.Node, entering bool) (gmast.WalkStatus, error) {
	n := node.(*Tab)
	if entering {
		_, _ = w.WriteString("<div class=\"tabbed-block\">\n")
		_, _ = w.WriteString(`<p class="tabbed-title">`)
		_, _ = w.Write(util.EscapeHTML([]byte(n.Title)))
		_, _ = w.WriteString("</p>\n")
	} else {
		_, _ = w.WriteString("</div>\n")
	}
	return gmast.WalkContinue, nil
}

type tabbedExtender struct{}

func (e *tabbedExtender) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(util.Prioritized(&tabbedParser{}, 798)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(&tabbedRenderer{}, 500)))
}
