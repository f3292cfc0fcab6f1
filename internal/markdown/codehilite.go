package markdown

import (
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// codeBlockRenderer wraps code blocks in a css-classed container so a
// client-side highlighter can pick them up. The class comes from the
// codehilite css_class option.
type codeBlockRenderer struct {
	class string
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(gmast.KindFencedCodeBlock, r.renderFenced)
	reg.Register(gmast.KindCodeBlock, r.renderIndented)
}

func (r *codeBlockRenderer) renderFenced(w util.BufWriter, source []byte, node gmast.Node, entering bool) (gmast.WalkStatus, error) {
	n := node.(*gmast.FencedCodeBlock)
	if entering {
		r.openBlock(w, n.Language(source))
		r.writeLines(w, source, n)
	} else {
		r.closeBlock(w)
	}
	return gmast.WalkContinue, nil
}

func (r *codeBlockRenderer) renderIndented(w util.BufWriter, source []byte, node gmast.Node, entering bool) (gmast.WalkStatus, error) {
	if entering {
		r.openBlock(w, nil)
		r.writeLines(w, source, node)
	} else {
		r.closeBlock(w)
	}
	return gmast.WalkContinue, nil
}

func (r *codeBlockRenderer) openBlock(w util.BufWriter, language []byte) {
	_, _ = w.WriteString(`<div class="`)
	_, _ = w.Write(util.EscapeHTML([]byte(r.class)))
	_, _ = w.WriteString("\"><pre><code")
	if len(language) > 0 {
		_, _ = w.WriteString(` class="language-`)
		_, _ = w.Write(util.EscapeHTML(language))
		_, _ = w.WriteString(`"`)
	}
	_, _ = w.WriteString(">")
}

func (r *codeBlockRenderer) writeLines(w util.BufWriter, source []byte, n gmast.Node) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(line.Value(source)))
	}
}

func (r *codeBlockRenderer) closeBlock(w util.BufWriter) {
	_, _ = w.WriteString("</code></pre></div>\n")
}
