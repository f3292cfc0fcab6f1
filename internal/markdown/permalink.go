package markdown

import (
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// permalinkTransformer appends an anchor link to every heading that received
// an auto-generated id, the way toc permalink rendering does it.
type permalinkTransformer struct{}

func (t *permalinkTransformer) Transform(doc *gmast.Document, _ text.Reader, _ parser.Context) {
	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		id, ok := h.AttributeString("id")
		if !ok {
			return gmast.WalkContinue, nil
		}
		idBytes, ok := id.([]byte)
		if !ok {
			return gmast.WalkContinue, nil
		}
		link := gmast.NewLink()
		link.Destination = append([]byte{'#'}, idBytes...)
		link.SetAttributeString("class", []byte("headerlink"))
		link.AppendChild(link, gmast.NewString([]byte("¶")))
		h.AppendChild(h, link)
		return gmast.WalkContinue, nil
	})
}
