package markdown

import (
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// LinkResolver maps a link destination found in a page onto the href the
// rendered page should carry. Returning false leaves the destination as
// written.
type LinkResolver func(dest string) (string, bool)

var linkResolverKey = parser.NewContextKey()

// linkRewriteTransformer passes link and image destinations through the
// LinkResolver carried in the parse context. It is a no-op when no
// resolver is set, so Render and Parse are unaffected.
type linkRewriteTransformer struct{}

func (linkRewriteTransformer) Transform(doc *gmast.Document, _ text.Reader, pc parser.Context) {
	resolve, _ := pc.Get(linkResolverKey).(LinkResolver)
	if resolve == nil {
		return
	}
	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Link:
			if dest, ok := resolve(string(node.Destination)); ok {
				node.Destination = []byte(dest)
			}
		case *gmast.Image:
			if dest, ok := resolve(string(node.Destination)); ok {
				node.Destination = []byte(dest)
			}
		}
		return gmast.WalkContinue, nil
	})
}
