package markdown

import (
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"

	"github.com/docsmith/mksite/internal/config"
)

// Built-in extension identifiers. Names follow the schema the configuration
// format uses (python-markdown / pymdownx naming), so configs written for
// that ecosystem validate unchanged.
func init() {
	RegisterExtension("admonition", func(_ config.Entry, s *settings) {
		s.extenders = append(s.extenders, &admonitionExtender{})
	})

	RegisterExtension("toc", func(e config.Entry, s *settings) {
		s.parserOptions = append(s.parserOptions, parser.WithAutoHeadingID())
		if e.Bool("permalink", false) {
			s.parserOptions = append(s.parserOptions,
				parser.WithASTTransformers(util.Prioritized(&permalinkTransformer{}, 900)))
		}
	})

	RegisterExtension("codehilite", func(e config.Entry, s *settings) {
		s.codeClass = e.String("css_class", "highlight")
	})

	RegisterExtension("tables", func(_ config.Entry, s *settings) {
		s.extenders = append(s.extenders, extension.Table)
	})

	RegisterExtension("footnotes", func(_ config.Entry, s *settings) {
		s.extenders = append(s.extenders, extension.Footnote)
	})

	RegisterExtension("def_list", func(_ config.Entry, s *settings) {
		s.extenders = append(s.extenders, extension.DefinitionList)
	})

	RegisterExtension("attr_list", func(_ config.Entry, s *settings) {
		s.parserOptions = append(s.parserOptions, parser.WithAttribute())
	})

	RegisterExtension("smarty", func(_ config.Entry, s *settings) {
		s.extenders = append(s.extenders, extension.Typographer)
	})

	// "extra" is the conventional bundle identifier.
	RegisterExtension("extra", func(_ config.Entry, s *settings) {
		s.extenders = append(s.extenders,
			extension.Table, extension.Strikethrough, extension.DefinitionList, extension.Footnote)
		s.parserOptions = append(s.parserOptions, parser.WithAttribute())
	})

	// Ordered and unordered list behavior already follows strict rules.
	RegisterExtension("sane_lists", func(_ config.Entry, _ *settings) {})

	// Core fenced-code parsing plus the code block renderer cover the
	// superfences surface this tool renders.
	RegisterExtension("pymdownx.superfences", func(_ config.Entry, s *settings) {
		if s.codeClass == "" {
			s.codeClass = "highlight"
		}
	})

	RegisterExtension("pymdownx.highlight", func(e config.Entry, s *settings) {
		s.codeClass = e.String("css_class", "highlight")
	})

	RegisterExtension("pymdownx.inlinehilite", func(_ config.Entry, _ *settings) {})

	RegisterExtension("pymdownx.tabbed", func(_ config.Entry, s *settings) {
		s.extenders = append(s.extenders, &tabbedExtender{})
	})
}
