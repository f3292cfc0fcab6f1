package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsmith/mksite/internal/config"
)

func pipelineFor(t *testing.T, yamlExts string) *Pipeline {
	t.Helper()
	cfg, err := config.Parse([]byte("site_name: t\nmarkdown_extensions:\n" + yamlExts))
	require.NoError(t, err)
	p, err := NewPipeline(cfg.MarkdownExtensions)
	require.NoError(t, err)
	return p
}

func TestNewPipelineRejectsUnknownExtension(t *testing.T) {
	_, err := NewPipeline(config.EntryList{{Name: "pymdownx.nope"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pymdownx.nope")
}

func TestNewPipelineLenientSkipsUnknown(t *testing.T) {
	p, unknown := NewPipelineLenient(config.EntryList{{Name: "admonition"}, {Name: "bogus"}})
	require.NotNil(t, p)
	assert.Equal(t, []string{"bogus"}, unknown)

	out, err := p.Render([]byte("plain paragraph"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "<p>plain paragraph</p>")
}

func TestKnownExtensionSet(t *testing.T) {
	for _, name := range []string{"admonition", "codehilite", "toc", "pymdownx.superfences", "pymdownx.tabbed"} {
		assert.True(t, Known(name), name)
	}
	assert.False(t, Known("pymdownx.unheard-of"))
	assert.Contains(t, KnownExtensions(), "admonition")
}

func TestRenderAdmonition(t *testing.T) {
	p := pipelineFor(t, "  - admonition\n")
	out, err := p.Render([]byte("!!! warning \"Careful\"\n    Body text here.\n"))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `<div class="admonition warning">`)
	assert.Contains(t, html, `<p class="admonition-title">Careful</p>`)
	assert.Contains(t, html, "<p>Body text here.</p>")
	assert.Contains(t, html, "</div>")
}

func TestRenderAdmonitionDefaultTitle(t *testing.T) {
	p := pipelineFor(t, "  - admonition\n")
	out, err := p.Render([]byte("!!! note\n    Remember this.\n"))
	require.NoError(t, err)
	assert.Contains(t, string(out), `<p class="admonition-title">Note</p>`)
}

func TestRenderAdmonitionEndsAtDedent(t *testing.T) {
	p := pipelineFor(t, "  - admonition\n")
	out, err := p.Render([]byte("!!! tip\n    inside\n\noutside\n"))
	require.NoError(t, err)

	html := string(out)
	idx := strings.Index(html, "</div>")
	require.GreaterOrEqual(t, idx, 0)
	assert.Contains(t, html[idx:], "<p>outside</p>")
}

func TestRenderTabbed(t *testing.T) {
	p := pipelineFor(t, "  - pymdownx.tabbed\n")
	out, err := p.Render([]byte("=== \"Linux\"\n    apt install thing\n\n=== \"macOS\"\n    brew install thing\n"))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `<p class="tabbed-title">Linux</p>`)
	assert.Contains(t, html, `<p class="tabbed-title">macOS</p>`)
}

func TestRenderCodehiliteClass(t *testing.T) {
	p := pipelineFor(t, "  - codehilite:\n      css_class: chroma\n")
	out, err := p.Render([]byte("```go\nfmt.Println(\"hi\")\n```\n"))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `<div class="chroma">`)
	assert.Contains(t, html, `<code class="language-go">`)
	assert.Contains(t, html, "fmt.Println(&quot;hi&quot;)")
}

func TestRenderTocPermalink(t *testing.T) {
	p := pipelineFor(t, "  - toc:\n      permalink: true\n")
	out, err := p.Render([]byte("# Section Title\n\nbody\n"))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `id="section-title"`)
	assert.Contains(t, html, `href="#section-title"`)
	assert.Contains(t, html, "headerlink")
}

func TestRenderTocWithoutPermalink(t *testing.T) {
	p := pipelineFor(t, "  - toc\n")
	out, err := p.Render([]byte("# Section Title\n"))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `id="section-title"`)
	assert.NotContains(t, html, "headerlink")
}

func TestTitle(t *testing.T) {
	p := pipelineFor(t, "  - toc\n")
	assert.Equal(t, "My Page", p.Title([]byte("# My Page\n\nbody\n")))
	assert.Equal(t, "", p.Title([]byte("no heading here\n")))
	assert.Equal(t, "Second", p.Title([]byte("## Sub\n\n# Second\n")))
}

func TestTitleWithInlineMarkup(t *testing.T) {
	p := pipelineFor(t, "  - toc\n")
	assert.Equal(t, "Using S3", p.Title([]byte("# Using *S3*\n")))
	assert.Equal(t, "The mksite CLI", p.Title([]byte("# The `mksite` CLI\n")))
	assert.Equal(t, "Deploying with ECS", p.Title([]byte("# Deploying with **ECS**\n")))
}

func TestRenderPageRewritesLinkDestinations(t *testing.T) {
	p := pipelineFor(t, "  - admonition\n")
	resolve := func(dest string) (string, bool) {
		if dest == "guide.md" {
			return "guide/", true
		}
		return "", false
	}

	out, err := p.RenderPage([]byte("Read the [guide](guide.md) or the [upstream notes](https://example.com/notes.md).\n"), resolve)
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `<a href="guide/">guide</a>`)
	assert.Contains(t, html, `href="https://example.com/notes.md"`)
	assert.NotContains(t, html, `href="guide.md"`)
}

func TestRenderLeavesLinksWithoutResolver(t *testing.T) {
	p := pipelineFor(t, "  - admonition\n")
	out, err := p.Render([]byte("[guide](guide.md)\n"))
	require.NoError(t, err)
	assert.Contains(t, string(out), `href="guide.md"`)
}

func TestExtractLinks(t *testing.T) {
	p := pipelineFor(t, "  - admonition\n")
	body := []byte(`[inline](target.md) and ![img](pic.png) and <https://example.com>

[ref]: ref-target.md
`)
	links := p.ExtractLinks(body)

	var dests []string
	for _, l := range links {
		dests = append(dests, l.Destination)
	}
	assert.Contains(t, dests, "target.md")
	assert.Contains(t, dests, "pic.png")
	assert.Contains(t, dests, "https://example.com")
	assert.Contains(t, dests, "ref-target.md")
}
