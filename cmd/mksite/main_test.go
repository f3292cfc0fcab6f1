package main

import (
	"bytes"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsmith/mksite/internal/site"
)

func parseCLI(t *testing.T, args ...string) string {
	t.Helper()
	var cli = CLI
	parser, err := kong.New(&cli)
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return ctx.Command()
}

func TestCommandTree(t *testing.T) {
	assert.Equal(t, "init", parseCLI(t, "init"))
	assert.Equal(t, "check", parseCLI(t, "check", "-c", "other.yml"))
	assert.Equal(t, "build", parseCLI(t, "build", "--check-links"))
	assert.Equal(t, "serve", parseCLI(t, "serve", "--addr", "localhost:9000"))
	assert.Equal(t, "nav", parseCLI(t, "nav"))
}

func TestPrintNav(t *testing.T) {
	nodes := []*site.NavNode{
		{Title: "Home", Page: &site.Page{SourcePath: "index.md"}},
		{Title: "Guides", Children: []*site.NavNode{
			{Title: "Deploy", Page: &site.Page{SourcePath: "guides/deploy.md"}},
		}},
	}

	var buf bytes.Buffer
	printNav(&buf, nodes, 0)

	assert.Equal(t, "Home (index.md)\nGuides/\n  Deploy (guides/deploy.md)\n", buf.String())
}
