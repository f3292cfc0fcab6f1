package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNavUnmarshalForms(t *testing.T) {
	in := `
- index.md
- Home: index.md
- Guides:
    - Getting Started: guides/start.md
    - guides/advanced.md
`
	var nav NavList
	require.NoError(t, yaml.Unmarshal([]byte(in), &nav))
	require.Len(t, nav, 3)

	assert.Equal(t, NavItem{Path: "index.md"}, nav[0])
	assert.Equal(t, NavItem{Label: "Home", Path: "index.md"}, nav[1])

	require.True(t, nav[2].IsSection())
	assert.Equal(t, "Guides", nav[2].Label)
	require.Len(t, nav[2].Children, 2)
	assert.Equal(t, NavItem{Label: "Getting Started", Path: "guides/start.md"}, nav[2].Children[0])
	assert.Equal(t, NavItem{Path: "guides/advanced.md"}, nav[2].Children[1])
}

func TestNavUnmarshalRejectsBadShapes(t *testing.T) {
	for name, in := range map[string]string{
		"multi-key map": "- {Home: index.md, About: about.md}",
		"nested map":    "- Home:\n    nested: wrong",
	} {
		t.Run(name, func(t *testing.T) {
			var nav NavList
			require.Error(t, yaml.Unmarshal([]byte(in), &nav))
		})
	}
}

func TestNavWalkOrder(t *testing.T) {
	nav := NavList{
		{Label: "Home", Path: "index.md"},
		{Label: "Guides", Children: NavList{
			{Label: "Start", Path: "guides/start.md"},
		}},
		{Label: "API", Path: "api.md"},
	}

	var visited []string
	var depths []int
	require.NoError(t, nav.Walk(func(item NavItem, depth int) error {
		visited = append(visited, item.Label)
		depths = append(depths, depth)
		return nil
	}))
	assert.Equal(t, []string{"Home", "Guides", "Start", "API"}, visited)
	assert.Equal(t, []int{0, 0, 1, 0}, depths)

	assert.Equal(t, []string{"index.md", "guides/start.md", "api.md"}, nav.Pages())
}

func TestNavMarshalRoundTrip(t *testing.T) {
	in := NavList{
		{Path: "index.md"},
		{Label: "Home", Path: "index.md"},
		{Label: "Guides", Children: NavList{{Label: "Start", Path: "guides/start.md"}}},
	}
	out, err := yaml.Marshal(in)
	require.NoError(t, err)

	var back NavList
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, in, back)
}
