package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// NavItem is one element of the navigation tree. The on-disk form is either
// a bare page path, a {label: path} pair, or a {label: [children]} section:
//
//	nav:
//	  - Home: index.md
//	  - Guides:
//	      - Getting Started: guides/start.md
//	      - guides/advanced.md
type NavItem struct {
	Label    string
	Path     string
	Children NavList
}

// NavList is an ordered navigation tree level.
type NavList []NavItem

// IsSection reports whether the item groups children instead of naming a page.
func (n NavItem) IsSection() bool { return len(n.Children) > 0 }

// UnmarshalYAML decodes the path / {label: path} / {label: [children]} forms.
func (n *NavItem) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&n.Path)
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: nav entry map must have exactly one key", node.Line)
		}
		if err := node.Content[0].Decode(&n.Label); err != nil {
			return err
		}
		val := node.Content[1]
		switch val.Kind {
		case yaml.ScalarNode:
			return val.Decode(&n.Path)
		case yaml.SequenceNode:
			return val.Decode(&n.Children)
		default:
			return fmt.Errorf("line %d: nav value must be a page path or a list", val.Line)
		}
	default:
		return fmt.Errorf("line %d: nav entry must be a string or a single-key map", node.Line)
	}
}

// MarshalYAML emits the same forms UnmarshalYAML accepts.
func (n NavItem) MarshalYAML() (any, error) {
	if n.IsSection() {
		return map[string]NavList{n.Label: n.Children}, nil
	}
	if n.Label == "" {
		return n.Path, nil
	}
	return map[string]string{n.Label: n.Path}, nil
}

// Walk visits every item depth-first in declaration order. Returning an error
// from fn stops the walk.
func (l NavList) Walk(fn func(item NavItem, depth int) error) error {
	return l.walk(fn, 0)
}

func (l NavList) walk(fn func(item NavItem, depth int) error, depth int) error {
	for _, item := range l {
		if err := fn(item, depth); err != nil {
			return err
		}
		if err := item.Children.walk(fn, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Pages returns every page path in the tree in declaration order.
func (l NavList) Pages() []string {
	var pages []string
	_ = l.Walk(func(item NavItem, _ int) error {
		if !item.IsSection() && item.Path != "" {
			pages = append(pages, item.Path)
		}
		return nil
	})
	return pages
}
