package config

import (
	"fmt"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Entry is one element of a markdown_extensions or plugins list. The on-disk
// form is either a bare identifier:
//
//   - admonition
//
// or a single-key map carrying an options block:
//
//   - toc:
//     permalink: true
type Entry struct {
	Name    string
	Options map[string]any
}

// EntryList is an ordered list of entries. Order is significant and survives
// a marshal round trip.
type EntryList []Entry

// UnmarshalYAML decodes the string-or-map entry form.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&e.Name)
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: entry map must have exactly one key", node.Line)
		}
		if err := node.Content[0].Decode(&e.Name); err != nil {
			return err
		}
		val := node.Content[1]
		if val.Kind == yaml.ScalarNode && val.Tag == "!!null" {
			return nil
		}
		return val.Decode(&e.Options)
	default:
		return fmt.Errorf("line %d: entry must be a string or a single-key map", node.Line)
	}
}

// MarshalYAML emits the compact scalar form when the entry has no options.
func (e Entry) MarshalYAML() (any, error) {
	if len(e.Options) == 0 {
		return e.Name, nil
	}
	return map[string]any{e.Name: e.Options}, nil
}

// String returns a string option, or def when absent.
func (e Entry) String(key, def string) string {
	v, ok := e.Options[key]
	if !ok {
		return def
	}
	return cast.ToString(v)
}

// Bool returns a boolean option, or def when absent.
func (e Entry) Bool(key string, def bool) bool {
	v, ok := e.Options[key]
	if !ok {
		return def
	}
	return cast.ToBool(v)
}

// Int returns an integer option, or def when absent.
func (e Entry) Int(key string, def int) int {
	v, ok := e.Options[key]
	if !ok {
		return def
	}
	return cast.ToInt(v)
}

// Strings returns a string-slice option. A scalar value becomes a one-element
// slice, matching how loosely the on-disk format is usually written.
func (e Entry) Strings(key string) []string {
	v, ok := e.Options[key]
	if !ok {
		return nil
	}
	if s, err := cast.ToStringSliceE(v); err == nil {
		return s
	}
	return []string{cast.ToString(v)}
}

// Map returns a nested option map, or nil when absent.
func (e Entry) Map(key string) map[string]any {
	v, ok := e.Options[key]
	if !ok {
		return nil
	}
	return cast.ToStringMap(v)
}

// Names returns the identifiers in list order.
func (l EntryList) Names() []string {
	names := make([]string, 0, len(l))
	for _, e := range l {
		names = append(names, e.Name)
	}
	return names
}

// Find returns the first entry with the given identifier.
func (l EntryList) Find(name string) (Entry, bool) {
	for _, e := range l {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Has reports whether an entry with the given identifier is present.
func (l EntryList) Has(name string) bool {
	_, ok := l.Find(name)
	return ok
}
