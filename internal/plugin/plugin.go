// Package plugin provides the build-time plugin system. Plugins are selected
// and ordered by the configuration's plugins list; identifiers follow the
// schema the configuration format uses.
package plugin

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/docsmith/mksite/internal/config"
)

// RenderedPage is one page after markdown rendering, as handed to PostBuild
// hooks.
type RenderedPage struct {
	Title      string
	SourcePath string // docs-relative markdown path
	URL        string // site-relative directory URL
	OutputPath string // site-relative rendered file path
	HTML       []byte
}

// BuildContext carries the state plugins operate on.
type BuildContext struct {
	Config *config.Config
	// BaseDir is the directory of the configuration file; script paths
	// resolve against it.
	BaseDir string
	// DocsDir is the staged documentation source tree. PreBuild hooks may
	// generate pages into it.
	DocsDir string
	// SiteDir is the staged site output tree. PostBuild hooks may write
	// artifacts into it.
	SiteDir string
	// Pages is populated before PostBuild runs.
	Pages []RenderedPage
}

// Plugin is a pair of build-stage hooks. Either hook may be a no-op.
type Plugin interface {
	Name() string
	// PreBuild runs after docs staging, before nav resolution and rendering.
	PreBuild(ctx context.Context, b *BuildContext) error
	// PostBuild runs after every page has rendered.
	PostBuild(ctx context.Context, b *BuildContext) error
	// WatchPaths reports extra paths serve mode should watch, relative to
	// the config directory.
	WatchPaths() []string
}

// Factory builds a plugin from its configuration entry.
type Factory func(entry config.Entry) (Plugin, error)

var (
	factoryMu sync.RWMutex
	factories = map[string]Factory{}
)

// Register adds a plugin factory. Duplicate identifiers are ignored;
// built-ins register via init.
func Register(name string, f Factory) {
	if f == nil {
		return
	}
	factoryMu.Lock()
	defer factoryMu.Unlock()
	if _, exists := factories[name]; exists {
		return
	}
	factories[name] = f
}

// Known reports whether the identifier belongs to the installed plugin set.
func Known(name string) bool {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// KnownPlugins returns the installed identifiers, sorted.
func KnownPlugins() []string {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromConfig instantiates the configured plugins in list order. Unknown
// identifiers are an error.
func FromConfig(entries config.EntryList) ([]Plugin, error) {
	var plugins []Plugin
	var unknown []string
	for _, entry := range entries {
		factoryMu.RLock()
		factory, ok := factories[entry.Name]
		factoryMu.RUnlock()
		if !ok {
			unknown = append(unknown, entry.Name)
			continue
		}
		p, err := factory(entry)
		if err != nil {
			return nil, fmt.Errorf("plugin %s: %w", entry.Name, err)
		}
		plugins = append(plugins, p)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unrecognized plugins: %s", strings.Join(unknown, ", "))
	}
	return plugins, nil
}

// WatchPaths collects every watch path declared by the given plugins.
func WatchPaths(plugins []Plugin) []string {
	var paths []string
	for _, p := range plugins {
		paths = append(paths, p.WatchPaths()...)
	}
	return paths
}
