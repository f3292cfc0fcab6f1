package markdown

import (
	"sort"
	"sync"

	"github.com/docsmith/mksite/internal/config"
)

// Builder applies one configured extension entry to the pipeline settings.
type Builder func(entry config.Entry, s *settings)

var (
	builderMu sync.RWMutex
	builders  = map[string]Builder{}
)

// RegisterExtension registers a markdown extension identifier. Duplicate
// registrations are ignored; built-ins register via init.
func RegisterExtension(name string, b Builder) {
	if b == nil {
		return
	}
	builderMu.Lock()
	defer builderMu.Unlock()
	if _, exists := builders[name]; exists {
		return
	}
	builders[name] = b
}

// Known reports whether the identifier belongs to the installed extension set.
func Known(name string) bool {
	builderMu.RLock()
	defer builderMu.RUnlock()
	_, ok := builders[name]
	return ok
}

// KnownExtensions returns the installed identifiers, sorted.
func KnownExtensions() []string {
	builderMu.RLock()
	defer builderMu.RUnlock()
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupBuilder(name string) (Builder, bool) {
	builderMu.RLock()
	defer builderMu.RUnlock()
	b, ok := builders[name]
	return b, ok
}
