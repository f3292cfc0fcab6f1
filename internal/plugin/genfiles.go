package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/docsmith/mksite/internal/config"
)

func init() {
	Register("gen-files", func(entry config.Entry) (Plugin, error) {
		scripts := entry.Strings("scripts")
		if len(scripts) == 0 {
			return nil, fmt.Errorf("gen-files requires at least one entry under scripts")
		}
		return &genFilesPlugin{scripts: scripts}, nil
	})
}

// genFilesPlugin executes the configured generation scripts before rendering.
// Scripts run from the config directory with the staged docs directory
// exposed through MKSITE_DOCS_DIR, so generated pages land in the staging
// tree rather than the source tree.
type genFilesPlugin struct {
	scripts []string
}

func (p *genFilesPlugin) Name() string { return "gen-files" }

func (p *genFilesPlugin) PreBuild(ctx context.Context, b *BuildContext) error {
	for _, script := range p.scripts {
		path := script
		if !filepath.IsAbs(path) {
			path = filepath.Join(b.BaseDir, script)
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("generation script %s: %w", script, err)
		}

		cmd := exec.CommandContext(ctx, path)
		cmd.Dir = b.BaseDir
		cmd.Env = append(os.Environ(),
			"MKSITE_DOCS_DIR="+b.DocsDir,
			"MKSITE_SITE_NAME="+b.Config.SiteName,
		)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		slog.Info("Running generation script", "script", script)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("generation script %s failed: %w", script, err)
		}
	}
	return nil
}

func (p *genFilesPlugin) PostBuild(context.Context, *BuildContext) error { return nil }

func (p *genFilesPlugin) WatchPaths() []string { return p.scripts }
