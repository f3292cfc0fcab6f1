package site

import (
	"fmt"
	"log/slog"
	"os"
)

// stageDocs copies the authored docs tree into a scratch directory next to
// the site output. Generating plugins point at the copy, so the authored
// tree is never modified by a build.
func (b *Builder) stageDocs(dest string) error {
	src := b.cfg.DocsPath()
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("docs directory %s does not exist", src)
		}
		return fmt.Errorf("stat docs directory: %w", err)
	}
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("clear stale docs copy: %w", err)
	}
	if err := copyTree(src, dest); err != nil {
		return fmt.Errorf("stage docs tree: %w", err)
	}
	return nil
}

// beginStaging creates the sibling staging directory the build writes into.
func (b *Builder) beginStaging() error {
	stage := b.cfg.SitePath() + "_stage"
	if err := os.RemoveAll(stage); err != nil {
		return fmt.Errorf("clear stale staging directory: %w", err)
	}
	if err := os.MkdirAll(stage, 0o755); err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	b.stageDir = stage
	slog.Debug("Initialized staging directory", "staging", stage, "final", b.cfg.SitePath())
	return nil
}

// finalizeStaging promotes the staged output:
//  1. Move the existing site directory (if any) to <site>.prev.
//  2. Rename staging into place.
//  3. Remove the backup best-effort.
func (b *Builder) finalizeStaging() error {
	if b.stageDir == "" {
		return fmt.Errorf("no staging directory initialized")
	}
	outputDir := b.cfg.SitePath()

	prev := outputDir + ".prev"
	if err := os.RemoveAll(prev); err != nil {
		return fmt.Errorf("remove previous backup: %w", err)
	}
	if _, err := os.Stat(outputDir); err == nil {
		if err := os.Rename(outputDir, prev); err != nil {
			return fmt.Errorf("backup existing output: %w", err)
		}
	}
	if err := os.Rename(b.stageDir, outputDir); err != nil {
		return fmt.Errorf("promote staging: %w", err)
	}
	b.stageDir = ""

	if err := os.RemoveAll(prev); err != nil {
		slog.Warn("Failed to remove previous backup", "path", prev, "error", err)
	}
	slog.Debug("Promoted staging directory", "output", outputDir)
	return nil
}

// abortStaging removes the staging directory after a failed build so the
// last promoted site stays intact.
func (b *Builder) abortStaging() {
	if b.stageDir == "" {
		return
	}
	dir := b.stageDir
	b.stageDir = ""
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("Failed to remove staging directory after abort", "staging", dir, "error", err)
	}
}
