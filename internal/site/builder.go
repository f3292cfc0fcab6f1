package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docsmith/mksite/internal/config"
	"github.com/docsmith/mksite/internal/eventstore"
	"github.com/docsmith/mksite/internal/markdown"
	"github.com/docsmith/mksite/internal/metrics"
	"github.com/docsmith/mksite/internal/plugin"
	"github.com/docsmith/mksite/internal/source"
)

// Builder renders the configured documentation into a static site.
// Output is staged in a sibling directory and promoted atomically, so a
// failed build never clobbers the last good site.
type Builder struct {
	cfg        *config.Config
	recorder   metrics.Recorder
	events     eventstore.Store
	liveReload bool

	stageDir string
}

// Option configures a Builder.
type Option func(*Builder)

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) { b.recorder = r }
}

// WithEventStore persists build lifecycle events.
func WithEventStore(s eventstore.Store) Option {
	return func(b *Builder) { b.events = s }
}

// WithLiveReload injects the livereload script into rendered pages.
func WithLiveReload(enabled bool) Option {
	return func(b *Builder) { b.liveReload = enabled }
}

// NewBuilder creates a builder for a loaded configuration.
func NewBuilder(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{cfg: cfg, recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Report summarizes a completed build.
type Report struct {
	BuildID   string
	Pages     int
	Warnings  []string
	Duration  time.Duration
	OutputDir string
}

// Build runs the full pipeline: fetch sources, run pre-build plugins,
// render markdown through the configured extension pipeline, run
// post-build plugins, then promote the staged output.
func (b *Builder) Build(ctx context.Context, trigger string) (*Report, error) {
	start := time.Now()
	buildID := uuid.NewString()
	report := &Report{BuildID: buildID, OutputDir: b.cfg.SitePath()}

	slog.Info("Starting site build",
		"build_id", buildID,
		"site", b.cfg.SiteName,
		"trigger", trigger)
	b.appendEvent(ctx, buildID, eventstore.TypeBuildStarted, eventstore.BuildStartedPayload{
		SiteName:   b.cfg.SiteName,
		ConfigPath: b.cfg.Path(),
		Trigger:    trigger,
	})

	err := b.build(ctx, buildID, report)
	report.Duration = time.Since(start)
	b.recorder.ObserveBuildDuration(report.Duration)

	if err != nil {
		b.abortStaging()
		b.recorder.IncBuildOutcome("failed")
		b.appendEvent(ctx, buildID, eventstore.TypeBuildFailed, eventstore.BuildFailedPayload{
			Error:    err.Error(),
			Duration: report.Duration,
		})
		return report, err
	}

	b.recorder.IncBuildOutcome("success")
	b.recorder.SetPagesRendered(report.Pages)
	b.appendEvent(ctx, buildID, eventstore.TypeBuildCompleted, eventstore.BuildCompletedPayload{
		Pages:     report.Pages,
		Duration:  report.Duration,
		OutputDir: report.OutputDir,
		Warnings:  len(report.Warnings),
	})
	slog.Info("Site build completed",
		"build_id", buildID,
		"pages", report.Pages,
		"warnings", len(report.Warnings),
		"took", report.Duration)
	return report, nil
}

func (b *Builder) build(ctx context.Context, buildID string, report *Report) error {
	// The build works on a scratch copy of the docs tree so plugins that
	// generate pages never write into the authored sources, and so a
	// serve-mode watcher on the docs dir never sees the build's own output.
	docsDir := b.cfg.SitePath() + "_docs"
	defer func() {
		_ = os.RemoveAll(docsDir)
	}()
	if err := b.stage("sources", func() error {
		if err := b.stageDocs(docsDir); err != nil {
			return err
		}
		return b.fetchSources(ctx, docsDir)
	}); err != nil {
		return err
	}

	plugins, err := plugin.FromConfig(b.cfg.Plugins)
	if err != nil {
		return err
	}

	if err := b.beginStaging(); err != nil {
		return err
	}

	bctx := &plugin.BuildContext{
		Config:  b.cfg,
		BaseDir: b.cfg.BaseDir(),
		DocsDir: docsDir,
		SiteDir: b.stageDir,
	}
	if err := b.runPlugins(ctx, buildID, plugins, bctx, "pre"); err != nil {
		return err
	}

	pipeline, unknown := markdown.NewPipelineLenient(b.cfg.MarkdownExtensions)
	for _, name := range unknown {
		warn := fmt.Sprintf("skipping unrecognized markdown extension %q", name)
		report.Warnings = append(report.Warnings, warn)
		slog.Warn("Unrecognized markdown extension", "name", name)
	}

	var rendered []plugin.RenderedPage
	if err := b.stage("render", func() error {
		var renderErr error
		rendered, renderErr = b.renderPages(pipeline, docsDir, report)
		return renderErr
	}); err != nil {
		return err
	}
	report.Pages = len(rendered)

	bctx.Pages = rendered
	if err := b.runPlugins(ctx, buildID, plugins, bctx, "post"); err != nil {
		return err
	}

	if err := writeManifest(b.stageDir, report); err != nil {
		return err
	}
	return b.finalizeStaging()
}

// fetchSources pulls each configured remote docs tree into a subtree of
// the staged docs copy, replacing whatever the previous fetch left there.
func (b *Builder) fetchSources(ctx context.Context, docsDir string) error {
	if len(b.cfg.Sources) == 0 {
		return nil
	}

	workspace := filepath.Join(b.cfg.BaseDir(), ".mksite", "sources")
	fetcher := source.NewFetcher(workspace)

	for _, src := range b.cfg.Sources {
		fetched, err := fetcher.Fetch(ctx, src)
		if err != nil {
			return fmt.Errorf("fetch source %s: %w", src.Name, err)
		}
		dest := filepath.Join(docsDir, src.Name)
		if err := os.RemoveAll(dest); err != nil {
			return fmt.Errorf("clear source subtree %s: %w", dest, err)
		}
		if err := copyTree(fetched, dest); err != nil {
			return fmt.Errorf("place source %s: %w", src.Name, err)
		}
		slog.Info("Fetched docs source", "name", src.Name, "dest", dest)
	}
	return nil
}

func (b *Builder) runPlugins(ctx context.Context, buildID string, plugins []plugin.Plugin, bctx *plugin.BuildContext, phase string) error {
	stageName := "plugins_" + phase
	return b.stage(stageName, func() error {
		for _, p := range plugins {
			pluginStart := time.Now()
			var err error
			if phase == "pre" {
				err = p.PreBuild(ctx, bctx)
			} else {
				err = p.PostBuild(ctx, bctx)
			}
			took := time.Since(pluginStart)
			b.appendEvent(ctx, buildID, eventstore.TypePluginRan, eventstore.PluginRanPayload{
				Plugin: p.Name(),
				Stage:  phase,
				Took:   took,
			})
			if err != nil {
				return fmt.Errorf("plugin %s (%s): %w", p.Name(), phase, err)
			}
			slog.Debug("Plugin stage completed", "plugin", p.Name(), "phase", phase, "took", took)
		}
		return nil
	})
}

// renderPages discovers, renders and writes every markdown page, and
// copies non-markdown assets alongside.
func (b *Builder) renderPages(pipeline *markdown.Pipeline, docsDir string, report *Report) ([]plugin.RenderedPage, error) {
	pages, err := DiscoverPages(docsDir)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no markdown pages found under %s", docsDir)
	}

	// Titles come from the first heading so nav resolution can use them.
	bodies := make(map[string][]byte, len(pages))
	for _, p := range pages {
		body, err := os.ReadFile(filepath.Join(docsDir, filepath.FromSlash(p.SourcePath)))
		if err != nil {
			return nil, fmt.Errorf("read page %s: %w", p.SourcePath, err)
		}
		bodies[p.SourcePath] = body
		p.Title = pipeline.Title(body)
		if p.Title == "" {
			p.Title = TitleFromPath(p.SourcePath)
		}
	}

	nav, missing := ResolveNav(b.cfg.Nav, pages)
	for _, m := range missing {
		warn := fmt.Sprintf("nav references %s which was not found under %s", m, b.cfg.DocsDir)
		report.Warnings = append(report.Warnings, warn)
		slog.Warn("Nav entry has no matching page", "path", m)
	}

	layout, err := newLayout()
	if err != nil {
		return nil, err
	}
	theme := themeFor(b.cfg.Theme)

	rendered := make([]plugin.RenderedPage, 0, len(pages))
	for _, p := range pages {
		html, err := pipeline.RenderPage(bodies[p.SourcePath], pageLinkResolver(p.SourcePath))
		if err != nil {
			return nil, fmt.Errorf("render page %s: %w", p.SourcePath, err)
		}

		full, err := renderLayout(layout, layoutData{
			SiteName:        b.cfg.SiteName,
			SiteDescription: b.cfg.SiteDescription,
			PageTitle:       p.Title,
			Content:         contentHTML(html),
			Nav:             nav,
			RepoURL:         b.cfg.RepoURL,
			BodyClass:       theme.BodyClass,
			PrimaryHex:      b.cfg.Theme.Palette.PrimaryHex(),
			AccentHex:       b.cfg.Theme.Palette.AccentHex(),
			RootPrefix:      rootPrefix(p.OutputPath),
			LiveReload:      b.liveReload,
		})
		if err != nil {
			return nil, fmt.Errorf("layout page %s: %w", p.SourcePath, err)
		}

		outPath := filepath.Join(b.stageDir, filepath.FromSlash(p.OutputPath))
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(outPath, full, 0o644); err != nil {
			return nil, fmt.Errorf("write page %s: %w", p.OutputPath, err)
		}

		rendered = append(rendered, plugin.RenderedPage{
			Title:      p.Title,
			SourcePath: p.SourcePath,
			URL:        p.URL,
			OutputPath: p.OutputPath,
			HTML:       full,
		})
	}

	if err := b.copyAssets(docsDir); err != nil {
		return nil, err
	}
	if err := writeStylesheet(b.stageDir, theme.Stylesheet); err != nil {
		return nil, err
	}
	return rendered, nil
}

// stage runs fn and records its duration and result under the given name.
func (b *Builder) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	b.recorder.ObserveStageDuration(name, time.Since(start))
	if err != nil {
		b.recorder.IncStageResult(name, metrics.ResultFailed)
		return err
	}
	b.recorder.IncStageResult(name, metrics.ResultSuccess)
	return nil
}

func (b *Builder) appendEvent(ctx context.Context, buildID, eventType string, payload any) {
	if b.events == nil {
		return
	}
	if err := eventstore.AppendJSON(ctx, b.events, buildID, eventType, payload); err != nil {
		slog.Warn("Failed to record build event", "type", eventType, "error", err)
	}
}

// rootPrefix returns the ../ chain from a rendered page back to the site root.
func rootPrefix(outputPath string) string {
	depth := strings.Count(outputPath, "/")
	return strings.Repeat("../", depth)
}
