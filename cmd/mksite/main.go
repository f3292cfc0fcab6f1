package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/docsmith/mksite/internal/config"
	"github.com/docsmith/mksite/internal/eventstore"
	"github.com/docsmith/mksite/internal/linkcheck"
	"github.com/docsmith/mksite/internal/markdown"
	"github.com/docsmith/mksite/internal/metrics"
	"github.com/docsmith/mksite/internal/preview"
	"github.com/docsmith/mksite/internal/site"
	"github.com/docsmith/mksite/internal/validate"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"mksite.yml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Write an example configuration file"`

	Check struct{} `cmd:"" help:"Validate the configuration against the docs tree"`

	Build struct {
		CheckLinks bool   `help:"Verify links in the rendered site after building"`
		EventsDB   string `help:"SQLite database recording build events (empty disables)"`
	} `cmd:"" help:"Build the documentation site"`

	Serve struct {
		Addr     string `help:"Listen address (overrides serve.addr)"`
		EventsDB string `help:"SQLite database recording build events (empty disables)"`
	} `cmd:"" help:"Build and serve the site with rebuild-on-change"`

	Nav struct{} `cmd:"" help:"Print the resolved navigation tree"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	var err error
	switch ctx.Command() {
	case "init":
		err = runInit()
	case "check":
		err = runCheck()
	case "build":
		err = runBuild()
	case "serve":
		err = runServe()
	case "nav":
		err = runNav()
	}
	if err != nil {
		slog.Error("Command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}

func runInit() error {
	if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", CLI.Config)
	return nil
}

func runCheck() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	result := validate.Check(cfg, cfg.BaseDir())
	for _, issue := range result.Issues {
		fmt.Println(issue.String())
	}
	fmt.Printf("%d error(s), %d warning(s)\n", result.ErrorCount(), result.WarningCount())
	if result.HasErrors() {
		os.Exit(1)
	}
	return nil
}

func runBuild() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	var opts []site.Option
	store, err := openEventStore(CLI.Build.EventsDB)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		opts = append(opts, site.WithEventStore(store))
	}

	builder := site.NewBuilder(cfg, opts...)
	report, err := builder.Build(context.Background(), "cli")
	if err != nil {
		return err
	}
	fmt.Printf("Built %d page(s) into %s (build %s)\n", report.Pages, report.OutputDir, report.BuildID)
	for _, warn := range report.Warnings {
		fmt.Printf("warning: %s\n", warn)
	}

	if CLI.Build.CheckLinks {
		return runLinkCheck(cfg)
	}
	return nil
}

func runLinkCheck(cfg *config.Config) error {
	checker, err := linkcheck.NewChecker(cfg.LinkCheck, cfg.SitePath())
	if err != nil {
		return err
	}
	defer checker.Close()

	report, err := checker.Run(context.Background(), cfg.SiteURL)
	if err != nil {
		return err
	}
	for _, broken := range report.Broken {
		fmt.Printf("broken link: %s\n", broken.String())
	}
	fmt.Printf("Checked %d link(s), %d broken, %d skipped\n",
		report.Checked, len(report.Broken), report.Skipped)
	if len(report.Broken) > 0 {
		os.Exit(1)
	}
	return nil
}

func runServe() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if CLI.Serve.Addr != "" {
		cfg.Serve.Addr = CLI.Serve.Addr
	}

	recorder := metrics.NewPrometheusRecorder(nil)
	opts := []site.Option{
		site.WithRecorder(recorder),
		site.WithLiveReload(cfg.Serve.LiveReloadEnabled()),
	}

	store, err := openEventStore(CLI.Serve.EventsDB)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		opts = append(opts, site.WithEventStore(store))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	builder := site.NewBuilder(cfg, opts...)
	return preview.NewServer(cfg, builder, recorder).Run(ctx)
}

func runNav() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	pages, err := site.DiscoverPages(cfg.DocsPath())
	if err != nil {
		return err
	}

	pipeline, _ := markdown.NewPipelineLenient(cfg.MarkdownExtensions)
	for _, p := range pages {
		body, err := os.ReadFile(filepath.Join(cfg.DocsPath(), filepath.FromSlash(p.SourcePath)))
		if err == nil {
			p.Title = pipeline.Title(body)
		}
		if p.Title == "" {
			p.Title = site.TitleFromPath(p.SourcePath)
		}
	}

	nodes, missing := site.ResolveNav(cfg.Nav, pages)
	printNav(os.Stdout, nodes, 0)
	for _, m := range missing {
		fmt.Printf("warning: nav references missing page %s\n", m)
	}
	return nil
}

func printNav(w io.Writer, nodes []*site.NavNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, node := range nodes {
		if node.IsSection() {
			fmt.Fprintf(w, "%s%s/\n", indent, node.Title)
			printNav(w, node.Children, depth+1)
			continue
		}
		fmt.Fprintf(w, "%s%s (%s)\n", indent, node.Title, node.Page.SourcePath)
	}
}

func openEventStore(path string) (eventstore.Store, error) {
	if path == "" {
		return nil, nil
	}
	store, err := eventstore.NewSQLiteStore(path)
	if err != nil {
		return nil, fmt.Errorf("open event store: %w", err)
	}
	return store, nil
}
