package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/docsmith/mksite/internal/config"
	"github.com/docsmith/mksite/internal/metrics"
	"github.com/docsmith/mksite/internal/plugin"
	"github.com/docsmith/mksite/internal/site"
)

// Server runs the local preview: it serves the rendered site, rebuilds on
// file changes and on an optional schedule, and pushes livereload events.
type Server struct {
	cfg      *config.Config
	builder  *site.Builder
	recorder metrics.Recorder
	hub      *LiveReloadHub

	mu       sync.Mutex
	building bool
	rerun    bool
}

// NewServer wires a preview server around a builder.
func NewServer(cfg *config.Config, builder *site.Builder, recorder metrics.Recorder) *Server {
	return &Server{
		cfg:      cfg,
		builder:  builder,
		recorder: recorder,
		hub:      NewLiveReloadHub(),
	}
}

// Run builds once, then serves until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	if _, err := s.builder.Build(ctx, "serve"); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	watcher, err := NewWatcher(func(string) { s.rebuild(ctx, "watch") })
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, path := range s.watchPaths() {
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}
	go watcher.Run(ctx)

	scheduler, err := s.startScheduler(ctx)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() {
			_ = scheduler.Shutdown()
		}()
	}

	httpServer := &http.Server{
		Addr:        s.cfg.Serve.Addr,
		Handler:     s.handler(),
		ReadTimeout: 10 * time.Second,
		// Write timeout stays off for long-lived SSE connections.
		IdleTimeout: 300 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Preview server listening", "addr", s.cfg.Serve.Addr, "site", s.cfg.SitePath())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.hub.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown preview server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// watchPaths collects the docs tree, the config file, plugin watch paths
// and any extra configured entries.
func (s *Server) watchPaths() []string {
	paths := []string{s.cfg.DocsPath()}
	if s.cfg.Path() != "" {
		paths = append(paths, s.cfg.Path())
	}
	if plugins, err := plugin.FromConfig(s.cfg.Plugins); err == nil {
		for _, p := range plugin.WatchPaths(plugins) {
			if !filepath.IsAbs(p) {
				p = filepath.Join(s.cfg.BaseDir(), p)
			}
			paths = append(paths, p)
		}
	}
	for _, p := range s.cfg.Serve.Watch {
		if !filepath.IsAbs(p) {
			p = filepath.Join(s.cfg.BaseDir(), p)
		}
		paths = append(paths, p)
	}
	return paths
}

// startScheduler sets up the periodic rebuild job when configured.
func (s *Server) startScheduler(ctx context.Context) (gocron.Scheduler, error) {
	interval, err := s.cfg.Serve.RebuildIntervalDuration()
	if err != nil {
		return nil, err
	}
	if interval == 0 {
		return nil, nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { s.rebuild(ctx, "schedule") }),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule periodic rebuild: %w", err)
	}
	scheduler.Start()
	slog.Info("Scheduled periodic rebuilds", "interval", interval)
	return scheduler, nil
}

// rebuild runs one build, coalescing triggers that arrive mid-build into
// a single follow-up run.
func (s *Server) rebuild(ctx context.Context, trigger string) {
	s.mu.Lock()
	if s.building {
		s.rerun = true
		s.mu.Unlock()
		return
	}
	s.building = true
	s.mu.Unlock()

	for {
		report, err := s.builder.Build(ctx, trigger)
		if err != nil {
			slog.Error("Rebuild failed, previous site still served", "trigger", trigger, "error", err)
		} else {
			s.hub.Broadcast(report.BuildID)
		}

		s.mu.Lock()
		if !s.rerun {
			s.building = false
			s.mu.Unlock()
			return
		}
		s.rerun = false
		s.mu.Unlock()
	}
}

func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if prom, ok := s.recorder.(*metrics.PrometheusRecorder); ok {
		mux.Handle("/metrics", prom.Handler())
	}

	if s.cfg.Serve.LiveReloadEnabled() {
		mux.Handle("/livereload", s.hub)
		mux.HandleFunc("/livereload.js", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
			_, _ = w.Write([]byte(liveReloadScript))
		})
	}

	fileServer := http.FileServer(http.Dir(s.cfg.SitePath()))
	mux.Handle("/", noCache(fileServer))
	return mux
}

// noCache keeps browsers from holding on to pages between rebuilds.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		next.ServeHTTP(w, r)
	})
}
