package linkcheck

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/docsmith/mksite/internal/config"
	"github.com/docsmith/mksite/internal/metrics"
)

// BrokenLink describes one failed link check.
type BrokenLink struct {
	URL    string // resolved target
	Page   string // site-relative page the link appeared on
	Status int    // HTTP status for external links, 0 otherwise
	Reason string
}

func (b BrokenLink) String() string {
	if b.Status != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", b.Page, b.URL, b.Status)
	}
	return fmt.Sprintf("%s: %s (%s)", b.Page, b.URL, b.Reason)
}

// Report summarizes a check over a built site.
type Report struct {
	Checked int
	Skipped int
	Broken  []BrokenLink
}

// Checker verifies links in a rendered site tree. Internal links are
// resolved against files on disk; external links are verified over
// HTTP when enabled.
type Checker struct {
	cfg        config.LinkCheckConfig
	siteDir    string
	httpClient *http.Client
	cache      resultCache
	recorder   metrics.Recorder
	sem        chan struct{}
}

// Option configures a Checker.
type Option func(*Checker)

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Checker) { c.recorder = r }
}

// NewChecker builds a checker for a rendered site directory.
func NewChecker(cfg config.LinkCheckConfig, siteDir string, opts ...Option) (*Checker, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, fmt.Errorf("link check timeout: %w", err)
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}

	c := &Checker{
		cfg:     cfg,
		siteDir: siteDir,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache:    noopCache{},
		recorder: metrics.NoopRecorder{},
		sem:      make(chan struct{}, concurrency),
	}
	for _, opt := range opts {
		opt(c)
	}

	if cfg.External && cfg.Cache != nil {
		cache, err := newNATSCache(cfg.Cache)
		if err != nil {
			slog.Warn("Link result cache unavailable, continuing without it", "error", err)
		} else {
			c.cache = cache
		}
	}
	return c, nil
}

// Close releases the result cache connection if one was opened.
func (c *Checker) Close() error {
	return c.cache.Close()
}

// Run walks every HTML file under the site directory and verifies the
// links it contains.
func (c *Checker) Run(ctx context.Context, baseURL string) (*Report, error) {
	report := &Report{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	err := filepath.WalkDir(c.siteDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, err := filepath.Rel(c.siteDir, path)
		if err != nil {
			return err
		}

		links, err := ExtractLinks(path, baseURL)
		if err != nil {
			slog.Warn("Skipping unparseable page", "page", rel, "error", err)
			return nil
		}

		for _, link := range links {
			if !ShouldCheck(link) {
				mu.Lock()
				report.Skipped++
				mu.Unlock()
				c.recorder.IncLinkCheckResult("skipped")
				continue
			}

			if link.IsInternal {
				mu.Lock()
				report.Checked++
				if broken := c.checkInternal(link, rel); broken != nil {
					report.Broken = append(report.Broken, *broken)
					c.recorder.IncLinkCheckResult("broken")
				} else {
					c.recorder.IncLinkCheckResult("ok")
				}
				mu.Unlock()
				continue
			}

			if !c.cfg.External {
				mu.Lock()
				report.Skipped++
				mu.Unlock()
				c.recorder.IncLinkCheckResult("skipped")
				continue
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case c.sem <- struct{}{}:
			}
			wg.Add(1)
			go func(link *Link, page string) {
				defer wg.Done()
				defer func() { <-c.sem }()

				broken := c.checkExternal(ctx, link, page)
				mu.Lock()
				report.Checked++
				if broken != nil {
					report.Broken = append(report.Broken, *broken)
				}
				mu.Unlock()
				if broken != nil {
					c.recorder.IncLinkCheckResult("broken")
				} else {
					c.recorder.IncLinkCheckResult("ok")
				}
			}(link, rel)
		}
		return nil
	})

	wg.Wait()
	if err != nil {
		return nil, err
	}

	slog.Info("Link check completed",
		"checked", report.Checked,
		"skipped", report.Skipped,
		"broken", len(report.Broken))
	return report, nil
}

// checkInternal resolves a site-relative link against the rendered tree.
func (c *Checker) checkInternal(link *Link, page string) *BrokenLink {
	u, err := url.Parse(link.URL)
	if err != nil {
		return &BrokenLink{URL: link.URL, Page: page, Reason: "unparseable URL"}
	}

	target := u.Path
	if target == "" {
		return nil // pure fragment or query, already filtered
	}

	var resolved string
	if strings.HasPrefix(target, "/") {
		resolved = filepath.Join(c.siteDir, filepath.FromSlash(target))
	} else {
		resolved = filepath.Join(c.siteDir, filepath.Dir(filepath.FromSlash(page)), filepath.FromSlash(target))
	}

	info, err := os.Stat(resolved)
	if err == nil {
		if info.IsDir() {
			if _, err := os.Stat(filepath.Join(resolved, "index.html")); err != nil {
				return &BrokenLink{URL: link.URL, Page: page, Reason: "directory has no index.html"}
			}
		}
		return nil
	}

	// Pretty URLs: /guide/ may be rendered as guide/index.html or guide.html.
	if _, err := os.Stat(resolved + ".html"); err == nil {
		return nil
	}
	if _, err := os.Stat(filepath.Join(resolved, "index.html")); err == nil {
		return nil
	}

	return &BrokenLink{URL: link.URL, Page: page, Reason: "target not found in site output"}
}

// checkExternal verifies an external URL over HTTP, consulting the
// result cache first.
func (c *Checker) checkExternal(ctx context.Context, link *Link, page string) *BrokenLink {
	if cached, err := c.cache.Get(ctx, link.URL); err == nil && c.cache.Fresh(cached) {
		if cached.Valid {
			return nil
		}
		return &BrokenLink{URL: link.URL, Page: page, Status: cached.Status, Reason: cached.Error}
	}

	status, err := c.request(ctx, link.URL)

	entry := &CacheEntry{URL: link.URL, Status: status, Valid: err == nil}
	if err != nil {
		entry.Error = err.Error()
	}
	if cacheErr := c.cache.Put(ctx, entry); cacheErr != nil {
		slog.Debug("Failed to cache link result", "url", link.URL, "error", cacheErr)
	}

	if err != nil {
		return &BrokenLink{URL: link.URL, Page: page, Status: status, Reason: err.Error()}
	}
	return nil
}

func (c *Checker) request(ctx context.Context, linkURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, linkURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "mksite-linkcheck/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	// Some hosts reject HEAD; retry once with GET before failing.
	if resp.StatusCode == http.StatusMethodNotAllowed {
		return c.requestGet(ctx, linkURL)
	}

	if isAuthStatus(resp.StatusCode) {
		return resp.StatusCode, nil
	}
	if resp.StatusCode >= 400 {
		return resp.StatusCode, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return resp.StatusCode, nil
}

func (c *Checker) requestGet(ctx context.Context, linkURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, linkURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "mksite-linkcheck/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if isAuthStatus(resp.StatusCode) {
		return resp.StatusCode, nil
	}
	if resp.StatusCode >= 400 {
		return resp.StatusCode, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return resp.StatusCode, nil
}

// isAuthStatus reports status codes that mean the URL exists but
// requires credentials.
func isAuthStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return false
}
