// Package source fetches remote git repositories that contribute
// documentation pages to a site.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/docsmith/mksite/internal/config"
)

// Fetcher clones configured docs sources into a workspace directory.
type Fetcher struct {
	workspaceDir string
}

// NewFetcher creates a fetcher rooted at workspaceDir.
func NewFetcher(workspaceDir string) *Fetcher {
	return &Fetcher{workspaceDir: workspaceDir}
}

// Fetch clones the source repository and returns the local path of its docs
// subdirectory. An existing checkout is removed first so every fetch sees the
// configured branch tip.
func (f *Fetcher) Fetch(ctx context.Context, src config.Source) (string, error) {
	repoPath := filepath.Join(f.workspaceDir, src.Name)
	if err := os.RemoveAll(repoPath); err != nil {
		return "", fmt.Errorf("remove existing checkout: %w", err)
	}

	opts := &git.CloneOptions{
		URL:          src.URL,
		Depth:        1,
		SingleBranch: true,
	}
	if src.Branch != "" {
		opts.ReferenceName = plumbing.ReferenceName("refs/heads/" + src.Branch)
	}
	if src.Auth != nil {
		auth, err := authMethod(src.Auth)
		if err != nil {
			return "", fmt.Errorf("source %s auth: %w", src.Name, err)
		}
		opts.Auth = auth
	}

	slog.Debug("Cloning docs source", "url", src.URL, "name", src.Name, "branch", src.Branch)
	if _, err := git.PlainCloneContext(ctx, repoPath, false, opts); err != nil {
		return "", fmt.Errorf("clone %s: %w", src.URL, err)
	}

	docsPath := filepath.Join(repoPath, filepath.FromSlash(src.Path))
	if _, err := os.Stat(docsPath); err != nil {
		return "", fmt.Errorf("source %s has no %s directory: %w", src.Name, src.Path, err)
	}
	return docsPath, nil
}

// authMethod maps an auth config onto a go-git transport method.
func authMethod(a *config.AuthConfig) (transport.AuthMethod, error) {
	switch a.Type {
	case "token":
		if a.Token == "" {
			return nil, fmt.Errorf("token authentication requires a token")
		}
		// Git hosting services accept "token" as the username for token auth.
		return &githttp.BasicAuth{Username: "token", Password: a.Token}, nil
	case "basic":
		if a.Username == "" || a.Password == "" {
			return nil, fmt.Errorf("basic authentication requires username and password")
		}
		return &githttp.BasicAuth{Username: a.Username, Password: a.Password}, nil
	case "ssh":
		keyPath := a.KeyPath
		if keyPath == "" {
			keyPath = filepath.Join(os.Getenv("HOME"), ".ssh", "id_rsa")
		}
		keys, err := gitssh.NewPublicKeysFromFile("git", keyPath, "")
		if err != nil {
			return nil, fmt.Errorf("load SSH key from %s: %w", keyPath, err)
		}
		return keys, nil
	default:
		return nil, fmt.Errorf("unsupported auth type: %s", a.Type)
	}
}
