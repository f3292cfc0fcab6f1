package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsmith/mksite/internal/config"
)

// initRepo creates a local git repository with a docs/ page to clone from.
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "index.md"), []byte("# Remote\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("docs")
	require.NoError(t, err)
	_, err = wt.Commit("add docs", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com"},
	})
	require.NoError(t, err)
	return dir
}

func TestFetchLocalRepository(t *testing.T) {
	remote := initRepo(t)
	f := NewFetcher(t.TempDir())

	docsPath, err := f.Fetch(context.Background(), config.Source{
		URL:  remote,
		Name: "remote-docs",
		Path: "docs",
	})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(docsPath, "index.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Remote\n", string(content))
}

func TestFetchMissingDocsSubdir(t *testing.T) {
	remote := initRepo(t)
	f := NewFetcher(t.TempDir())

	_, err := f.Fetch(context.Background(), config.Source{
		URL:  remote,
		Name: "remote-docs",
		Path: "documentation",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "documentation")
}

func TestAuthMethodMapping(t *testing.T) {
	auth, err := authMethod(&config.AuthConfig{Type: "token", Token: "secret"})
	require.NoError(t, err)
	basic, ok := auth.(*githttp.BasicAuth)
	require.True(t, ok)
	assert.Equal(t, "token", basic.Username)
	assert.Equal(t, "secret", basic.Password)

	auth, err = authMethod(&config.AuthConfig{Type: "basic", Username: "u", Password: "p"})
	require.NoError(t, err)
	basic, ok = auth.(*githttp.BasicAuth)
	require.True(t, ok)
	assert.Equal(t, "u", basic.Username)

	_, err = authMethod(&config.AuthConfig{Type: "token"})
	require.Error(t, err)

	_, err = authMethod(&config.AuthConfig{Type: "basic", Username: "u"})
	require.Error(t, err)

	_, err = authMethod(&config.AuthConfig{Type: "kerberos"})
	require.Error(t, err)
}
