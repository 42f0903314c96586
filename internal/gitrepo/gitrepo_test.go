package gitrepo

// Notes:
// - Remotes are local bare repositories seeded through a second working
//   copy, so no network is involved. Depth stays 0 because the local
//   transport does not negotiate shallow history.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-repo2pdf/internal/config"
)

type remoteFixture struct {
	bare   string
	seed   *git.Repository
	seedAt string
	branch string
}

func newRemote(t *testing.T) *remoteFixture {
	t.Helper()
	tmp := t.TempDir()
	bare := filepath.Join(tmp, "remote.git")
	_, err := git.PlainInit(bare, true)
	require.NoError(t, err)

	seedAt := filepath.Join(tmp, "seed")
	seed, err := git.PlainInit(seedAt, false)
	require.NoError(t, err)
	_, err = seed.CreateRemote(&gitcfg.RemoteConfig{Name: "origin", URLs: []string{bare}})
	require.NoError(t, err)

	f := &remoteFixture{bare: bare, seed: seed, seedAt: seedAt}
	f.commit(t, "a.txt", "first", "add a.txt\n\nwith a body")
	head, err := seed.Head()
	require.NoError(t, err)
	f.branch = head.Name().Short()
	return f
}

func (f *remoteFixture) commit(t *testing.T, name, content, msg string) plumbing.Hash {
	t.Helper()
	wt, err := f.seed.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(f.seedAt, name), []byte(content), 0o600))
	_, err = wt.Add(name)
	require.NoError(t, err)
	h, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "t@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	require.NoError(t, f.seed.Push(&git.PushOptions{RemoteName: "origin"}))
	return h
}

func (f *remoteFixture) repo() config.RepositoryConfig {
	return config.RepositoryConfig{URL: f.bare, Branch: f.branch}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// ---------------------------------------------------------------------------
// TestSync - Clone, update and recovery
// ---------------------------------------------------------------------------

func TestSync_CloneThenUpdate(t *testing.T) {
	t.Parallel()

	remote := newRemote(t)
	client := NewClient(filepath.Join(t.TempDir(), "ws"))

	path, err := client.Sync(context.Background(), remote.repo())
	require.NoError(t, err)
	assert.Equal(t, client.Path(remote.bare), path)
	assert.Equal(t, "remote", filepath.Base(path))
	assert.Equal(t, "first", readFile(t, filepath.Join(path, "a.txt")))

	// Local edits and untracked files are discarded on update.
	require.NoError(t, os.WriteFile(filepath.Join(path, "a.txt"), []byte("edited"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(path, "junk.txt"), []byte("junk"), 0o600))
	want := remote.commit(t, "b.txt", "second", "add b.txt")

	again, err := client.Sync(context.Background(), remote.repo())
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.Equal(t, "first", readFile(t, filepath.Join(path, "a.txt")))
	assert.Equal(t, "second", readFile(t, filepath.Join(path, "b.txt")))
	assert.NoFileExists(t, filepath.Join(path, "junk.txt"))

	info, err := CommitInfo(path)
	require.NoError(t, err)
	assert.Equal(t, want.String(), info.Hash)
}

func TestSync_ReplacesDirectoryWithoutGit(t *testing.T) {
	t.Parallel()

	remote := newRemote(t)
	client := NewClient(t.TempDir())
	stale := client.Path(remote.bare)
	require.NoError(t, os.MkdirAll(stale, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(stale, "leftover"), []byte("x"), 0o600))

	path, err := client.Sync(context.Background(), remote.repo())
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(path, "leftover"))
	assert.FileExists(t, filepath.Join(path, "a.txt"))
}

func TestSync_Failures(t *testing.T) {
	t.Parallel()

	remote := newRemote(t)

	t.Run("missing branch", func(t *testing.T) {
		t.Parallel()
		client := NewClient(t.TempDir())
		repo := remote.repo()
		repo.Branch = "does-not-exist"

		_, err := client.Sync(context.Background(), repo)
		var notFound *NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "clone", notFound.Op)
		assert.NoDirExists(t, client.Path(remote.bare), "failed clone leaves nothing behind")
	})

	t.Run("missing repository", func(t *testing.T) {
		t.Parallel()
		client := NewClient(t.TempDir())
		repo := config.RepositoryConfig{URL: filepath.Join(t.TempDir(), "nowhere.git"), Branch: "main"}

		_, err := client.Sync(context.Background(), repo)
		require.Error(t, err)
		assert.True(t, IsAccessError(err), "got %v", err)
	})

	t.Run("invalid auth", func(t *testing.T) {
		t.Parallel()
		client := NewClient(t.TempDir())
		repo := remote.repo()
		repo.Auth = config.AuthConfig{Type: AuthToken}

		_, err := client.Sync(context.Background(), repo)
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.ErrorIs(t, err, ErrInvalidAuth)
	})
}

// ---------------------------------------------------------------------------
// TestCommitInfo - HEAD metadata
// ---------------------------------------------------------------------------

func TestCommitInfo(t *testing.T) {
	t.Parallel()

	remote := newRemote(t)
	info, err := CommitInfo(remote.seedAt)
	require.NoError(t, err)

	assert.Equal(t, "add a.txt", info.Subject)
	assert.Equal(t, "tester", info.Author)
	assert.Equal(t, "t@example.com", info.Email)
	assert.Len(t, info.Hash, 40)
	assert.Equal(t, info.Hash[:8], info.Short())
	assert.False(t, info.Date.IsZero())

	_, err = CommitInfo(t.TempDir())
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// TestRepoName - Directory names from clone URLs
// ---------------------------------------------------------------------------

func TestRepoName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"https://github.com/user/project.git":  "project",
		"https://github.com/user/project":      "project",
		"https://github.com/user/project/":     "project",
		"git@github.com:user/project.git":      "project",
		"ssh://git@host:2222/team/project.git": "project",
		"/srv/git/local.git":                   "local",
		"":                                     "repository",
		"https://host/..":                      "repository",
	}
	for url, want := range tests {
		assert.Equal(t, want, RepoName(url), url)
	}
}

// ---------------------------------------------------------------------------
// TestClassify - Typed error mapping
// ---------------------------------------------------------------------------

func TestClassify(t *testing.T) {
	t.Parallel()

	const url = "https://example.com/r.git"
	tests := []struct {
		name   string
		err    error
		assert func(t *testing.T, err error)
	}{
		{"auth required", transport.ErrAuthenticationRequired, func(t *testing.T, err error) {
			var target *AuthError
			assert.ErrorAs(t, err, &target)
		}},
		{"auth message", errors.New("ssh: handshake failed: auth fail"), func(t *testing.T, err error) {
			var target *AuthError
			assert.ErrorAs(t, err, &target)
		}},
		{"not found", transport.ErrRepositoryNotFound, func(t *testing.T, err error) {
			var target *NotFoundError
			assert.ErrorAs(t, err, &target)
		}},
		{"scheme", errors.New(`unsupported scheme "ftp"`), func(t *testing.T, err error) {
			var target *UnsupportedProtocolError
			assert.ErrorAs(t, err, &target)
		}},
		{"deadline", context.DeadlineExceeded, func(t *testing.T, err error) {
			var target *NetworkTimeoutError
			assert.ErrorAs(t, err, &target)
			assert.ErrorIs(t, err, context.DeadlineExceeded)
		}},
		{"canceled passes through", context.Canceled, func(t *testing.T, err error) {
			assert.Equal(t, context.Canceled, err)
		}},
		{"other", errors.New("disk full"), func(t *testing.T, err error) {
			assert.False(t, IsAccessError(err))
			assert.EqualError(t, err, "clone "+url+": disk full")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.assert(t, classify("clone", url, tt.err))
		})
	}

	assert.NoError(t, classify("clone", url, nil))
}

// ---------------------------------------------------------------------------
// TestAuthMethod - Credential construction
// ---------------------------------------------------------------------------

func TestAuthMethod(t *testing.T) {
	t.Parallel()

	none, err := authMethod(config.AuthConfig{})
	require.NoError(t, err)
	assert.Nil(t, none)

	token, err := authMethod(config.AuthConfig{Type: AuthToken, Token: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, &http.BasicAuth{Username: "token", Password: "s3cret"}, token)

	named, err := authMethod(config.AuthConfig{Type: AuthToken, Username: "bot", Token: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, &http.BasicAuth{Username: "bot", Password: "s3cret"}, named)

	basic, err := authMethod(config.AuthConfig{Type: AuthBasic, Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, &http.BasicAuth{Username: "u", Password: "p"}, basic)

	invalid := []config.AuthConfig{
		{Type: AuthBasic, Username: "u"},
		{Type: AuthSSH, KeyPath: filepath.Join(t.TempDir(), "missing_key")},
		{Type: "kerberos"},
	}
	for _, a := range invalid {
		_, err := authMethod(a)
		assert.ErrorIs(t, err, ErrInvalidAuth, a.Type)
	}
}
