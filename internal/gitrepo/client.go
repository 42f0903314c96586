package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/alnah/go-repo2pdf/internal/config"
	"github.com/alnah/go-repo2pdf/internal/logfields"
)

// DefaultBranch is used when the repository config names none.
const DefaultBranch = "main"

// Client syncs repositories below a workspace directory.
type Client struct {
	workspace string
	logger    *slog.Logger
	progress  io.Writer
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithProgress streams go-git's transfer progress to w.
func WithProgress(w io.Writer) Option {
	return func(c *Client) { c.progress = w }
}

// NewClient creates a Client storing working copies under workspace.
func NewClient(workspace string, opts ...Option) *Client {
	c := &Client{workspace: workspace, logger: logfields.Discard()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns where the working copy of url lives.
func (c *Client) Path(url string) string {
	return filepath.Join(c.workspace, RepoName(url))
}

// Sync clones repo if no working copy exists, otherwise fetches and hard
// resets it to the remote branch. It returns the working copy path.
func (c *Client) Sync(ctx context.Context, repo config.RepositoryConfig) (string, error) {
	if repo.Branch == "" {
		repo.Branch = DefaultBranch
	}
	auth, err := authMethod(repo.Auth)
	if err != nil {
		return "", classify("auth", repo.URL, err)
	}

	path := c.Path(repo.URL)
	if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
		err = c.update(ctx, path, repo, auth)
		if err == nil {
			return path, nil
		}
		if ctx.Err() != nil || IsAccessError(err) {
			return "", err
		}
		c.logger.Warn("update failed, recloning", logfields.Path(path), logfields.Error(err))
	}
	return path, c.clone(ctx, path, repo, auth)
}

func (c *Client) clone(ctx context.Context, path string, repo config.RepositoryConfig, auth transport.AuthMethod) error {
	c.logger.Info("cloning repository", logfields.URL(repo.URL), logfields.Branch(repo.Branch), logfields.Path(path))
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("removing stale working copy: %w", err)
	}
	if err := os.MkdirAll(c.workspace, 0o750); err != nil {
		return fmt.Errorf("creating workspace: %w", err)
	}

	opts := &git.CloneOptions{
		URL:           repo.URL,
		ReferenceName: plumbing.NewBranchReferenceName(repo.Branch),
		SingleBranch:  true,
		Depth:         repo.Depth,
		Tags:          git.NoTags,
		Auth:          auth,
		Progress:      c.progress,
	}

	start := time.Now()
	r, err := git.PlainCloneContext(ctx, path, false, opts)
	if err != nil {
		_ = os.RemoveAll(path)
		return classify("clone", repo.URL, err)
	}
	c.logReady(r, repo, "clone", time.Since(start))
	return nil
}

func (c *Client) update(ctx context.Context, path string, repo config.RepositoryConfig, auth transport.AuthMethod) error {
	c.logger.Info("updating repository", logfields.URL(repo.URL), logfields.Branch(repo.Branch), logfields.Path(path))
	start := time.Now()

	r, err := git.PlainOpen(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}

	spec := gitcfg.RefSpec(fmt.Sprintf("+refs/heads/%[1]s:refs/remotes/origin/%[1]s", repo.Branch))
	err = r.FetchContext(ctx, &git.FetchOptions{
		RemoteName: "origin",
		RefSpecs:   []gitcfg.RefSpec{spec},
		Depth:      repo.Depth,
		Tags:       git.NoTags,
		Force:      true,
		Auth:       auth,
		Progress:   c.progress,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return classify("fetch", repo.URL, err)
	}

	remote, err := r.Reference(plumbing.NewRemoteReferenceName("origin", repo.Branch), true)
	if err != nil {
		return classify("fetch", repo.URL, fmt.Errorf("remote branch %s: %w", repo.Branch, err))
	}

	wt, err := r.Worktree()
	if err != nil {
		return fmt.Errorf("worktree: %w", err)
	}
	local := plumbing.NewBranchReferenceName(repo.Branch)
	checkout := &git.CheckoutOptions{Branch: local, Force: true}
	if _, err := r.Reference(local, false); err != nil {
		checkout.Create = true
		checkout.Hash = remote.Hash()
	}
	if err := wt.Checkout(checkout); err != nil {
		return fmt.Errorf("checkout %s: %w", repo.Branch, err)
	}
	if err := wt.Reset(&git.ResetOptions{Commit: remote.Hash(), Mode: git.HardReset}); err != nil {
		return fmt.Errorf("hard reset: %w", err)
	}
	if err := wt.Clean(&git.CleanOptions{Dir: true}); err != nil {
		c.logger.Warn("clean untracked failed", logfields.Path(path), logfields.Error(err))
	}

	c.logReady(r, repo, "update", time.Since(start))
	return nil
}

func (c *Client) logReady(r *git.Repository, repo config.RepositoryConfig, op string, d time.Duration) {
	attrs := []any{logfields.URL(repo.URL), logfields.Branch(repo.Branch), logfields.Stage(op), logfields.Duration(d)}
	if head, err := r.Head(); err == nil {
		attrs = append(attrs, logfields.Commit(head.Hash().String()[:8]))
	}
	c.logger.Info("repository ready", attrs...)
}

// RepoName derives the working copy directory name from a clone URL:
// the last path segment without a ".git" suffix.
func RepoName(url string) string {
	name := strings.TrimRight(strings.TrimSpace(url), "/")
	name = strings.TrimSuffix(name, ".git")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name == "." || name == ".." {
		return "repository"
	}
	return name
}
