package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	repo2pdf "github.com/alnah/go-repo2pdf"
	"github.com/alnah/go-repo2pdf/internal/config"
	"github.com/alnah/go-repo2pdf/internal/gitrepo"
	"github.com/alnah/go-repo2pdf/internal/process"
)

// repoSyncer brings a repository into the workspace and returns its path.
type repoSyncer interface {
	Sync(ctx context.Context, repo config.RepositoryConfig) (string, error)
}

var _ repoSyncer = (*gitrepo.Client)(nil)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, external commands and repository access.
type Environment struct {
	Now      func() time.Time
	Stdout   io.Writer
	Stderr   io.Writer
	Runner   repo2pdf.CommandRunner
	LookPath func(name string) bool
	Syncer   func(workspace string, logger *slog.Logger, progress io.Writer) repoSyncer
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:      time.Now,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Runner:   &process.ExecRunner{},
		LookPath: process.Available,
		Syncer: func(workspace string, logger *slog.Logger, progress io.Writer) repoSyncer {
			return gitrepo.NewClient(workspace, gitrepo.WithLogger(logger), gitrepo.WithProgress(progress))
		},
	}
}
