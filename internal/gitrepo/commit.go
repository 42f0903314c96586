package gitrepo

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
)

// Commit describes the checked-out HEAD commit.
type Commit struct {
	Hash    string
	Author  string
	Email   string
	Date    time.Time
	Subject string
}

// Short returns the abbreviated hash.
func (c *Commit) Short() string {
	if len(c.Hash) < 8 {
		return c.Hash
	}
	return c.Hash[:8]
}

// CommitInfo reads the HEAD commit of the working copy at path.
func CommitInfo(path string) (*Commit, error) {
	r, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	head, err := r.Head()
	if err != nil {
		return nil, fmt.Errorf("reading HEAD: %w", err)
	}
	obj, err := r.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("reading commit %s: %w", head.Hash(), err)
	}

	subject, _, _ := strings.Cut(strings.TrimSpace(obj.Message), "\n")
	return &Commit{
		Hash:    obj.Hash.String(),
		Author:  obj.Author.Name,
		Email:   obj.Author.Email,
		Date:    obj.Author.When,
		Subject: subject,
	}, nil
}
