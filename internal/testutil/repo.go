// Package testutil provides test helpers for clog tests.
package testutil

import (
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// GitRepo is a throwaway repository in t.TempDir(). Commits are empty and
// carry increasing timestamps so history order is stable.
type GitRepo struct {
	t    *testing.T
	Dir  string
	Repo *git.Repository
	n    int
}

// NewGitRepo initializes an empty non-bare repository.
func NewGitRepo(t *testing.T) *GitRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return &GitRepo{t: t, Dir: dir, Repo: repo}
}

func (r *GitRepo) signature() *object.Signature {
	r.n++
	return &object.Signature{
		Name:  "Test User",
		Email: "test@test.com",
		When:  time.Date(2026, 1, 1, 0, r.n, 0, 0, time.UTC),
	}
}

// Commit records an empty commit on HEAD. Parents override the default
// single parent, e.g. to build merges.
func (r *GitRepo) Commit(msg string, parents ...plumbing.Hash) plumbing.Hash {
	r.t.Helper()
	wt, err := r.Repo.Worktree()
	require.NoError(r.t, err)
	h, err := wt.Commit(msg, &git.CommitOptions{
		Author:            r.signature(),
		AllowEmptyCommits: true,
		Parents:           parents,
	})
	require.NoError(r.t, err)
	return h
}

// Tag creates a lightweight tag, or an annotated one when annotated is set.
func (r *GitRepo) Tag(name string, h plumbing.Hash, annotated bool) {
	r.t.Helper()
	var opts *git.CreateTagOptions
	if annotated {
		opts = &git.CreateTagOptions{Tagger: r.signature(), Message: "release " + name}
	}
	_, err := r.Repo.CreateTag(name, h, opts)
	require.NoError(r.t, err)
}
