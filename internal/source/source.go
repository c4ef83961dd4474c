// Package source syncs the documentation source directory from a Git
// repository before conversion. Reading individual files stays with the
// converter; this package only makes sure the checkout exists and is
// current.
package source

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	apperr "github.com/openstack-archive/rst2bash/internal/errors"
	"github.com/openstack-archive/rst2bash/internal/logfields"
)

// Syncer clones or updates the documentation repository into a local
// directory.
type Syncer struct {
	dir string
}

// NewSyncer creates a syncer targeting the given checkout directory.
func NewSyncer(dir string) *Syncer { return &Syncer{dir: dir} }

// Sync makes sure dir holds a current checkout of the given repository
// branch: a clone when the directory has no repository yet, a pull
// otherwise.
func (s *Syncer) Sync(repoURL, branch string) error {
	if _, err := os.Stat(filepath.Join(s.dir, ".git")); err != nil {
		return s.clone(repoURL, branch)
	}
	return s.pull(repoURL, branch)
}

func (s *Syncer) clone(repoURL, branch string) error {
	slog.Info("Cloning documentation source", slog.String("url", repoURL), slog.String("branch", branch), logfields.Path(s.dir))

	opts := &git.CloneOptions{URL: repoURL}
	if branch != "" {
		opts.ReferenceName = plumbing.ReferenceName("refs/heads/" + branch)
		opts.SingleBranch = true
	}
	repository, err := git.PlainClone(s.dir, false, opts)
	if err != nil {
		return apperr.SourceSyncError(repoURL, fmt.Errorf("clone: %w", err))
	}
	if ref, herr := repository.Head(); herr == nil {
		slog.Info("Source cloned", slog.String("commit", ref.Hash().String()[:8]), logfields.Path(s.dir))
	}
	return nil
}

func (s *Syncer) pull(repoURL, branch string) error {
	slog.Info("Updating documentation source", slog.String("url", repoURL), logfields.Path(s.dir))

	repository, err := git.PlainOpen(s.dir)
	if err != nil {
		return apperr.SourceSyncError(repoURL, fmt.Errorf("open repo: %w", err))
	}
	wt, err := repository.Worktree()
	if err != nil {
		return apperr.SourceSyncError(repoURL, fmt.Errorf("worktree: %w", err))
	}

	opts := &git.PullOptions{RemoteName: "origin"}
	if branch != "" {
		opts.ReferenceName = plumbing.ReferenceName("refs/heads/" + branch)
		opts.SingleBranch = true
	}
	if err := wt.Pull(opts); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return apperr.SourceSyncError(repoURL, fmt.Errorf("pull: %w", err))
	}

	if ref, herr := repository.Head(); herr == nil {
		slog.Info("Source updated", slog.String("commit", ref.Hash().String()[:8]), logfields.Path(s.dir))
	}
	return nil
}
