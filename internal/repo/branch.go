package repo

import (
	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/errors"
)

// Branches returns every branch name, sorted.
func (r *Repository) Branches() ([]string, error) {
	return r.store.Refs.List()
}

// CreateBranch points a new branch at the active branch's head commit.
func (r *Repository) CreateBranch(name string) error {
	if r.store.Refs.Has(name) {
		return errors.New(errors.ErrBranchAlreadyExists, name, "A branch with that name already exists.")
	}
	_, headID, _, err := r.Head()
	if err != nil {
		return err
	}
	if err := r.store.Refs.Set(name, headID); err != nil {
		return err
	}
	r.log.Debug().Str("branch", name).Str("commit", headID.Short(12)).Msg("created branch")
	return nil
}

// RemoveBranch deletes a branch pointer. Its commits are kept.
func (r *Repository) RemoveBranch(name string) error {
	if !r.store.Refs.Has(name) {
		return errors.New(errors.ErrBranchNotFound, name, "A branch with that name does not exist.")
	}
	active, err := r.ActiveBranch()
	if err != nil {
		return err
	}
	if name == active {
		return errors.New(errors.ErrCannotRemoveActiveBranch, name, "Cannot remove the current branch.")
	}
	return r.store.Refs.Delete(name)
}

// CheckoutFile restores path from the head commit.
func (r *Repository) CheckoutFile(path string) error {
	_, headID, _, err := r.Head()
	if err != nil {
		return err
	}
	return r.CheckoutCommitFile(string(headID), path)
}

// CheckoutCommitFile restores path from the commit named by commitID (full
// or abbreviated). The staging area is untouched.
func (r *Repository) CheckoutCommitFile(commitID, path string) error {
	_, c, err := r.Resolve(commitID)
	if err != nil {
		return err
	}
	p, err := r.work.Normalize(path)
	if err != nil {
		return errors.New(errors.ErrFileNotInCommit, path, "File does not exist in that commit.")
	}
	blob, ok := c.Blob(p)
	if !ok {
		return errors.New(errors.ErrFileNotInCommit, p, "File does not exist in that commit.")
	}
	data, err := r.store.Blobs.Get(blob)
	if err != nil {
		return err
	}
	return r.work.Write(p, data)
}

// CheckoutBranch replaces the working files with the named branch's head
// snapshot and makes it the active branch.
func (r *Repository) CheckoutBranch(name string) error {
	id, err := r.store.Refs.Get(name)
	if err != nil {
		return err
	}
	active, err := r.ActiveBranch()
	if err != nil {
		return err
	}
	if name == active {
		return errors.New(errors.ErrAlreadyOnBranch, name, "No need to checkout the current branch.")
	}
	target, err := r.store.Commits.Get(id)
	if err != nil {
		return err
	}
	if err := r.replaceWorktree(id, target); err != nil {
		return err
	}
	if err := r.store.Refs.SetHead(name); err != nil {
		return err
	}
	r.log.Info().Str("branch", name).Str("commit", id.Short(12)).Msg("checked out")
	return nil
}

// Reset replaces the working files with the given commit's snapshot and
// moves the active branch to it.
func (r *Repository) Reset(commitID string) error {
	id, target, err := r.Resolve(commitID)
	if err != nil {
		return err
	}
	return r.resetTo(id, target)
}

func (r *Repository) resetTo(id dag.ID, target *dag.Commit) error {
	branch, err := r.ActiveBranch()
	if err != nil {
		return err
	}
	if err := r.replaceWorktree(id, target); err != nil {
		return err
	}
	if err := r.store.Refs.Set(branch, id); err != nil {
		return err
	}
	r.log.Info().Str("branch", branch).Str("commit", id.Short(12)).Msg("reset")
	return nil
}

// untrackedInTheWay reports the first working file that the stage does not
// track and that writes would overwrite.
func (r *Repository) untrackedInTheWay(s *stage, writes map[string]struct{}) error {
	files, err := r.work.List()
	if err != nil {
		return err
	}
	for _, p := range files {
		if s.tracks(p) {
			continue
		}
		if _, ok := writes[p]; ok {
			return errors.New(errors.ErrUntrackedFileConflict, p,
				"There is an untracked file in the way; delete it, or add and commit it first.")
		}
	}
	return nil
}

// replaceWorktree swaps the tracked working files for target's snapshot and
// makes that snapshot the staging baseline. Nothing is modified when an
// untracked file would be overwritten.
func (r *Repository) replaceWorktree(id dag.ID, target *dag.Commit) error {
	s, err := r.loadStage()
	if err != nil {
		return err
	}
	writes := make(map[string]struct{}, len(target.Files))
	for p := range target.Files {
		writes[p] = struct{}{}
	}
	if err := r.untrackedInTheWay(s, writes); err != nil {
		return err
	}

	// Read every blob first so a missing object fails before any file changes.
	contents := make(map[string][]byte, len(target.Files))
	for p, id := range target.Files {
		data, err := r.store.Blobs.Get(id)
		if err != nil {
			return err
		}
		contents[p] = data
	}

	for p := range s.snapshot {
		if _, keep := target.Files[p]; keep {
			continue
		}
		if err := r.work.Remove(p); err != nil {
			return err
		}
	}
	for _, p := range target.Paths() {
		if err := r.work.Write(p, contents[p]); err != nil {
			return err
		}
	}
	return r.resetStage(id, target.Files)
}
