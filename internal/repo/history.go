package repo

import (
	"sort"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/errors"
)

// Log returns the active branch's first-parent history, newest first.
func (r *Repository) Log() ([]dag.LogEntry, error) {
	_, headID, _, err := r.Head()
	if err != nil {
		return nil, err
	}
	return r.store.Commits.Log(headID, 0)
}

// GlobalLog returns every commit ever made, in no particular order.
func (r *Repository) GlobalLog() ([]dag.LogEntry, error) {
	return r.store.Commits.All()
}

// Find returns the ids of commits whose message is exactly message.
func (r *Repository) Find(message string) ([]dag.ID, error) {
	ids, err := r.store.Commits.FindByMessage(message)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, errors.New(errors.ErrCommitNotFound, message, "Found no commit with that message.")
	}
	return ids, nil
}

// ChangeKind describes an unstaged modification.
type ChangeKind string

const (
	Modified ChangeKind = "modified"
	Deleted  ChangeKind = "deleted"
)

// Change is a tracked path whose working copy differs from the stage.
type Change struct {
	Path string
	Kind ChangeKind
}

// Status is a summary of the repository's pending state.
type Status struct {
	ActiveBranch string
	Branches     []string
	Staged       []string
	Removed      []string
	Unstaged     []Change
	Untracked    []string
}

// Status compares the stage against the working directory. A path is
// modified or deleted when its working copy no longer matches the pending
// snapshot, and untracked when the snapshot does not include it.
func (r *Repository) Status() (*Status, error) {
	active, err := r.ActiveBranch()
	if err != nil {
		return nil, err
	}
	branches, err := r.Branches()
	if err != nil {
		return nil, err
	}
	s, err := r.loadStage()
	if err != nil {
		return nil, err
	}
	files, err := r.work.List()
	if err != nil {
		return nil, err
	}

	st := &Status{
		ActiveBranch: active,
		Branches:     branches,
		Staged:       sortedKeys(s.add),
		Removed:      sortedKeys(s.remove),
	}

	present := make(map[string]struct{}, len(files))
	for _, p := range files {
		present[p] = struct{}{}
		want, tracked := s.snapshot[p]
		if !tracked {
			st.Untracked = append(st.Untracked, p)
			continue
		}
		data, err := r.work.Read(p)
		if err != nil {
			return nil, err
		}
		id, err := dag.ComputeID(data)
		if err != nil {
			return nil, err
		}
		if id != want {
			st.Unstaged = append(st.Unstaged, Change{Path: p, Kind: Modified})
		}
	}
	for p := range s.snapshot {
		if _, ok := present[p]; !ok {
			st.Unstaged = append(st.Unstaged, Change{Path: p, Kind: Deleted})
		}
	}
	sort.Slice(st.Unstaged, func(i, j int) bool { return st.Unstaged[i].Path < st.Unstaged[j].Path })
	return st, nil
}
