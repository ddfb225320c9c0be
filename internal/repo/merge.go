package repo

import (
	"bytes"
	"sort"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/errors"
)

// MergeOutcome says what a merge did.
type MergeOutcome int

const (
	// MergeUpToDate: the other branch is already an ancestor of the active one.
	MergeUpToDate MergeOutcome = iota
	// MergeFastForward: the active branch was moved to the other branch's head.
	MergeFastForward
	// MergeCommitted: a two-parent merge commit was recorded.
	MergeCommitted
)

func (o MergeOutcome) String() string {
	switch o {
	case MergeUpToDate:
		return "up-to-date"
	case MergeFastForward:
		return "fast-forward"
	case MergeCommitted:
		return "merged"
	default:
		return "unknown"
	}
}

// MergeResult describes a completed merge. Conflicts lists the paths written
// with conflict markers; the merge commit is still created when it is
// non-empty.
type MergeResult struct {
	Outcome    MergeOutcome
	SplitPoint dag.ID
	Commit     dag.ID
	Conflicts  []string
}

// Conflicted reports whether any path needed conflict markers.
func (m *MergeResult) Conflicted() bool { return len(m.Conflicts) > 0 }

// Errs returns one ErrMergeConflict per conflicted path. They describe the
// result; the merge itself succeeded.
func (m *MergeResult) Errs() []error {
	var errs []error
	for _, p := range m.Conflicts {
		errs = append(errs, errors.Newf(errors.ErrMergeConflict, p, "Merge conflict in %s.", p))
	}
	return errs
}

// SplitPoint returns the common ancestor of a and b nearest to b: b's history
// is searched breadth-first, so the ancestor with the fewest edges wins and,
// at equal distance, the one reached through first parents wins.
func (r *Repository) SplitPoint(a, b dag.ID) (dag.ID, error) {
	ancestors, err := r.store.Commits.Ancestors(a)
	if err != nil {
		return "", err
	}
	var split dag.ID
	err = r.store.Commits.Walk(b, func(id dag.ID, _ *dag.Commit, _ int) error {
		if _, ok := ancestors[id]; ok {
			split = id
			return dag.StopWalk
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if split == "" {
		return "", errors.Newf(errors.ErrCommitNotFound, string(b),
			"No common ancestor between %s and %s.", a.Short(7), b.Short(7))
	}
	return split, nil
}

type mergeAction int

const (
	actionTake mergeAction = iota + 1
	actionConflict
)

// Merge reconciles the named branch into the active branch.
func (r *Repository) Merge(other string) (*MergeResult, error) {
	s, err := r.loadStage()
	if err != nil {
		return nil, err
	}
	if !s.empty() {
		return nil, errors.New(errors.ErrUncommittedChanges, "", "You have uncommitted changes.")
	}
	if !r.store.Refs.Has(other) {
		return nil, errors.New(errors.ErrBranchNotFound, other, "A branch with that name does not exist.")
	}
	active, headID, head, err := r.Head()
	if err != nil {
		return nil, err
	}
	if other == active {
		return nil, errors.New(errors.ErrMergeWithSelf, other, "Cannot merge a branch with itself.")
	}
	otherID, otherHead, err := r.store.BranchHead(other)
	if err != nil {
		return nil, err
	}

	split, err := r.SplitPoint(headID, otherID)
	if err != nil {
		return nil, err
	}
	log := r.log.With().Str("branch", other).Str("split", split.Short(12)).Logger()

	switch split {
	case otherID:
		log.Debug().Msg("given branch is an ancestor")
		return &MergeResult{Outcome: MergeUpToDate, SplitPoint: split}, nil
	case headID:
		if err := r.resetTo(otherID, otherHead); err != nil {
			return nil, err
		}
		log.Debug().Msg("fast-forwarded")
		return &MergeResult{Outcome: MergeFastForward, SplitPoint: split, Commit: otherID}, nil
	}

	base, err := r.store.Commits.Get(split)
	if err != nil {
		return nil, err
	}

	plan := planMerge(base.Files, head.Files, otherHead.Files)
	writes := make(map[string]struct{}, len(plan))
	for p := range plan {
		writes[p] = struct{}{}
	}
	if err := r.untrackedInTheWay(s, writes); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(plan))
	for p := range plan {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var conflicts []string
	for _, p := range paths {
		h, o := head.Files[p], otherHead.Files[p]
		switch plan[p] {
		case actionTake:
			if o == "" {
				if err := r.work.Remove(p); err != nil {
					return nil, err
				}
				delete(s.snapshot, p)
				s.remove[p] = struct{}{}
				continue
			}
			data, err := r.store.Blobs.Get(o)
			if err != nil {
				return nil, err
			}
			if err := r.work.Write(p, data); err != nil {
				return nil, err
			}
			s.snapshot[p] = o
			s.add[p] = struct{}{}
		case actionConflict:
			data, err := r.conflictContent(h, o)
			if err != nil {
				return nil, err
			}
			id, err := r.staging.Put(data)
			if err != nil {
				return nil, err
			}
			if err := r.work.Write(p, data); err != nil {
				return nil, err
			}
			s.snapshot[p] = id
			s.add[p] = struct{}{}
			conflicts = append(conflicts, p)
			log.Info().Str("path", p).Msg("merge conflict")
		}
	}
	if err := r.saveStage(s); err != nil {
		return nil, err
	}

	id, err := r.commit("Merged "+other+" into "+active+".", otherID, true)
	if err != nil {
		return nil, err
	}
	return &MergeResult{Outcome: MergeCommitted, SplitPoint: split, Commit: id, Conflicts: conflicts}, nil
}

// planMerge decides, per path, whether the working state must change. Paths
// that keep the head's version are left out.
func planMerge(split, head, other map[string]dag.ID) map[string]mergeAction {
	plan := map[string]mergeAction{}
	visit := func(files map[string]dag.ID) {
		for p := range files {
			if _, seen := plan[p]; seen {
				continue
			}
			s, h, o := split[p], head[p], other[p]
			switch {
			case h == o:
			case s == h:
				plan[p] = actionTake
			case s == o:
			default:
				plan[p] = actionConflict
			}
		}
	}
	visit(split)
	visit(head)
	visit(other)
	return plan
}

// conflictContent joins both sides of a conflicting path between markers. An
// absent side contributes nothing.
func (r *Repository) conflictContent(head, other dag.ID) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("<<<<<<< HEAD\n")
	if head != "" {
		data, err := r.store.Blobs.Get(head)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteString("=======\n")
	if other != "" {
		data, err := r.store.Blobs.Get(other)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteString(">>>>>>>\n")
	return buf.Bytes(), nil
}
