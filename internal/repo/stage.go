package repo

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/errors"
	"github.com/systemshift/gitlet/internal/logging"
)

// stage is the pending change set between commits. snapshot is what the next
// commit's files would be; add and remove are the paths where snapshot
// differs from base, the head commit the stage was built on.
type stage struct {
	base     dag.ID
	add      map[string]struct{}
	remove   map[string]struct{}
	snapshot map[string]dag.ID
}

type stageRecord struct {
	Base     dag.ID            `json:"base"`
	Add      []string          `json:"add"`
	Remove   []string          `json:"remove"`
	Snapshot map[string]dag.ID `json:"snapshot"`
}

func newStage(base dag.ID, snapshot map[string]dag.ID) *stage {
	s := &stage{
		base:     base,
		add:      map[string]struct{}{},
		remove:   map[string]struct{}{},
		snapshot: make(map[string]dag.ID, len(snapshot)),
	}
	for p, id := range snapshot {
		s.snapshot[p] = id
	}
	return s
}

func (s *stage) empty() bool { return len(s.add) == 0 && len(s.remove) == 0 }

func (s *stage) tracks(path string) bool {
	_, ok := s.snapshot[path]
	return ok
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r *Repository) stagePath() string {
	return filepath.Join(r.meta, "staging", "stage.json")
}

// loadStage reads the pending change set. When the active branch was moved
// without going through the stage (a push into this repository, or a fetch
// while a tracking branch is checked out) the stage is rebased onto the new
// head.
func (r *Repository) loadStage() (*stage, error) {
	_, headID, head, err := r.Head()
	if err != nil {
		return nil, err
	}
	var rec stageRecord
	if err := dag.ReadJSON(r.stagePath(), &rec); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		return newStage(headID, head.Files), nil
	}
	if rec.Base != headID {
		r.log.Debug().Str("from", rec.Base.Short(12)).Str("to", headID.Short(12)).Msg("rebasing stage")
		return rebaseStage(&rec, headID, head.Files), nil
	}
	s := newStage(rec.Base, rec.Snapshot)
	for _, p := range rec.Add {
		s.add[p] = struct{}{}
	}
	for _, p := range rec.Remove {
		s.remove[p] = struct{}{}
	}
	return s, nil
}

// rebaseStage replays the recorded adds and removes on top of files.
func rebaseStage(rec *stageRecord, base dag.ID, files map[string]dag.ID) *stage {
	s := newStage(base, files)
	for _, p := range rec.Add {
		id, ok := rec.Snapshot[p]
		if !ok || files[p] == id {
			continue
		}
		s.snapshot[p] = id
		s.add[p] = struct{}{}
	}
	for _, p := range rec.Remove {
		if _, ok := files[p]; !ok {
			continue
		}
		delete(s.snapshot, p)
		s.remove[p] = struct{}{}
	}
	return s
}

func (r *Repository) saveStage(s *stage) error {
	return dag.WriteJSON(r.stagePath(), stageRecord{
		Base: s.base,
		Add:      sortedKeys(s.add),
		Remove:   sortedKeys(s.remove),
		Snapshot: s.snapshot,
	})
}

// resetStage discards pending changes and makes snapshot, the files of
// commit base, the new baseline.
func (r *Repository) resetStage(base dag.ID, snapshot map[string]dag.ID) error {
	if err := r.staging.Clear(); err != nil {
		return err
	}
	return r.saveStage(newStage(base, snapshot))
}

// Add stages the working copy of path.
func (r *Repository) Add(path string) error {
	p, err := r.work.Normalize(path)
	if err != nil {
		return err
	}
	data, err := r.work.Read(p)
	if err != nil {
		return err
	}
	id, err := dag.ComputeID(data)
	if err != nil {
		return err
	}
	_, _, head, err := r.Head()
	if err != nil {
		return err
	}
	s, err := r.loadStage()
	if err != nil {
		return err
	}

	if headID, ok := head.Blob(p); ok && headID == id {
		delete(s.add, p)
		delete(s.remove, p)
		s.snapshot[p] = headID
		r.log.Debug().Str("path", p).Msg("matches head, unstaged")
		return r.saveStage(s)
	}

	if _, err := r.staging.Put(data); err != nil {
		return err
	}
	s.snapshot[p] = id
	s.add[p] = struct{}{}
	delete(s.remove, p)
	r.log.Debug().Str("path", p).Str("blob", id.Short(12)).Msg("staged")
	return r.saveStage(s)
}

// Remove unstages path, or stages its removal and deletes the working copy
// when the head commit tracks it.
func (r *Repository) Remove(path string) error {
	p, err := r.work.Normalize(path)
	if err != nil {
		return err
	}
	_, _, head, err := r.Head()
	if err != nil {
		return err
	}
	s, err := r.loadStage()
	if err != nil {
		return err
	}

	_, tracked := head.Blob(p)
	_, removed := s.remove[p]
	_, added := s.add[p]
	switch {
	case tracked && !removed:
		if err := r.work.Remove(p); err != nil {
			return err
		}
		delete(s.add, p)
		delete(s.snapshot, p)
		s.remove[p] = struct{}{}
	case added:
		delete(s.add, p)
		delete(s.snapshot, p)
	default:
		return errors.New(errors.ErrNothingToRemove, p, "No reason to remove the file.")
	}
	return r.saveStage(s)
}

// Commit records the staged snapshot on the active branch.
func (r *Repository) Commit(message string) (dag.ID, error) {
	return r.commit(message, "", false)
}

// commit promotes staged blobs, writes a commit whose files are the pending
// snapshot and advances the active branch. A non-empty second parent makes
// a merge commit, which is recorded even when nothing changed.
func (r *Repository) commit(message string, second dag.ID, allowEmpty bool) (dag.ID, error) {
	if message == "" {
		return "", errors.New(errors.ErrEmptyMessage, "", "Please enter a commit message.")
	}
	done := logging.LogOperationStart(r.log, "commit")
	defer done()

	branch, headID, _, err := r.Head()
	if err != nil {
		return "", err
	}
	s, err := r.loadStage()
	if err != nil {
		return "", err
	}
	if s.empty() && !allowEmpty {
		return "", errors.New(errors.ErrNothingToCommit, branch, "No changes added to the commit.")
	}

	for _, p := range sortedKeys(s.add) {
		id := s.snapshot[p]
		if r.store.Blobs.Has(id) {
			continue
		}
		data, err := r.staging.Get(id)
		if err != nil {
			return "", err
		}
		if _, err := r.store.Blobs.Put(data); err != nil {
			return "", err
		}
	}

	c := &dag.Commit{
		Timestamp:    time.Now(),
		Message:      message,
		Parent:       headID,
		SecondParent: second,
		Files:        s.snapshot,
	}
	id, err := r.store.Commits.Put(c)
	if err != nil {
		return "", err
	}
	if err := r.store.Refs.Set(branch, id); err != nil {
		return "", err
	}
	if err := r.resetStage(id, s.snapshot); err != nil {
		return "", err
	}
	r.log.Info().Str("branch", branch).Str("commit", id.Short(12)).Int("files", len(c.Files)).Msg("committed")
	return id, nil
}
