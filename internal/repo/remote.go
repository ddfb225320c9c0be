package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/errors"
)

// Remote is a registered peer repository: the metadata directory of another
// repository on the local filesystem.
type Remote struct {
	Name string
	Path string
}

type remoteEntry struct {
	Path string `toml:"path"`
}

type remoteTable struct {
	Remotes map[string]remoteEntry `toml:"remotes"`
}

func (r *Repository) remotesPath() string {
	return filepath.Join(r.meta, "remotes.toml")
}

func (r *Repository) loadRemotes() (*remoteTable, error) {
	t := &remoteTable{Remotes: map[string]remoteEntry{}}
	data, err := os.ReadFile(r.remotesPath())
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, fmt.Errorf("read remotes: %w", err)
	}
	if err := toml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parse remotes.toml: %w", err)
	}
	if t.Remotes == nil {
		t.Remotes = map[string]remoteEntry{}
	}
	return t, nil
}

func (r *Repository) saveRemotes(t *remoteTable) error {
	data, err := toml.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode remotes: %w", err)
	}
	return dag.SafeWrite(r.remotesPath(), data, 0644)
}

// Remotes returns the registered remotes sorted by name.
func (r *Repository) Remotes() ([]Remote, error) {
	t, err := r.loadRemotes()
	if err != nil {
		return nil, err
	}
	out := make([]Remote, 0, len(t.Remotes))
	for name, e := range t.Remotes {
		out = append(out, Remote{Name: name, Path: e.Path})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// AddRemote registers location under name. A relative location is taken
// relative to the working root. The location need not exist yet.
func (r *Repository) AddRemote(name, location string) error {
	if strings.Contains(name, "/") || !dag.ValidBranchName(name) {
		return errors.Newf(errors.ErrInvalidRemoteName, name, "Invalid remote name %q.", name)
	}
	t, err := r.loadRemotes()
	if err != nil {
		return err
	}
	if _, ok := t.Remotes[name]; ok {
		return errors.New(errors.ErrRemoteAlreadyExists, name, "A remote with that name already exists.")
	}
	path := filepath.FromSlash(location)
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.work.Root(), path)
	}
	t.Remotes[name] = remoteEntry{Path: filepath.Clean(path)}
	if err := r.saveRemotes(t); err != nil {
		return err
	}
	r.log.Debug().Str("remote", name).Str("path", path).Msg("added remote")
	return nil
}

// RemoveRemote unregisters name and drops its tracking branches.
func (r *Repository) RemoveRemote(name string) error {
	t, err := r.loadRemotes()
	if err != nil {
		return err
	}
	if _, ok := t.Remotes[name]; !ok {
		return errors.New(errors.ErrRemoteNotFound, name, "A remote with that name does not exist.")
	}
	delete(t.Remotes, name)
	if err := r.saveRemotes(t); err != nil {
		return err
	}

	branches, err := r.Branches()
	if err != nil {
		return err
	}
	for _, b := range branches {
		if strings.HasPrefix(b, name+"/") {
			if err := r.store.Refs.Delete(b); err != nil {
				return err
			}
		}
	}
	return nil
}

// openRemote opens the store a registered remote points at.
func (r *Repository) openRemote(name string) (*dag.Store, error) {
	t, err := r.loadRemotes()
	if err != nil {
		return nil, err
	}
	e, ok := t.Remotes[name]
	if !ok {
		return nil, errors.New(errors.ErrRemoteNotFound, name, "A remote with that name does not exist.")
	}
	if !dag.Exists(e.Path) {
		return nil, errors.New(errors.ErrRemoteDirNotFound, e.Path, "Remote directory not found.")
	}
	return dag.OpenStore(e.Path, r.opts.storeOptions())
}

// TrackingBranch names the local branch mirroring branch on remote.
func TrackingBranch(remote, branch string) string {
	return remote + "/" + branch
}
