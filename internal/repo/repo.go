// Package repo is the version-control engine: a working directory bound to a
// dag.Store, with a staging area, branch management, three-way merge and
// synchronization with other repositories on the local filesystem.
//
// A Repository is not safe for concurrent use, and two processes must not
// write to the same root at once. Repositories rooted in different
// directories are independent.
package repo

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/errors"
	"github.com/systemshift/gitlet/internal/logging"
)

// Repository is an open working directory plus its metadata store.
type Repository struct {
	opts    *Options
	work    *Worktree
	meta    string
	store   *dag.Store
	staging *dag.ObjectStore
	log     zerolog.Logger
}

// Init creates a new repository in workDir.
func Init(workDir string, opts ...Option) (*Repository, error) {
	o, root, err := resolve(workDir, opts)
	if err != nil {
		return nil, err
	}
	meta := filepath.Join(root, o.MetaDir)
	store, err := dag.InitStore(meta, o.storeOptions())
	if err != nil {
		return nil, err
	}
	r, err := newRepository(o, root, store)
	if err != nil {
		store.Close()
		return nil, err
	}
	_, initialID, initial, err := r.Head()
	if err == nil {
		err = r.resetStage(initialID, initial.Files)
	}
	if err != nil {
		r.Close()
		return nil, err
	}
	r.log.Info().Str("root", root).Msg("initialized repository")
	return r, nil
}

// Open opens the repository in workDir.
func Open(workDir string, opts ...Option) (*Repository, error) {
	o, root, err := resolve(workDir, opts)
	if err != nil {
		return nil, err
	}
	store, err := dag.OpenStore(filepath.Join(root, o.MetaDir), o.storeOptions())
	if err != nil {
		return nil, err
	}
	r, err := newRepository(o, root, store)
	if err != nil {
		store.Close()
		return nil, err
	}
	return r, nil
}

func resolve(workDir string, opts []Option) (*Options, string, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	root, err := filepath.Abs(workDir)
	if err != nil {
		return nil, "", fmt.Errorf("resolve %s: %w", workDir, err)
	}
	return o, root, nil
}

func newRepository(o *Options, root string, store *dag.Store) (*Repository, error) {
	staging, err := dag.NewObjectStore(filepath.Join(store.Root(), "staging", "blobs"), store.Codec(), o.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Repository{
		opts:    o,
		work:    newWorktree(root, filepath.ToSlash(o.MetaDir)),
		meta:    store.Root(),
		store:   store,
		staging: staging,
		log:     logging.GetLogger("repo"),
	}, nil
}

// Close releases the underlying store.
func (r *Repository) Close() error {
	return r.store.Close()
}

// Store exposes the persisted history.
func (r *Repository) Store() *dag.Store { return r.store }

// Worktree exposes the working directory.
func (r *Repository) Worktree() *Worktree { return r.work }

// MetaDir returns the absolute metadata directory.
func (r *Repository) MetaDir() string { return r.meta }

// ActiveBranch returns the branch HEAD names.
func (r *Repository) ActiveBranch() (string, error) {
	return r.store.ActiveBranch()
}

// Head returns the active branch's name and head commit.
func (r *Repository) Head() (string, dag.ID, *dag.Commit, error) {
	branch, err := r.store.ActiveBranch()
	if err != nil {
		return "", "", nil, err
	}
	id, c, err := r.store.BranchHead(branch)
	if err != nil {
		return "", "", nil, err
	}
	return branch, id, c, nil
}

// Resolve finds a commit by full id or abbreviation.
func (r *Repository) Resolve(idOrPrefix string) (dag.ID, *dag.Commit, error) {
	return r.store.Commits.Resolve(idOrPrefix)
}

// readBlob reads a blob from the object store, falling back to the staging
// area for blobs added but not yet committed.
func (r *Repository) readBlob(id dag.ID) ([]byte, error) {
	data, err := r.store.Blobs.Get(id)
	if errors.IsErrorCode(err, errors.ErrObjectNotFound) {
		return r.staging.Get(id)
	}
	return data, err
}
