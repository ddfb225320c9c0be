package dag

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/systemshift/gitlet/internal/compression"
	"github.com/systemshift/gitlet/internal/errors"
	"github.com/systemshift/gitlet/internal/logging"
)

const (
	// DefaultBranch is the branch created by Init.
	DefaultBranch = "master"
	// InitialMessage is the message of the root commit.
	InitialMessage = "initial commit"
	// DefaultCacheSize bounds each object store's read cache.
	DefaultCacheSize = 256
)

// Options tune how objects are persisted.
type Options struct {
	Compression      bool
	CompressionLevel int
	CacheSize        int
}

// DefaultOptions returns compression on at the default level.
func DefaultOptions() Options {
	return Options{Compression: true, CompressionLevel: 2, CacheSize: DefaultCacheSize}
}

// Store is one repository's persisted history: blobs, commits and branch
// pointers under a single metadata root. Two Stores (local and remote) are
// interchangeable; synchronization only ever talks to this type.
//
// A Store is not safe for concurrent writers across processes.
type Store struct {
	root    string
	codec   *compression.Compressor
	Blobs   *ObjectStore
	Commits *Graph
	Refs    *RefStore
}

func headPath(root string) string { return filepath.Join(root, "HEAD") }

// Exists reports whether root holds an initialized store.
func Exists(root string) bool {
	_, err := os.Stat(headPath(root))
	return err == nil
}

// InitStore creates a store at root with the root commit on DefaultBranch.
func InitStore(root string, opts Options) (*Store, error) {
	if Exists(root) {
		return nil, errors.New(errors.ErrAlreadyInitialized, root,
			"A Gitlet version-control system already exists in the current directory.")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create dir %s: %w", root, err)
	}

	metaPath := filepath.Join(root, "meta.json")
	meta := map[string]interface{}{
		"version": 1,
		"created": time.Now().UTC().Format(time.RFC3339),
	}
	data, _ := json.MarshalIndent(meta, "", "  ")
	if err := SafeWrite(metaPath, data, 0644); err != nil {
		return nil, fmt.Errorf("write meta: %w", err)
	}

	s, err := openStore(root, opts)
	if err != nil {
		return nil, err
	}

	initial := &Commit{
		Timestamp: time.Unix(0, 0).UTC(),
		Message:   InitialMessage,
		Files:     map[string]ID{},
	}
	id, err := s.Commits.Put(initial)
	if err != nil {
		return nil, err
	}
	if err := s.Refs.Set(DefaultBranch, id); err != nil {
		return nil, err
	}
	if err := s.Refs.SetHead(DefaultBranch); err != nil {
		return nil, err
	}

	logger := logging.GetLogger("dag")
	logger.Debug().Str("root", root).Str("commit", id.Short(12)).Msg("initialized store")
	return s, nil
}

// OpenStore opens an existing store at root.
func OpenStore(root string, opts Options) (*Store, error) {
	if !Exists(root) {
		return nil, errors.New(errors.ErrNotInitialized, root, "Not in an initialized Gitlet directory.")
	}
	return openStore(root, opts)
}

func openStore(root string, opts Options) (*Store, error) {
	codec, err := compression.NewCompressor(opts.CompressionLevel, opts.Compression)
	if err != nil {
		return nil, fmt.Errorf("create compressor: %w", err)
	}

	blobs, err := NewObjectStore(filepath.Join(root, "objects"), codec, opts.CacheSize)
	if err != nil {
		return nil, err
	}
	commitObjects, err := NewObjectStore(filepath.Join(root, "commits"), codec, opts.CacheSize)
	if err != nil {
		return nil, err
	}
	refs, err := NewRefStore(filepath.Join(root, "branches"), headPath(root))
	if err != nil {
		return nil, err
	}

	return &Store{
		root:    root,
		codec:   codec,
		Blobs:   blobs,
		Commits: NewGraph(commitObjects),
		Refs:    refs,
	}, nil
}

// Root returns the metadata directory of the store.
func (s *Store) Root() string { return s.root }

// Codec returns the compressor shared by the store's object areas.
func (s *Store) Codec() *compression.Compressor { return s.codec }

// BranchHead returns the commit a branch points at.
func (s *Store) BranchHead(name string) (ID, *Commit, error) {
	id, err := s.Refs.Get(name)
	if err != nil {
		return "", nil, err
	}
	c, err := s.Commits.Get(id)
	if err != nil {
		return "", nil, err
	}
	return id, c, nil
}

// ActiveBranch returns the name of the branch HEAD records.
func (s *Store) ActiveBranch() (string, error) {
	return s.Refs.Head()
}

// Close releases the compressor.
func (s *Store) Close() error {
	return s.codec.Close()
}
