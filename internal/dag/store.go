package dag

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/systemshift/gitlet/internal/compression"
	"github.com/systemshift/gitlet/internal/errors"
	"github.com/systemshift/gitlet/internal/logging"
)

// ObjectStore manages content-addressed immutable objects on disk.
//
// Layout: dir/ab/cdef... where "abcdef..." is the object id. Payloads are
// written through a Compressor and read back through a bounded LRU cache.
type ObjectStore struct {
	dir   string
	codec *compression.Compressor
	cache *lru.Cache[ID, []byte]
	log   zerolog.Logger
}

// NewObjectStore creates an ObjectStore at the given directory.
func NewObjectStore(dir string, codec *compression.Compressor, cacheSize int) (*ObjectStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create objects dir: %w", err)
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[ID, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create object cache: %w", err)
	}
	return &ObjectStore{
		dir:   dir,
		codec: codec,
		cache: cache,
		log:   logging.GetLogger("objects"),
	}, nil
}

// Dir returns the directory backing the store.
func (s *ObjectStore) Dir() string { return s.dir }

func (s *ObjectStore) path(id ID) string {
	if len(id) < 3 {
		return filepath.Join(s.dir, string(id))
	}
	return filepath.Join(s.dir, string(id[:2]), string(id[2:]))
}

// Put writes data to the object store, returning its id.
// If the object already exists, this is a no-op.
func (s *ObjectStore) Put(data []byte) (ID, error) {
	id, err := ComputeID(data)
	if err != nil {
		return "", err
	}
	path := s.path(id)
	if _, err := os.Stat(path); err == nil {
		return id, nil
	}

	encoded, err := s.codec.Compress(data)
	if err != nil {
		return "", fmt.Errorf("compress object %s: %w", id.Short(12), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create shard dir: %w", err)
	}
	if err := SafeWrite(path, encoded, 0444); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	s.cache.Add(id, data)
	s.log.Trace().Str("id", id.Short(12)).Int("size", len(data)).Msg("stored object")
	return id, nil
}

// Get reads an object by id. The bytes are checked against the id before
// they are returned.
func (s *ObjectStore) Get(id ID) ([]byte, error) {
	if data, ok := s.cache.Get(id); ok {
		return data, nil
	}

	raw, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrObjectNotFound, string(id), "Object %s does not exist.", id.Short(12))
		}
		return nil, fmt.Errorf("read object %s: %w", id.Short(12), err)
	}
	data, err := s.codec.Decompress(raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCorruptObject, string(id), "Object "+id.Short(12)+" is corrupt.")
	}
	ok, err := verify(id, data)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Newf(errors.ErrCorruptObject, string(id), "Object %s is corrupt.", id.Short(12))
	}

	s.cache.Add(id, data)
	return data, nil
}

// Has checks if an object exists.
func (s *ObjectStore) Has(id ID) bool {
	if s.cache.Contains(id) {
		return true
	}
	_, err := os.Stat(s.path(id))
	return err == nil
}

// List returns the ids of all stored objects in ascending order.
func (s *ObjectStore) List() ([]ID, error) {
	var ids []ID
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.dir, path)
		if err != nil {
			return err
		}
		id := ID(strings.ReplaceAll(filepath.ToSlash(rel), "/", ""))
		if id.Valid() {
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Len returns the number of stored objects.
func (s *ObjectStore) Len() (int, error) {
	ids, err := s.List()
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Clear removes every object. Only the staging scratch area is cleared; the
// object and commit areas are append-only.
func (s *ObjectStore) Clear() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("clear objects: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(s.dir, e.Name())); err != nil {
			return fmt.Errorf("clear objects: %w", err)
		}
	}
	s.cache.Purge()
	return nil
}
