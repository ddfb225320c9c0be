package dag

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	gocid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"

	"github.com/systemshift/gitlet/internal/errors"
)

// RefStore manages branch name -> commit mappings as files.
// Each branch is a file under the branches directory whose content is the
// commit's CID in multibase base32. Names may contain "/" (tracking branches
// such as "origin/master"), which map to subdirectories. HEAD is a separate
// file holding the active branch name.
type RefStore struct {
	dir      string
	headPath string
}

// NewRefStore creates a RefStore at the given directory.
func NewRefStore(dir, headPath string) (*RefStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create branches dir: %w", err)
	}
	return &RefStore{dir: dir, headPath: headPath}, nil
}

// ValidBranchName reports whether name can be stored as a branch.
func ValidBranchName(name string) bool {
	if name == "" || strings.HasSuffix(name, "/") || strings.Contains(name, "\\") {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." || strings.HasPrefix(part, ".tmp-") {
			return false
		}
	}
	return filepath.IsLocal(filepath.FromSlash(name))
}

func (r *RefStore) path(name string) string {
	return filepath.Join(r.dir, filepath.FromSlash(name))
}

// Set points branch name at commit id.
func (r *RefStore) Set(name string, id ID) error {
	if !ValidBranchName(name) {
		return errors.Newf(errors.ErrInvalidBranchName, name, "Invalid branch name %q.", name)
	}
	c, err := id.CID()
	if err != nil {
		return err
	}
	encoded, err := multibase.Encode(multibase.Base32, c.Bytes())
	if err != nil {
		return fmt.Errorf("encode ref CID: %w", err)
	}
	if other := r.clash(name); other != "" {
		return errors.Newf(errors.ErrBranchAlreadyExists, name,
			"A branch named %s conflicts with branch %s.", name, other)
	}
	path := r.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create ref dir: %w", err)
	}
	return SafeWrite(path, []byte(encoded+"\n"), 0644)
}

// Get resolves a branch name to a commit id.
func (r *RefStore) Get(name string) (ID, error) {
	if !ValidBranchName(name) {
		return "", errors.New(errors.ErrBranchNotFound, name, "No such branch exists.")
	}
	data, err := os.ReadFile(r.path(name))
	if err != nil {
		if os.IsNotExist(err) || isNotDir(err) {
			return "", errors.New(errors.ErrBranchNotFound, name, "No such branch exists.")
		}
		return "", fmt.Errorf("read ref %s: %w", name, err)
	}
	_, cidBytes, err := multibase.Decode(strings.TrimSpace(string(data)))
	if err != nil {
		return "", fmt.Errorf("decode ref CID: %w", err)
	}
	c, err := gocid.Cast(cidBytes)
	if err != nil {
		return "", fmt.Errorf("cast ref CID: %w", err)
	}
	return IDFromCID(c)
}

// clash returns an existing branch that occupies name's path as a file or a
// directory: "a" blocks "a/b" and "a/b" blocks "a".
func (r *RefStore) clash(name string) string {
	parts := strings.Split(name, "/")
	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(parts[:i], "/")
		if r.Has(prefix) {
			return prefix
		}
	}
	info, err := os.Stat(r.path(name))
	if err != nil || !info.IsDir() {
		return ""
	}
	names, err := r.List()
	if err != nil {
		return name + "/"
	}
	for _, n := range names {
		if strings.HasPrefix(n, name+"/") {
			return n
		}
	}
	return ""
}

// Has checks if a branch exists.
func (r *RefStore) Has(name string) bool {
	if !ValidBranchName(name) {
		return false
	}
	info, err := os.Stat(r.path(name))
	return err == nil && !info.IsDir()
}

// Delete removes a branch pointer. Commits are untouched.
func (r *RefStore) Delete(name string) error {
	if !r.Has(name) {
		return errors.New(errors.ErrBranchNotFound, name, "A branch with that name does not exist.")
	}
	path := r.path(name)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete ref %s: %w", name, err)
	}
	pruneEmptyDirs(filepath.Dir(path), r.dir)
	return nil
}

// List returns all branch names in ascending order.
func (r *RefStore) List() ([]string, error) {
	var names []string
	err := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(r.dir, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Head returns the name of the active branch.
func (r *RefStore) Head() (string, error) {
	data, err := os.ReadFile(r.headPath)
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	name := strings.TrimSpace(string(data))
	if name == "" {
		return "", fmt.Errorf("HEAD is empty")
	}
	return name, nil
}

// SetHead records name as the active branch.
func (r *RefStore) SetHead(name string) error {
	if err := SafeWrite(r.headPath, []byte(name+"\n"), 0644); err != nil {
		return fmt.Errorf("write HEAD: %w", err)
	}
	return nil
}

// pruneEmptyDirs removes dir and its parents while they are empty, stopping
// at stop.
func pruneEmptyDirs(dir, stop string) {
	stop = filepath.Clean(stop)
	for dir = filepath.Clean(dir); dir != stop && strings.HasPrefix(dir, stop); dir = filepath.Dir(dir) {
		if err := os.Remove(dir); err != nil {
			return
		}
	}
}

func isNotDir(err error) bool {
	return stderrors.Is(err, syscall.ENOTDIR)
}
