package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/systemshift/gitlet/internal/errors"
)

// Worktree is the user's working directory. Paths handed to and returned by
// a Worktree are slash-separated and relative to its root; the metadata
// directory is never visible through it.
type Worktree struct {
	root    string
	metaDir string
}

func newWorktree(root, metaDir string) *Worktree {
	return &Worktree{root: root, metaDir: metaDir}
}

// Root returns the absolute working directory.
func (w *Worktree) Root() string { return w.root }

// Normalize turns a user-supplied path (relative to the working root, or
// absolute inside it) into a worktree path.
func (w *Worktree) Normalize(path string) (string, error) {
	p := path
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(w.root, p)
		if err != nil {
			return "", errors.New(errors.ErrFileNotFound, path, "File does not exist.")
		}
		p = rel
	}
	p = filepath.Clean(p)
	if !filepath.IsLocal(p) {
		return "", errors.New(errors.ErrFileNotFound, path, "File does not exist.")
	}
	p = filepath.ToSlash(p)
	if p == w.metaDir || strings.HasPrefix(p, w.metaDir+"/") {
		return "", errors.New(errors.ErrFileNotFound, path, "File does not exist.")
	}
	return p, nil
}

func (w *Worktree) abs(path string) string {
	return filepath.Join(w.root, filepath.FromSlash(path))
}

// List returns every regular file in the worktree, sorted.
func (w *Worktree) List() ([]string, error) {
	var paths []string
	meta := filepath.Join(w.root, w.metaDir)
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == meta {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list working files: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Exists reports whether path is a regular file.
func (w *Worktree) Exists(path string) bool {
	info, err := os.Stat(w.abs(path))
	return err == nil && info.Mode().IsRegular()
}

// Read returns the contents of path.
func (w *Worktree) Read(path string) ([]byte, error) {
	info, err := os.Stat(w.abs(path))
	if err != nil || !info.Mode().IsRegular() {
		return nil, errors.New(errors.ErrFileNotFound, path, "File does not exist.")
	}
	data, err := os.ReadFile(w.abs(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Write replaces path with data, creating parent directories.
func (w *Worktree) Write(path string, data []byte) error {
	abs := w.abs(path)
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(abs, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Remove deletes path if present and prunes parent directories left empty.
func (w *Worktree) Remove(path string) error {
	abs := w.abs(path)
	if err := os.Remove(abs); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("remove %s: %w", path, err)
	}
	for dir := filepath.Dir(abs); dir != w.root && strings.HasPrefix(dir, w.root); dir = filepath.Dir(dir) {
		if err := os.Remove(dir); err != nil {
			break
		}
	}
	return nil
}
