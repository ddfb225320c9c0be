package fuse

import (
	"context"
	"sort"
	"strings"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/systemshift/gitlet/internal/dag"
)

// Branch names may contain "/", which cannot appear in a single directory
// entry, so it is shown as "__".
const slashEscape = "__"

func branchDirName(branch string) string {
	return strings.ReplaceAll(branch, "/", slashEscape)
}

func branchFromDirName(name string) string {
	return strings.ReplaceAll(name, slashEscape, "/")
}

// BranchesDir lists one directory per branch, each holding that branch's
// head snapshot.
type BranchesDir struct {
	fs.Inode
	store *dag.Store
}

var _ = (fs.NodeLookuper)((*BranchesDir)(nil))
var _ = (fs.NodeReaddirer)((*BranchesDir)(nil))
var _ = (fs.NodeGetattrer)((*BranchesDir)(nil))

func (d *BranchesDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno("branches")
	return fs.OK
}

func (d *BranchesDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	names, err := d.store.Refs.List()
	if err != nil {
		return nil, syscall.EIO
	}
	entries := make([]fuse.DirEntry, len(names))
	for i, name := range names {
		dir := branchDirName(name)
		entries[i] = fuse.DirEntry{
			Name: dir,
			Mode: syscall.S_IFDIR,
			Ino:  stableIno("branches", dir),
		}
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (d *BranchesDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	id, c, err := d.store.BranchHead(branchFromDirName(name))
	if err != nil {
		return nil, syscall.ENOENT
	}
	// The inode is keyed by commit so a moved branch is seen as a new tree.
	tree := &TreeDir{store: d.store, commit: id, files: c.Files}
	child := d.NewInode(ctx, tree, fs.StableAttr{
		Mode: syscall.S_IFDIR,
		Ino:  stableIno("tree", string(id)),
	})
	return child, fs.OK
}

// TreeDir is one directory level of a commit snapshot.
type TreeDir struct {
	fs.Inode
	store  *dag.Store
	commit dag.ID
	files  map[string]dag.ID
	prefix string // "" at the top, otherwise "dir/sub/"
}

var _ = (fs.NodeLookuper)((*TreeDir)(nil))
var _ = (fs.NodeReaddirer)((*TreeDir)(nil))
var _ = (fs.NodeGetattrer)((*TreeDir)(nil))

func (d *TreeDir) ino(name string) uint64 {
	return stableIno("tree", string(d.commit), d.prefix+name)
}

func (d *TreeDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno("tree", string(d.commit), d.prefix)
	return fs.OK
}

func (d *TreeDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	dirs, files := listChildren(d.files, d.prefix)
	entries := make([]fuse.DirEntry, 0, len(dirs)+len(files))
	for _, name := range dirs {
		entries = append(entries, fuse.DirEntry{Name: name, Mode: syscall.S_IFDIR, Ino: d.ino(name + "/")})
	}
	for _, name := range files {
		entries = append(entries, fuse.DirEntry{Name: name, Mode: syscall.S_IFREG, Ino: d.ino(name)})
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (d *TreeDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	path := d.prefix + name
	if blob, ok := d.files[path]; ok {
		return newFile(ctx, &d.Inode, d.ino(name), func() ([]byte, error) {
			return d.store.Blobs.Get(blob)
		}), fs.OK
	}

	sub := path + "/"
	for p := range d.files {
		if strings.HasPrefix(p, sub) {
			tree := &TreeDir{store: d.store, commit: d.commit, files: d.files, prefix: sub}
			return d.NewInode(ctx, tree, fs.StableAttr{
				Mode: syscall.S_IFDIR,
				Ino:  d.ino(name + "/"),
			}), fs.OK
		}
	}
	return nil, syscall.ENOENT
}

// listChildren returns the immediate subdirectory and file names below
// prefix in a snapshot, each sorted.
func listChildren(files map[string]dag.ID, prefix string) (dirs, names []string) {
	seen := map[string]bool{}
	for p := range files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := p[len(prefix):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			dir := rest[:i]
			if !seen[dir] {
				seen[dir] = true
				dirs = append(dirs, dir)
			}
			continue
		}
		names = append(names, rest)
	}
	sort.Strings(dirs)
	sort.Strings(names)
	return dirs, names
}
