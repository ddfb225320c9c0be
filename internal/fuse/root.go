package fuse

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/systemshift/gitlet/internal/dag"
)

// RootNode is the mountpoint directory. Contains "HEAD", "branches/" and "log/".
type RootNode struct {
	fs.Inode
	store *dag.Store
}

var _ = (fs.NodeOnAdder)((*RootNode)(nil))
var _ = (fs.NodeGetattrer)((*RootNode)(nil))

func (r *RootNode) OnAdd(ctx context.Context) {
	head := &ReadOnlyFile{ino: stableIno("HEAD"), content: r.headBytes}
	r.AddChild("HEAD", r.NewPersistentInode(ctx, head, fs.StableAttr{
		Mode: syscall.S_IFREG,
		Ino:  stableIno("HEAD"),
	}), true)

	branches := &BranchesDir{store: r.store}
	r.AddChild("branches", r.NewPersistentInode(ctx, branches, fs.StableAttr{
		Mode: syscall.S_IFDIR,
		Ino:  stableIno("branches"),
	}), true)

	logDir := &LogDir{store: r.store}
	r.AddChild("log", r.NewPersistentInode(ctx, logDir, fs.StableAttr{
		Mode: syscall.S_IFDIR,
		Ino:  stableIno("log"),
	}), true)
}

func (r *RootNode) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno("/")
	return fs.OK
}

func (r *RootNode) headBytes() ([]byte, error) {
	name, err := r.store.ActiveBranch()
	if err != nil {
		return nil, err
	}
	return []byte(name + "\n"), nil
}
