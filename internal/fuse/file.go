package fuse

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// ReadOnlyFile serves bytes produced on demand. Content is immutable for
// blobs and commits; HEAD and branch files are re-read on every call.
type ReadOnlyFile struct {
	fs.Inode
	ino     uint64
	content func() ([]byte, error)
}

var _ = (fs.NodeGetattrer)((*ReadOnlyFile)(nil))
var _ = (fs.NodeOpener)((*ReadOnlyFile)(nil))
var _ = (fs.NodeReader)((*ReadOnlyFile)(nil))

func (f *ReadOnlyFile) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	data, err := f.content()
	if err != nil {
		return syscall.EIO
	}
	out.Mode = 0444
	out.Size = uint64(len(data))
	out.Ino = f.ino
	return fs.OK
}

func (f *ReadOnlyFile) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR|syscall.O_TRUNC) != 0 {
		return nil, 0, syscall.EROFS
	}
	return nil, fuse.FOPEN_KEEP_CACHE, fs.OK
}

func (f *ReadOnlyFile) Read(ctx context.Context, fh fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data, err := f.content()
	if err != nil {
		return nil, syscall.EIO
	}
	return fuse.ReadResultData(window(data, len(dest), off)), fs.OK
}

// window returns the slice of data a read of size n at off should see.
func window(data []byte, n int, off int64) []byte {
	if off < 0 || off >= int64(len(data)) {
		return nil
	}
	end := off + int64(n)
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return data[off:end]
}

func newFile(ctx context.Context, parent *fs.Inode, ino uint64, content func() ([]byte, error)) *fs.Inode {
	return parent.NewInode(ctx, &ReadOnlyFile{ino: ino, content: content}, fs.StableAttr{
		Mode: syscall.S_IFREG,
		Ino:  ino,
	})
}
