package fuse

import (
	"context"
	"encoding/json"
	"strconv"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/systemshift/gitlet/internal/dag"
)

const maxLogEntries = 64

// LogDir exposes the active branch's recent history.
// Layout: log/HEAD (commit id), log/0 (newest commit JSON), log/1, ...
type LogDir struct {
	fs.Inode
	store *dag.Store
}

var _ = (fs.NodeLookuper)((*LogDir)(nil))
var _ = (fs.NodeReaddirer)((*LogDir)(nil))
var _ = (fs.NodeGetattrer)((*LogDir)(nil))

func (d *LogDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno("log")
	return fs.OK
}

func (d *LogDir) history(n int) ([]dag.LogEntry, error) {
	branch, err := d.store.ActiveBranch()
	if err != nil {
		return nil, err
	}
	head, _, err := d.store.BranchHead(branch)
	if err != nil {
		return nil, err
	}
	return d.store.Commits.Log(head, n)
}

func (d *LogDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	entries := []fuse.DirEntry{
		{Name: "HEAD", Mode: syscall.S_IFREG, Ino: stableIno("log", "HEAD")},
	}
	commits, err := d.history(maxLogEntries)
	if err != nil {
		return nil, syscall.EIO
	}
	for i := range commits {
		name := strconv.Itoa(i)
		entries = append(entries, fuse.DirEntry{
			Name: name,
			Mode: syscall.S_IFREG,
			Ino:  stableIno("log", name),
		})
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (d *LogDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	if name == "HEAD" {
		return newFile(ctx, &d.Inode, stableIno("log", "HEAD"), func() ([]byte, error) {
			commits, err := d.history(1)
			if err != nil {
				return nil, err
			}
			return []byte(commits[0].ID.String() + "\n"), nil
		}), fs.OK
	}

	idx, err := strconv.Atoi(name)
	if err != nil || idx < 0 || idx >= maxLogEntries {
		return nil, syscall.ENOENT
	}
	commits, err := d.history(idx + 1)
	if err != nil {
		return nil, syscall.EIO
	}
	if idx >= len(commits) {
		return nil, syscall.ENOENT
	}

	data, err := commitJSON(commits[idx])
	if err != nil {
		return nil, syscall.EIO
	}
	return newFile(ctx, &d.Inode, stableIno("log", name), func() ([]byte, error) {
		return data, nil
	}), fs.OK
}

type commitView struct {
	ID           dag.ID            `json:"id"`
	Timestamp    time.Time         `json:"timestamp"`
	Message      string            `json:"message"`
	Parent       dag.ID            `json:"parent,omitempty"`
	SecondParent dag.ID            `json:"second_parent,omitempty"`
	Files        map[string]dag.ID `json:"files"`
}

// commitJSON renders a log entry as indented JSON.
func commitJSON(e dag.LogEntry) ([]byte, error) {
	data, err := json.MarshalIndent(commitView{
		ID:           e.ID,
		Timestamp:    e.Commit.Timestamp,
		Message:      e.Commit.Message,
		Parent:       e.Commit.Parent,
		SecondParent: e.Commit.SecondParent,
		Files:        e.Commit.Files,
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
