package dag

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemshift/gitlet/internal/errors"
)

func newTestRefs(t *testing.T) (*RefStore, string) {
	t.Helper()
	root := t.TempDir()
	refs, err := NewRefStore(filepath.Join(root, "branches"), filepath.Join(root, "HEAD"))
	require.NoError(t, err)
	return refs, root
}

func TestRefStore_SetGet(t *testing.T) {
	refs, root := newTestRefs(t)
	id, err := ComputeID([]byte("commit"))
	require.NoError(t, err)

	require.NoError(t, refs.Set("master", id))
	got, err := refs.Get("master")
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.True(t, refs.Has("master"))

	// Persisted as a multibase base32 CID.
	raw, err := os.ReadFile(filepath.Join(root, "branches", "master"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "b"))
}

func TestRefStore_SlashNames(t *testing.T) {
	refs, root := newTestRefs(t)
	id, err := ComputeID([]byte("commit"))
	require.NoError(t, err)

	require.NoError(t, refs.Set("master", id))
	require.NoError(t, refs.Set("origin/master", id))
	require.NoError(t, refs.Set("origin/feature", id))

	names, err := refs.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"master", "origin/feature", "origin/master"}, names)

	require.NoError(t, refs.Delete("origin/master"))
	require.NoError(t, refs.Delete("origin/feature"))
	_, err = os.Stat(filepath.Join(root, "branches", "origin"))
	assert.True(t, os.IsNotExist(err), "empty remote dir should be pruned")

	// "origin" is a directory-shaped name only while tracking branches exist.
	assert.False(t, refs.Has("origin"))
}

func TestRefStore_FileDirectoryClash(t *testing.T) {
	refs, _ := newTestRefs(t)
	id, err := ComputeID([]byte("commit"))
	require.NoError(t, err)

	require.NoError(t, refs.Set("a", id))
	err = refs.Set("a/b", id)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBranchAlreadyExists))
	assert.False(t, refs.Has("a/b"))

	require.NoError(t, refs.Set("x/y", id))
	err = refs.Set("x", id)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBranchAlreadyExists))
	assert.Contains(t, errors.Message(err), "x/y")

	// Moving an existing branch is not a clash.
	other, err := ComputeID([]byte("other"))
	require.NoError(t, err)
	require.NoError(t, refs.Set("x/y", other))
	require.NoError(t, refs.Set("a", other))
}

func TestRefStore_Missing(t *testing.T) {
	refs, _ := newTestRefs(t)

	_, err := refs.Get("nope")
	assert.True(t, errors.IsErrorCode(err, errors.ErrBranchNotFound))

	err = refs.Delete("nope")
	assert.True(t, errors.IsErrorCode(err, errors.ErrBranchNotFound))
}

func TestRefStore_InvalidNames(t *testing.T) {
	refs, _ := newTestRefs(t)
	id, err := ComputeID([]byte("commit"))
	require.NoError(t, err)

	for _, name := range []string{"", "../escape", "a//b", "trailing/", ".", ".tmp-x", `back\slash`} {
		err := refs.Set(name, id)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidBranchName), "name %q", name)
	}
	assert.True(t, ValidBranchName("feature/x"))
}

func TestRefStore_Head(t *testing.T) {
	refs, _ := newTestRefs(t)

	_, err := refs.Head()
	assert.Error(t, err)

	require.NoError(t, refs.SetHead("feature"))
	name, err := refs.Head()
	require.NoError(t, err)
	assert.Equal(t, "feature", name)
}
