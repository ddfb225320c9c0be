package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/errors"
)

func TestLog_ActiveBranchOnly(t *testing.T) {
	r := openTestRepo(t)
	c1 := commitFile(t, r, "a.txt", "1", "c1")
	require.NoError(t, r.CreateBranch("side"))
	c2 := commitFile(t, r, "a.txt", "2", "c2")

	require.NoError(t, r.CheckoutBranch("side"))
	side := commitFile(t, r, "b.txt", "b", "side work")
	require.NoError(t, r.CheckoutBranch("master"))

	entries, err := r.Log()
	require.NoError(t, err)
	var ids []dag.ID
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	require.Len(t, ids, 3)
	assert.Equal(t, []dag.ID{c2, c1}, ids[:2])
	assert.NotContains(t, ids, side)

	all, err := r.GlobalLog()
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestFind(t *testing.T) {
	r := openTestRepo(t)
	a := commitFile(t, r, "a.txt", "1", "same message")
	b := commitFile(t, r, "a.txt", "2", "same message")

	ids, err := r.Find("same message")
	require.NoError(t, err)
	assert.ElementsMatch(t, []dag.ID{a, b}, ids)

	_, err = r.Find("nothing like it")
	assert.True(t, errors.IsErrorCode(err, errors.ErrCommitNotFound))
	assert.Equal(t, "Found no commit with that message.", errors.Message(err))
}

func TestStatus(t *testing.T) {
	r := openTestRepo(t)
	commitFile(t, r, "tracked.txt", "1", "c1")
	commitFile(t, r, "gone.txt", "1", "c2")
	commitFile(t, r, "removed.txt", "1", "c3")
	require.NoError(t, r.CreateBranch("other"))

	writeFile(t, r, "staged.txt", "new")
	require.NoError(t, r.Add("staged.txt"))
	require.NoError(t, r.Remove("removed.txt"))
	writeFile(t, r, "tracked.txt", "edited")
	require.NoError(t, removeWorking(r, "gone.txt"))
	writeFile(t, r, "stray.txt", "?")

	st, err := r.Status()
	require.NoError(t, err)
	assert.Equal(t, "master", st.ActiveBranch)
	assert.Equal(t, []string{"master", "other"}, st.Branches)
	assert.Equal(t, []string{"staged.txt"}, st.Staged)
	assert.Equal(t, []string{"removed.txt"}, st.Removed)
	assert.Equal(t, []Change{
		{Path: "gone.txt", Kind: Deleted},
		{Path: "tracked.txt", Kind: Modified},
	}, st.Unstaged)
	assert.Equal(t, []string{"stray.txt"}, st.Untracked)
}

func TestStatus_StagedThenEdited(t *testing.T) {
	r := openTestRepo(t)
	writeFile(t, r, "a.txt", "staged version")
	require.NoError(t, r.Add("a.txt"))
	writeFile(t, r, "a.txt", "later edit")

	st, err := r.Status()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, st.Staged)
	assert.Equal(t, []Change{{Path: "a.txt", Kind: Modified}}, st.Unstaged)
}

func removeWorking(r *Repository, path string) error {
	return r.Worktree().Remove(path)
}
