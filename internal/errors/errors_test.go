package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/systemshift/gitlet/internal/errors"
)

func TestNew(t *testing.T) {
	err := errors.New(errors.ErrBranchNotFound, "topic", "No such branch exists.")

	assert.Equal(t, errors.ErrBranchNotFound, err.Code)
	assert.Equal(t, "topic", err.Subject)
	assert.Equal(t, "No such branch exists.", err.Error())
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("disk full")

	err := errors.Wrap(cause, errors.ErrObjectNotFound, "abc123", "object missing")
	assert.Equal(t, "object missing: disk full", err.Error())
	assert.True(t, stderrors.Is(err, cause))

	assert.Nil(t, errors.Wrap(nil, errors.ErrObjectNotFound, "", "x"))
}

func TestIsErrorCode_ThroughFmtWrap(t *testing.T) {
	inner := errors.New(errors.ErrRemoteAhead, "master", "Please pull down remote changes before pushing.")
	outer := fmt.Errorf("push origin master: %w", inner)

	assert.True(t, errors.IsErrorCode(outer, errors.ErrRemoteAhead))
	assert.False(t, errors.IsErrorCode(outer, errors.ErrRemoteNotFound))
	assert.Equal(t, errors.ErrRemoteAhead, errors.GetErrorCode(outer))
	assert.Equal(t, "master", errors.GetSubject(outer))
	assert.Equal(t, "Please pull down remote changes before pushing.", errors.Message(outer))
}

func TestIs_MatchesByCode(t *testing.T) {
	a := errors.New(errors.ErrCommitNotFound, "aaaaaa", "first")
	b := errors.New(errors.ErrCommitNotFound, "bbbbbb", "second")
	c := errors.New(errors.ErrFileNotFound, "x", "third")

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, c))
}

func TestGetErrorCode_Plain(t *testing.T) {
	plain := stderrors.New("boom")
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(plain))
	assert.Equal(t, "", errors.GetSubject(plain))
	assert.Equal(t, "boom", errors.Message(plain))
}
