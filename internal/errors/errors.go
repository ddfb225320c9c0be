// Package errors defines the structured error values returned by the version
// control engine. Every failure carries a stable ErrorCode, a one-line message
// suitable for printing, and the offending identifier (path, branch, commit id
// or remote name).
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a failure kind independently of its message.
type ErrorCode string

const (
	ErrUnknown           ErrorCode = "UNKNOWN"
	ErrIncorrectOperands ErrorCode = "INCORRECT_OPERANDS"

	// Repository
	ErrNotInitialized     ErrorCode = "REPOSITORY_NOT_INITIALIZED"
	ErrAlreadyInitialized ErrorCode = "ALREADY_INITIALIZED"

	// Objects and commits
	ErrFileNotFound      ErrorCode = "FILE_NOT_FOUND"
	ErrObjectNotFound    ErrorCode = "OBJECT_NOT_FOUND"
	ErrCorruptObject     ErrorCode = "CORRUPT_OBJECT"
	ErrCommitNotFound    ErrorCode = "COMMIT_NOT_FOUND"
	ErrAmbiguousCommitID ErrorCode = "AMBIGUOUS_COMMIT_ID"
	ErrFileNotInCommit   ErrorCode = "FILE_NOT_IN_COMMIT"

	// Staging
	ErrNothingToCommit ErrorCode = "NOTHING_TO_COMMIT"
	ErrNothingToRemove ErrorCode = "NOTHING_TO_REMOVE"
	ErrEmptyMessage    ErrorCode = "EMPTY_MESSAGE"

	// Branches
	ErrInvalidBranchName        ErrorCode = "INVALID_BRANCH_NAME"
	ErrBranchNotFound           ErrorCode = "BRANCH_NOT_FOUND"
	ErrBranchAlreadyExists      ErrorCode = "BRANCH_ALREADY_EXISTS"
	ErrAlreadyOnBranch          ErrorCode = "ALREADY_ON_BRANCH"
	ErrCannotRemoveActiveBranch ErrorCode = "CANNOT_REMOVE_ACTIVE_BRANCH"
	ErrUntrackedFileConflict    ErrorCode = "UNTRACKED_FILE_CONFLICT"

	// Merge
	ErrUncommittedChanges ErrorCode = "UNCOMMITTED_CHANGES"
	ErrMergeWithSelf      ErrorCode = "MERGE_WITH_SELF"
	ErrMergeConflict      ErrorCode = "MERGE_CONFLICT"

	// Remotes
	ErrInvalidRemoteName    ErrorCode = "INVALID_REMOTE_NAME"
	ErrRemoteNotFound       ErrorCode = "REMOTE_NOT_FOUND"
	ErrRemoteAlreadyExists  ErrorCode = "REMOTE_ALREADY_EXISTS"
	ErrRemoteDirNotFound    ErrorCode = "REMOTE_DIR_NOT_FOUND"
	ErrRemoteBranchNotFound ErrorCode = "REMOTE_BRANCH_NOT_FOUND"
	ErrRemoteAhead          ErrorCode = "REMOTE_AHEAD"
)

// Error is a failure with a code, a printable message and the identifier it
// concerns.
type Error struct {
	Code    ErrorCode
	Message string
	Subject string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Wrapped)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates an error for code about subject.
func New(code ErrorCode, subject, message string) *Error {
	return &Error{Code: code, Subject: subject, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(code ErrorCode, subject, format string, args ...interface{}) *Error {
	return &Error{Code: code, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. Returns nil if err
// is nil.
func Wrap(err error, code ErrorCode, subject, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Subject: subject, Message: message, Wrapped: err}
}

// IsErrorCode reports whether err (or anything it wraps) carries code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetErrorCode returns the code of err, or ErrUnknown.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrUnknown
}

// GetSubject returns the identifier an error concerns, or "".
func GetSubject(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Subject
	}
	return ""
}

// Message returns the printable one-line message for err. For structured
// errors this is the message alone, without the wrapped cause.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
