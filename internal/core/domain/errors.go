package domain

import (
	"errors"
	"fmt"
	"io/fs"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedApp indicates an unknown application scope.
	ErrUnsupportedApp = errors.New("unsupported app type")

	// ErrOperationInProgress indicates another mutation is already in flight
	// on the same scope.
	ErrOperationInProgress = errors.New("operation in progress")

	// Backend Errors.

	// ErrProviderInUse indicates the current provider cannot be deleted.
	ErrProviderInUse = errors.New("cannot delete the currently active provider")

	// ErrPromptEnabled indicates an enabled prompt cannot be deleted.
	ErrPromptEnabled = errors.New("cannot delete an enabled prompt, disable it first")

	// ErrLiveFileEmpty indicates the live prompt file is missing or blank.
	ErrLiveFileEmpty = errors.New("live file does not exist or is empty")

	// ErrUnknownExternalProvider indicates the live file could not be attributed
	// to any provider family.
	ErrUnknownExternalProvider = errors.New("cannot identify provider in live configuration")
)

// ErrorKind is the category of a failed backend call.
type ErrorKind string

const (
	// KindNone is used on notifications that do not carry a failure.
	KindNone ErrorKind = ""

	// KindNotFound means the target item does not exist.
	KindNotFound ErrorKind = "not_found"

	// KindSyncFailure means the live file could not be written or restored.
	KindSyncFailure ErrorKind = "sync_failure"

	// KindPermissionDenied means the backend lacked filesystem or store permission.
	KindPermissionDenied ErrorKind = "permission_denied"

	// KindOther covers every other failure.
	KindOther ErrorKind = "other"
)

// BackendError is a failure reported by the backend command surface with a
// structured kind, so callers never need to inspect message text.
type BackendError struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

// NewBackendError wraps err with a kind and human-readable detail.
func NewBackendError(kind ErrorKind, detail string, err error) *BackendError {
	return &BackendError{Kind: kind, Detail: detail, Err: err}
}

func (e *BackendError) Error() string {
	switch {
	case e.Detail != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Detail != "":
		return e.Detail
	default:
		return string(e.Kind)
	}
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// ClassifyError maps err to an ErrorKind and the detail to surface.
// Structured backend errors win; bare sentinels are recognised with errors.Is.
func ClassifyError(err error) (ErrorKind, string) {
	if err == nil {
		return KindNone, ""
	}

	var be *BackendError
	if errors.As(err, &be) {
		detail := be.Detail
		if detail == "" && be.Err != nil {
			detail = be.Err.Error()
		}
		return be.Kind, detail
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound, err.Error()
	case errors.Is(err, fs.ErrPermission):
		return KindPermissionDenied, err.Error()
	default:
		return KindOther, err.Error()
	}
}
