package service

import (
	"errors"
	"fmt"

	"notehistory/cmd/internal/domain/entity"

	"github.com/go-playground/validator/v10"
)

// ErrorKind tells callers what happened, so the transport can map it without
// parsing messages.
type ErrorKind string

const (
	// KindValidation means the caller's input was rejected; nothing was written.
	KindValidation ErrorKind = "VALIDATION_ERROR"
	// KindNotFound means a referenced entity is absent, including a version
	// that exists but belongs to another note.
	KindNotFound ErrorKind = "NOT_FOUND"
	// KindConstraint means a uniqueness or foreign-key rule refused the write.
	KindConstraint ErrorKind = "CONSTRAINT_VIOLATION"
	// KindConflict means a compare-and-swap pointer move lost the race. The
	// appended version is kept.
	KindConflict ErrorKind = "CONFLICT"
	// KindPartialCreate means a note may exist without a valid pointer.
	// NoteID identifies it for repair.
	KindPartialCreate ErrorKind = "PARTIAL_CREATE_FAILURE"
	// KindStorage means the database could not be reached or failed.
	KindStorage ErrorKind = "STORAGE_UNAVAILABLE"
)

// Error is returned by every service operation.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string

	// NoteID and VersionID identify rows already written when the failure
	// happened past the first write.
	NoteID    int64
	VersionID int64

	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a service error, or "" for any other error.
func KindOf(err error) ErrorKind {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

var (
	errNoteGone     = errors.New("note no longer exists")
	errPointerMoved = errors.New("note pointer moved since it was read")
	errNoVersions   = errors.New("note has no versions")
)

func newError(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// classify turns a repository error into a service error.
func classify(op string, err error) *Error {
	var serr *Error
	if errors.As(err, &serr) {
		return serr
	}

	kind := KindStorage
	switch {
	case errors.Is(err, entity.ErrEmptySnapshot):
		kind = KindValidation
	case errors.Is(err, entity.ErrConstraintViolation):
		kind = KindConstraint
	case errors.Is(err, errNoteGone):
		kind = KindNotFound
	case errors.Is(err, errPointerMoved):
		kind = KindConflict
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func validateStruct(validate *validator.Validate, op string, v any) error {
	if err := validate.Struct(v); err != nil {
		return &Error{Kind: KindValidation, Op: op, Message: "invalid input", Err: err}
	}
	return nil
}
