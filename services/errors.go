package services

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the HTTP layer.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Error carries a client-facing message. Err, when set, is the underlying
// cause and is never shown to clients.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind and message so that wrapped copies created by
// withCause still compare equal to the sentinel they came from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Msg == t.Msg
}

var (
	ErrDuplicateIdentity  = &Error{Kind: KindValidation, Msg: "User already exists"}
	ErrInvalidCredential  = &Error{Kind: KindUnauthenticated, Msg: "Invalid email or password"}
	ErrInvalidSession     = &Error{Kind: KindUnauthenticated, Msg: "Token invalid or expired"}
	ErrMissingSession     = &Error{Kind: KindUnauthenticated, Msg: "No token, authorization denied"}
	ErrUserNotFound       = &Error{Kind: KindNotFound, Msg: "User not found"}
	ErrAssigneeNotFound   = &Error{Kind: KindNotFound, Msg: "Assigned user not found"}
	ErrTaskNotFound       = &Error{Kind: KindNotFound, Msg: "Task not found"}
	ErrAttachmentNotFound = &Error{Kind: KindNotFound, Msg: "Attachment not found"}
	ErrUploadFailed       = &Error{Kind: KindUpstream, Msg: "Failed to upload attachment"}
	ErrStore              = &Error{Kind: KindInternal, Msg: "Database error"}
)

// withCause returns a copy of sentinel that wraps cause.
func withCause(sentinel *Error, cause error) *Error {
	return &Error{Kind: sentinel.Kind, Msg: sentinel.Msg, Err: cause}
}

func invalid(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func denied(reason string) *Error {
	return &Error{Kind: KindForbidden, Msg: reason}
}

func storeErr(op string, err error) *Error {
	return withCause(ErrStore, fmt.Errorf("%s: %w", op, err))
}

// KindOf reports the kind of err, KindInternal for anything unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "Internal server error"
}
