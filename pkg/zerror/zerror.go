package zerror

import (
	"fmt"
)

// ZError is an error with a machine readable code and a status that the
// transport layer maps to its own status codes.
type ZError struct {
	parent error
	status Status
	code   string
	msg    string
}

// New returns a ZError without parent.
//
// code example: ARTICLE_NOT_FOUND
func New(status Status, code, msg string) ZError {
	return ZError{
		status: status,
		code:   code,
		msg:    msg,
	}
}

func NewNotFound(code, msg string) ZError {
	return New(StatusNotFound, code, msg)
}

func NewValidationFailed(code, msg string) ZError {
	return New(StatusValidationFailed, code, msg)
}

func (e ZError) Error() string {
	if e.parent != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.msg, e.parent)
	}
	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

// WrapParent returns a copy of e carrying parent as its cause.
func (e ZError) WrapParent(parent error) ZError {
	e.parent = parent
	return e
}

func (e ZError) Unwrap() error {
	return e.parent
}

// Is reports whether target is a ZError with the same status and code,
// regardless of the wrapped parent.
func (e ZError) Is(target error) bool {
	t, ok := target.(ZError)
	if !ok {
		return false
	}
	return e.status == t.status && e.code == t.code
}

func (e ZError) Status() Status {
	return e.status
}

func (e ZError) Code() string {
	return e.code
}

func (e ZError) Msg() string {
	return e.msg
}

func (e ZError) Parent() error {
	return e.parent
}
