// Package nlerr provides the error-kind classification the networking core
// distinguishes (§7): invalid input, state misuse, malformed wire frames,
// exhausted resources, connection lifecycle misuse and I/O failures.
//
// It is a deliberately trimmed adaptation of the teacher's errors package:
// same CodeError-over-error shape, hierarchy via parent errors, and
// errors.Is/As compatibility, without the gin integration, trace-string
// formatting matrix or return-mode switch the full package carries — this
// core never needed those.
package nlerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error the way spec.md §7 enumerates.
type Kind uint8

const (
	// KindUnknown is the zero value, used only when wrapping a foreign error.
	KindUnknown Kind = iota
	KindInvalidArgument
	KindInvalidState
	KindInvalidProtocolFrame
	KindOutOfResources
	KindNotConnected
	KindAlreadyConnected
	KindIoFailure
	KindParseError
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid-argument"
	case KindInvalidState:
		return "invalid-state"
	case KindInvalidProtocolFrame:
		return "invalid-protocol-frame"
	case KindOutOfResources:
		return "out-of-resources"
	case KindNotConnected:
		return "not-connected"
	case KindAlreadyConnected:
		return "already-connected"
	case KindIoFailure:
		return "io-failure"
	case KindParseError:
		return "parse-error"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every fallible operation in this core.
type Error struct {
	kind   Kind
	msg    string
	parent error
}

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around an existing cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...), parent: cause}
}

func (e *Error) Error() string {
	if e.parent != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.parent)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

// Unwrap exposes the parent error for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.parent
}

// Kind returns the classification of this error.
func (e *Error) Kind() Kind {
	return e.kind
}

// Is reports whether err is an *Error of the given kind, anywhere in its chain.
func Is(err error, kind Kind) bool {
	var e *Error
	for errors.As(err, &e) {
		if e.kind == kind {
			return true
		}
		if e.parent == nil {
			return false
		}
		err = e.parent
	}
	return false
}
