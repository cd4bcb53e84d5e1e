package apperr

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Kind classifies an operation failure so the HTTP layer can map it to a
// status code without string matching.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindInvalidState
	KindBusinessRule
	KindDuplicate
	KindConflict
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindBusinessRule:
		return "business_rule"
	case KindDuplicate:
		return "duplicate"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

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

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two apperr values by kind and message, so
// sentinel-style comparisons keep working across wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Msg: what + " not found"}
}

func InvalidState(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidState, Msg: fmt.Sprintf(format, args...)}
}

func BusinessRule(format string, args ...interface{}) *Error {
	return &Error{Kind: KindBusinessRule, Msg: fmt.Sprintf(format, args...)}
}

func Duplicate(msg string) *Error {
	return &Error{Kind: KindDuplicate, Msg: msg}
}

func Conflict(msg string, err error) *Error {
	return &Error{Kind: KindConflict, Msg: msg, Err: err}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf reports the kind of err, or KindInternal when err is not an
// apperr value.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// FromPq translates Postgres contention aborts into retryable Conflict
// errors. 40001 is serialization_failure, 40P01 is deadlock_detected.
func FromPq(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01":
			return Conflict("transaction aborted due to contention, retry", err)
		}
	}
	return err
}
