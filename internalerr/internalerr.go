// Package internalerr holds the invariant-violation error family
// described in spec.md section 7: assertions of internal consistency
// that are fatal and are never meant to be recovered from inside the
// core. They carry a stack trace so a crash report can localize the
// violated invariant.
package internalerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error is raised when an internal invariant is violated: a double
// commit into a TypeBuilder, a TypeRef used against the wrong graph, a
// missing forwarding reference, or an unreachable variant in an
// exhaustive match. Construct with Assert or New; both attach a stack
// trace via github.com/pkg/errors so the panic/recover boundary in
// pipeline.Run can log it with a useful trace.
type Error struct {
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("internal error: %s: %s", e.Message, e.cause)
	}
	return fmt.Sprintf("internal error: %s", e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an Error with a stack trace attached.
func New(format string, args ...interface{}) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{Message: msg, cause: errors.New(msg)}
}

// Wrap attaches msg to an existing error, keeping cause for Unwrap.
func Wrap(cause error, format string, args ...interface{}) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{Message: msg, cause: errors.Wrap(cause, msg)}
}

// Assert panics with an *Error if cond is false. This is the sole
// assertion path for invariant violations (messageAssert in spec.md).
// It is never caught inside the core; the recover points live in
// pipeline.Run and pipeline.BuildFromSources, for host programs that
// cannot tolerate a panicking library call.
func Assert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(New(format, args...))
	}
}

// Recover turns a panic carrying *Error into a returned error. Any
// other panic value is re-panicked: only internal invariant
// violations are meant to cross this boundary as errors.
func Recover(errp *error) {
	if r := recover(); r != nil {
		if ie, ok := r.(*Error); ok {
			*errp = ie
			return
		}
		panic(r)
	}
}
