package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in tick processing the error occurred
type Phase string

const (
	PhaseRegistration Phase = "registration" // component/system registration
	PhaseSchedule     Phase = "schedule"     // stage building
	PhaseDispatch     Phase = "dispatch"     // task submission and execution
	PhaseSync         Phase = "sync"         // command buffer application
	PhasePool         Phase = "pool"         // job pool operations
)

// Kind categorizes the error
type Kind string

const (
	KindOutOfRange    Kind = "out_of_range"
	KindCapacity      Kind = "capacity"
	KindNilFunc       Kind = "nil_func"
	KindCycle         Kind = "cycle"
	KindTaskEnqueue   Kind = "task_enqueue"
	KindSystemFailure Kind = "system_failure"
	KindInProgress    Kind = "in_progress"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// OutOfRange creates an index range error
func OutOfRange(phase Phase, what string, idx, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfRange,
		Detail: fmt.Sprintf("%s %d out of range (limit %d)", what, idx, limit),
		Value:  idx,
	}
}

// Capacity creates a fixed-capacity overflow error
func Capacity(phase Phase, what string, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCapacity,
		Detail: fmt.Sprintf("too many %s (limit %d)", what, limit),
		Value:  limit,
	}
}

// NilFunc creates a nil function error
func NilFunc(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilFunc,
		Detail: fmt.Sprintf("%s is nil", what),
	}
}

// Cycle creates a cyclic schedule error. The offending system is the
// lowest-indexed one the stage builder could not place.
func Cycle(sys int) *Error {
	return &Error{
		Phase:  PhaseSchedule,
		Kind:   KindCycle,
		Detail: fmt.Sprintf("ordering cycle through system %d: an explicit dependency contradicts a conflict-derived edge", sys),
		Value:  sys,
	}
}

// TaskEnqueue wraps an executor submit failure
func TaskEnqueue(cause error) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindTaskEnqueue,
		Detail: "executor rejected task",
		Cause:  cause,
	}
}

// SystemFailed wraps a non-nil return from a system function
func SystemFailed(sys int, cause error) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindSystemFailure,
		Detail: fmt.Sprintf("system %d failed", sys),
		Value:  sys,
		Cause:  cause,
	}
}

// InProgress creates an error for operations illegal while a tick runs
func InProgress(phase Phase, op string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInProgress,
		Detail: fmt.Sprintf("%s while a tick is in progress", op),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
