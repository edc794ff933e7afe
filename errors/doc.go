// Package errors provides structured error types for the brutal library.
//
// Errors are categorized by Phase (where the error occurred) and Kind
// (error category). The Error type carries a detail message, the offending
// value, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDispatch, errors.KindTaskEnqueue).
//		Detail("executor shut down").
//		Cause(cause).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Cycle(sysIdx)
//	err := errors.SystemFailed(sysIdx, cause)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
