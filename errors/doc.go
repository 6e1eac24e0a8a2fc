// Package errors provides structured error types for the argon2 boundary module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the offending field, value, a detail message and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseParams, errors.KindInvalidParams).
//		Field("parallelism").
//		Value(0).
//		Detail("must be at least 1").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidParams("output_length", 0, "must be at least 4")
//	err := errors.SizeMismatch(ptr, size, allocated)
//
// Sentinels such as ErrInvalidParams match any error of their Kind:
//
//	if errors.Is(err, errors.ErrInvalidParams) { ... }
package errors
