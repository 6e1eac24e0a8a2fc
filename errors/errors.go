package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseAlloc   Phase = "alloc"   // allocator requests
	PhaseParams  Phase = "params"  // cost parameter construction
	PhaseHash    Phase = "hash"    // key derivation
	PhaseVerify  Phase = "verify"  // encoded hash verification
	PhaseDecode  Phase = "decode"  // encoded hash parsing
	PhaseLoad    Phase = "load"    // guest module loading
	PhaseHost    Phase = "host"    // host function handling
	PhaseRuntime Phase = "runtime" // guest calls
)

// Kind categorizes the error
type Kind string

const (
	KindAllocation      Kind = "allocation"
	KindInvalidParams   Kind = "invalid_params"
	KindInvalidUTF8     Kind = "invalid_utf8"
	KindInvalidEncoding Kind = "invalid_encoding"
	KindUnsupported     Kind = "unsupported"
	KindOutOfBounds     Kind = "out_of_bounds"
	KindSizeMismatch    Kind = "size_mismatch"
	KindDoubleFree      Kind = "double_free"
	KindUnknownPointer  Kind = "unknown_pointer"
	KindGuestPanic      Kind = "guest_panic"
	KindNotFound        Kind = "not_found"
	KindNotInitialized  Kind = "not_initialized"
	KindInvalidInput    Kind = "invalid_input"
	KindInstantiation   Kind = "instantiation"
)

// Sentinels match any error of the same Kind regardless of Phase.
var (
	ErrAllocation      = &Error{Kind: KindAllocation}
	ErrInvalidParams   = &Error{Kind: KindInvalidParams}
	ErrInvalidEncoding = &Error{Kind: KindInvalidEncoding}
	ErrInvalidUTF8     = &Error{Kind: KindInvalidUTF8}
	ErrGuestPanic      = &Error{Kind: KindGuestPanic}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Field  string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Field != "" {
		b.WriteString(" at ")
		b.WriteString(e.Field)
	}

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

// Is reports whether target matches this error.
// A target without a Phase matches on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
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

// Field sets the offending field name
func (b *Builder) Field(name string) *Builder {
	b.err.Field = name
	return b
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

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size, align uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
		Value:  size,
	}
}

// InvalidParams creates an invalid cost parameter error
func InvalidParams(field string, value any, detail string) *Error {
	return &Error{
		Phase:  PhaseParams,
		Kind:   KindInvalidParams,
		Field:  field,
		Detail: detail,
		Value:  value,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, field string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Field:  field,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// InvalidEncoding creates a malformed encoded hash error
func InvalidEncoding(field, detail string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidEncoding,
		Field:  field,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds memory access error
func OutOfBounds(phase Phase, offset, length, size uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("range [%d, %d) out of bounds (size %d)", offset, uint64(offset)+uint64(length), size),
		Value:  offset,
	}
}

// UnknownPointer creates an error for releasing an address that is not live
func UnknownPointer(ptr, size uint32) *Error {
	return &Error{
		Phase:  PhaseAlloc,
		Kind:   KindUnknownPointer,
		Detail: fmt.Sprintf("deallocate(%#x, %d): address was not allocated", ptr, size),
		Value:  ptr,
	}
}

// DoubleFree creates an error for releasing an address twice
func DoubleFree(ptr, size uint32) *Error {
	return &Error{
		Phase:  PhaseAlloc,
		Kind:   KindDoubleFree,
		Detail: fmt.Sprintf("deallocate(%#x, %d): address already released", ptr, size),
		Value:  ptr,
	}
}

// SizeMismatch creates an error for releasing with a size other than the allocated one
func SizeMismatch(ptr, size, allocated uint32) *Error {
	return &Error{
		Phase:  PhaseAlloc,
		Kind:   KindSizeMismatch,
		Detail: fmt.Sprintf("deallocate(%#x, %d): allocated with size %d", ptr, size, allocated),
		Value:  size,
	}
}

// GuestPanic creates an error carrying a message forwarded by the guest
func GuestPanic(message string, cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindGuestPanic,
		Detail: message,
		Cause:  cause,
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

// NotInitialized creates a not-initialized error for missing module/instance
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInstantiation,
		Detail: "instantiate guest module",
		Cause:  cause,
	}
}

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}
