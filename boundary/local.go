package boundary

import (
	"context"

	argon2wasm "github.com/wippyai/argon2-wasm"
	"github.com/wippyai/argon2-wasm/arena"
	"github.com/wippyai/argon2-wasm/errors"
	"github.com/wippyai/argon2-wasm/failure"
)

// Local runs the boundary in-process over an arena.Arena. It exposes the
// same call shape as a loaded guest instance, with panics from the entry
// points returned as errors.
type Local struct {
	arena *arena.Arena
	b     *Boundary
}

// NewLocal creates an in-process boundary. Nil arguments select defaults.
func NewLocal(opts *Options, cfg *arena.Config) *Local {
	a := arena.NewWithConfig(cfg)
	l := &Local{arena: a, b: New(a, opts)}
	l.b.Init()
	return l
}

// Memory returns the arena shared with the caller.
func (l *Local) Memory() argon2wasm.Memory {
	return l.arena
}

// Arena returns the underlying arena.
func (l *Local) Arena() *arena.Arena {
	return l.arena
}

// Allocate calls the allocate entry point.
func (l *Local) Allocate(ctx context.Context, size uint32) (ptr uint32, err error) {
	err = l.call(ctx, func() { ptr = l.b.Allocate(size) })
	return ptr, err
}

// Deallocate calls the deallocate entry point.
func (l *Local) Deallocate(ctx context.Context, ptr, size uint32) error {
	return l.call(ctx, func() { l.b.Deallocate(ptr, size) })
}

// Hash calls the hash entry point.
func (l *Local) Hash(ctx context.Context, args HashArgs) (ptr uint32, err error) {
	err = l.call(ctx, func() { ptr = l.b.HashCall(args) })
	return ptr, err
}

// Verify calls the verify entry point.
func (l *Local) Verify(ctx context.Context, passwordPtr, passwordLen, hashPtr, hashLen uint32) (ok bool, err error) {
	err = l.call(ctx, func() { ok = l.b.Verify(passwordPtr, passwordLen, hashPtr, hashLen) == 1 })
	return ok, err
}

// Close is a no-op; the arena is reclaimed by the collector.
func (l *Local) Close(context.Context) error {
	return nil
}

func (l *Local) call(ctx context.Context, fn func()) (err error) {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.PhaseRuntime, errors.KindInvalidInput, err, "context done before call")
	}
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	fn()
	return nil
}

// panicError converts a recovered entry point panic into a guest_panic
// error. An error value stays the cause and is not repeated in the detail.
func panicError(r any) error {
	if cause, ok := r.(error); ok {
		return errors.GuestPanic("entry point failed", cause)
	}
	return errors.GuestPanic(failure.Message(r), nil)
}
