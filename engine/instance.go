package engine

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	argon2wasm "github.com/wippyai/argon2-wasm"
	"github.com/wippyai/argon2-wasm/boundary"
	"github.com/wippyai/argon2-wasm/errors"
)

// Instance is a running guest. Its methods map one to one onto the guest
// exports. Not safe for concurrent use.
type Instance struct {
	module       api.Module
	memory       *Memory
	initFn       api.Function
	allocateFn   api.Function
	deallocateFn api.Function
	hashFn       api.Function
	verifyFn     api.Function
	stack        []uint64

	mu       sync.Mutex
	failure  string
	poisoned bool
}

func newInstance(mod api.Module) *Instance {
	return &Instance{
		module:       mod,
		memory:       WrapMemory(mod.ExportedMemory(ExportMemory)),
		initFn:       mod.ExportedFunction(ExportInit),
		allocateFn:   mod.ExportedFunction(ExportAllocate),
		deallocateFn: mod.ExportedFunction(ExportDeallocate),
		hashFn:       mod.ExportedFunction(ExportHash),
		verifyFn:     mod.ExportedFunction(ExportVerify),
		stack:        make([]uint64, 10),
	}
}

// Memory returns the guest's linear memory.
func (i *Instance) Memory() argon2wasm.Memory {
	return i.memory
}

// Allocate calls the allocate export.
func (i *Instance) Allocate(ctx context.Context, size uint32) (uint32, error) {
	i.stack[0] = api.EncodeU32(size)
	res, err := i.call(ctx, ExportAllocate, i.allocateFn, i.stack[:1]...)
	if err != nil {
		return 0, err
	}
	return api.DecodeU32(res[0]), nil
}

// Deallocate calls the deallocate export.
func (i *Instance) Deallocate(ctx context.Context, ptr, size uint32) error {
	i.stack[0] = api.EncodeU32(ptr)
	i.stack[1] = api.EncodeU32(size)
	_, err := i.call(ctx, ExportDeallocate, i.deallocateFn, i.stack[:2]...)
	return err
}

// Hash calls the hash export and returns the address of the output buffer.
func (i *Instance) Hash(ctx context.Context, args boundary.HashArgs) (uint32, error) {
	for n, v := range args.Values() {
		i.stack[n] = api.EncodeU32(v)
	}
	res, err := i.call(ctx, ExportHash, i.hashFn, i.stack[:10]...)
	if err != nil {
		return 0, err
	}
	return api.DecodeU32(res[0]), nil
}

// Verify calls the verify export.
func (i *Instance) Verify(ctx context.Context, passwordPtr, passwordLen, hashPtr, hashLen uint32) (bool, error) {
	i.stack[0] = api.EncodeU32(passwordPtr)
	i.stack[1] = api.EncodeU32(passwordLen)
	i.stack[2] = api.EncodeU32(hashPtr)
	i.stack[3] = api.EncodeU32(hashLen)
	res, err := i.call(ctx, ExportVerify, i.verifyFn, i.stack[:4]...)
	if err != nil {
		return false, err
	}
	return api.DecodeU32(res[0]) != 0, nil
}

// Failure returns the last message the guest forwarded, if any.
func (i *Instance) Failure() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.failure
}

// Poisoned reports whether a failed call left the guest unusable.
func (i *Instance) Poisoned() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.poisoned
}

// Close releases the guest instance.
func (i *Instance) Close(ctx context.Context) error {
	i.mu.Lock()
	i.poisoned = true
	mod := i.module
	i.module = nil
	i.mu.Unlock()

	if mod == nil {
		return nil
	}
	return mod.Close(ctx)
}

func (i *Instance) recordFailure(message string) {
	i.mu.Lock()
	i.failure = message
	i.mu.Unlock()
}

type instanceKey struct{}

func (i *Instance) call(ctx context.Context, name string, fn api.Function, params ...uint64) ([]uint64, error) {
	i.mu.Lock()
	poisoned, failure := i.poisoned, i.failure
	i.mu.Unlock()

	if poisoned {
		if failure != "" {
			return nil, errors.New(errors.PhaseRuntime, errors.KindNotInitialized).
				Detail("instance unusable after guest panic: %s", failure).
				Build()
		}
		return nil, errors.NotInitialized(errors.PhaseRuntime, "guest instance")
	}

	res, err := fn.Call(context.WithValue(ctx, instanceKey{}, i), params...)
	if err == nil {
		return res, nil
	}

	i.mu.Lock()
	i.poisoned = true
	failure = i.failure
	i.mu.Unlock()

	Logger().Debug("guest call failed",
		zap.String("export", name),
		zap.Bool("forwarded", failure != ""),
		zap.Error(err))

	if failure != "" {
		return nil, errors.GuestPanic(failure, err)
	}
	return nil, errors.New(errors.PhaseRuntime, errors.KindGuestPanic).
		Field(name).
		Detail("guest trapped without a message").
		Cause(err).
		Build()
}
