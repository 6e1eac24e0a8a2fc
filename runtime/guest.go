package runtime

import (
	"context"

	"go.uber.org/multierr"

	argon2wasm "github.com/wippyai/argon2-wasm"
	"github.com/wippyai/argon2-wasm/boundary"
	"github.com/wippyai/argon2-wasm/engine"
)

// Guest is the call surface of a boundary, loaded or in-process.
type Guest interface {
	Allocate(ctx context.Context, size uint32) (uint32, error)
	Deallocate(ctx context.Context, ptr, size uint32) error
	Hash(ctx context.Context, args boundary.HashArgs) (uint32, error)
	Verify(ctx context.Context, passwordPtr, passwordLen, hashPtr, hashLen uint32) (bool, error)
	Memory() argon2wasm.Memory
	Close(ctx context.Context) error
}

var (
	_ Guest = (*engine.Instance)(nil)
	_ Guest = (*boundary.Local)(nil)
)

// staged tracks the buffers written into a guest for one call.
type staged struct {
	guest Guest
	bufs  [][2]uint32
}

// put copies data into a freshly allocated guest buffer.
func (s *staged) put(ctx context.Context, data []byte) (uint32, uint32, error) {
	size := uint32(len(data))
	ptr, err := s.guest.Allocate(ctx, size)
	if err != nil {
		return 0, 0, err
	}
	s.bufs = append(s.bufs, [2]uint32{ptr, size})
	if err := s.guest.Memory().Write(ptr, data); err != nil {
		return 0, 0, err
	}
	return ptr, size, nil
}

// own records a buffer the guest allocated on the caller's behalf.
func (s *staged) own(ptr, size uint32) {
	s.bufs = append(s.bufs, [2]uint32{ptr, size})
}

// release frees every buffer in reverse order. Every failure is reported.
func (s *staged) release(ctx context.Context) (err error) {
	for i := len(s.bufs) - 1; i >= 0; i-- {
		err = multierr.Append(err, s.guest.Deallocate(ctx, s.bufs[i][0], s.bufs[i][1]))
	}
	s.bufs = nil
	return err
}

// drop forgets the buffers without releasing them.
func (s *staged) drop() {
	s.bufs = nil
}
