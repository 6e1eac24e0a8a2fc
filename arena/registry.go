package arena

import (
	"math"

	argon2wasm "github.com/wippyai/argon2-wasm"
	"github.com/wippyai/argon2-wasm/errors"
)

// registry records the size of every live allocation so that releases can
// be checked against what was handed out.
type registry struct {
	live     map[uint32]uint32
	released map[uint32]struct{}
}

func newRegistry() *registry {
	return &registry{
		live:     make(map[uint32]uint32),
		released: make(map[uint32]struct{}),
	}
}

func (r *registry) add(ptr, size uint32) {
	r.live[ptr] = size
	delete(r.released, ptr)
}

func (r *registry) release(ptr, size uint32) error {
	allocated, ok := r.live[ptr]
	if !ok {
		if _, freed := r.released[ptr]; freed {
			return errors.DoubleFree(ptr, size)
		}
		return errors.UnknownPointer(ptr, size)
	}
	if allocated != size {
		return errors.SizeMismatch(ptr, size, allocated)
	}
	delete(r.live, ptr)
	r.released[ptr] = struct{}{}
	return nil
}

func (r *registry) len() int {
	return len(r.live)
}

// extent returns the number of bytes reserved for a request of size bytes.
// Zero-sized requests still reserve a word so every capability is distinct.
func extent(size uint32) (uint32, bool) {
	if size == 0 {
		return argon2wasm.WordAlign, true
	}
	n := (uint64(size) + argon2wasm.WordAlign - 1) &^ (argon2wasm.WordAlign - 1)
	if n > math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}
