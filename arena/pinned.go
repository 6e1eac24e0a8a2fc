//go:build wasm

package arena

import (
	"unsafe"

	argon2wasm "github.com/wippyai/argon2-wasm"
	"github.com/wippyai/argon2-wasm/errors"
)

// Pinned allocates buffers on the Go heap of a wasm guest. Each buffer stays
// reachable from the allocator until released, so the collector never frees
// memory the host still addresses. The Go collector does not move objects,
// which keeps addresses stable.
type Pinned struct {
	reg  *registry
	bufs map[uint32][]byte
}

var _ argon2wasm.Allocator = (*Pinned)(nil)

// NewPinned creates an empty guest allocator.
func NewPinned() *Pinned {
	return &Pinned{
		reg:  newRegistry(),
		bufs: make(map[uint32][]byte),
	}
}

// Allocate returns the linear-memory address of a fresh word-aligned buffer.
func (p *Pinned) Allocate(size uint32) (uint32, error) {
	n, ok := extent(size)
	if !ok {
		return 0, errors.AllocationFailed(errors.PhaseAlloc, size, argon2wasm.WordAlign)
	}

	words := make([]uint32, n/argon2wasm.WordAlign)
	buf := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), n)
	ptr := uint32(uintptr(unsafe.Pointer(unsafe.SliceData(buf))))

	p.bufs[ptr] = buf
	p.reg.add(ptr, size)
	return ptr, nil
}

// Deallocate zeroes and drops the buffer at ptr.
func (p *Pinned) Deallocate(ptr, size uint32) error {
	if err := p.reg.release(ptr, size); err != nil {
		return err
	}
	clear(p.bufs[ptr])
	delete(p.bufs, ptr)
	return nil
}

// Live returns the number of buffers that have not been released.
func (p *Pinned) Live() int {
	return p.reg.len()
}

// view resolves [offset, offset+length) to the live buffer that contains it.
func (p *Pinned) view(offset, length uint32) ([]byte, error) {
	if length == 0 {
		return []byte{}, nil
	}
	end := uint64(offset) + uint64(length)
	for base, buf := range p.bufs {
		if offset >= base && end <= uint64(base)+uint64(len(buf)) {
			start := offset - base
			return buf[start : start+length : start+length], nil
		}
	}
	return nil, errors.New(errors.PhaseRuntime, errors.KindOutOfBounds).
		Value(offset).
		Detail("no live buffer contains [%d, %d)", offset, end).
		Build()
}

// Read returns a view of length bytes at offset inside a live buffer.
func (p *Pinned) Read(offset uint32, length uint32) ([]byte, error) {
	return p.view(offset, length)
}

// Write copies data into a live buffer at offset.
func (p *Pinned) Write(offset uint32, data []byte) error {
	dst, err := p.view(offset, uint32(len(data)))
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}
