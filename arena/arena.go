package arena

import (
	"encoding/binary"
	"sort"

	argon2wasm "github.com/wippyai/argon2-wasm"
	"github.com/wippyai/argon2-wasm/errors"
)

const (
	// PageSize matches the WebAssembly page size.
	PageSize = 65536

	// DefaultMaxPages caps an arena at 1 GiB.
	DefaultMaxPages = 16384

	// maxPages keeps the arena size representable as uint32.
	maxPages = 65535
)

// Config holds arena sizing.
type Config struct {
	// InitialPages is the number of pages reserved up front. 0 means 1.
	InitialPages uint32

	// MaxPages bounds growth. 0 means DefaultMaxPages.
	MaxPages uint32
}

type span struct {
	off  uint32
	size uint32
}

// Arena is a growable byte arena addressed by uint32 offsets.
// Offset 0 is never handed out and acts as the null address.
type Arena struct {
	reg      *registry
	mem      []byte
	free     []span // sorted by offset, never adjacent
	maxPages uint32
}

var (
	_ argon2wasm.Allocator   = (*Arena)(nil)
	_ argon2wasm.Memory      = (*Arena)(nil)
	_ argon2wasm.MemorySizer = (*Arena)(nil)
)

// New creates an arena with one page and the default growth limit.
func New() *Arena {
	return NewWithConfig(nil)
}

// NewWithConfig creates an arena with custom sizing.
func NewWithConfig(cfg *Config) *Arena {
	initial, limit := uint32(1), uint32(DefaultMaxPages)
	if cfg != nil {
		if cfg.InitialPages > 0 {
			initial = cfg.InitialPages
		}
		if cfg.MaxPages > 0 {
			limit = cfg.MaxPages
		}
	}
	if limit > maxPages {
		limit = maxPages
	}
	if initial > limit {
		initial = limit
	}

	a := &Arena{
		reg:      newRegistry(),
		mem:      make([]byte, int(initial)*PageSize),
		maxPages: limit,
	}
	a.free = []span{{off: argon2wasm.WordAlign, size: uint32(len(a.mem)) - argon2wasm.WordAlign}}
	return a
}

// Allocate reserves size bytes aligned to argon2wasm.WordAlign and returns
// the offset of the first byte. The arena grows by whole pages when no free
// span is large enough.
func (a *Arena) Allocate(size uint32) (uint32, error) {
	n, ok := extent(size)
	if !ok {
		return 0, errors.AllocationFailed(errors.PhaseAlloc, size, argon2wasm.WordAlign)
	}

	idx := a.firstFit(n)
	if idx < 0 {
		if err := a.growFor(n); err != nil {
			return 0, errors.New(errors.PhaseAlloc, errors.KindAllocation).
				Value(size).
				Detail("failed to allocate %d bytes (align %d)", size, argon2wasm.WordAlign).
				Cause(err).
				Build()
		}
		idx = a.firstFit(n)
	}

	s := &a.free[idx]
	ptr := s.off
	s.off += n
	s.size -= n
	if s.size == 0 {
		a.free = append(a.free[:idx], a.free[idx+1:]...)
	}

	a.reg.add(ptr, size)
	return ptr, nil
}

// Deallocate releases the buffer created by Allocate(size) at ptr.
// The released bytes are zeroed and merged with neighbouring free spans.
func (a *Arena) Deallocate(ptr, size uint32) error {
	if err := a.reg.release(ptr, size); err != nil {
		return err
	}

	n, _ := extent(size)
	clear(a.mem[ptr : ptr+n])
	a.insertFree(span{off: ptr, size: n})
	return nil
}

// Live returns the number of buffers that have not been released.
func (a *Arena) Live() int {
	return a.reg.len()
}

// FreeBytes returns the number of bytes available without growing.
func (a *Arena) FreeBytes() uint32 {
	var total uint32
	for _, s := range a.free {
		total += s.size
	}
	return total
}

// Size returns the current arena size in bytes.
func (a *Arena) Size() uint32 {
	return uint32(len(a.mem))
}

// Pages returns the current arena size in pages.
func (a *Arena) Pages() uint32 {
	return uint32(len(a.mem) / PageSize)
}

func (a *Arena) firstFit(n uint32) int {
	for i, s := range a.free {
		if s.size >= n {
			return i
		}
	}
	return -1
}

func (a *Arena) growFor(n uint32) error {
	size := uint64(len(a.mem))
	need := uint64(n)
	if last := len(a.free) - 1; last >= 0 {
		s := a.free[last]
		if uint64(s.off)+uint64(s.size) == size {
			need -= uint64(s.size)
		}
	}

	pages := (need + PageSize - 1) / PageSize
	current := size / PageSize
	if current+pages > uint64(a.maxPages) {
		return errors.New(errors.PhaseAlloc, errors.KindAllocation).
			Detail("arena limit reached: %d pages in use, %d more needed, max %d", current, pages, a.maxPages).
			Build()
	}

	a.mem = append(a.mem, make([]byte, int(pages)*PageSize)...)
	a.insertFree(span{off: uint32(size), size: uint32(pages * PageSize)})
	return nil
}

func (a *Arena) insertFree(s span) {
	i := sort.Search(len(a.free), func(i int) bool { return a.free[i].off > s.off })
	a.free = append(a.free, span{})
	copy(a.free[i+1:], a.free[i:])
	a.free[i] = s

	if i+1 < len(a.free) && a.free[i].off+a.free[i].size == a.free[i+1].off {
		a.free[i].size += a.free[i+1].size
		a.free = append(a.free[:i+1], a.free[i+2:]...)
	}
	if i > 0 && a.free[i-1].off+a.free[i-1].size == a.free[i].off {
		a.free[i-1].size += a.free[i].size
		a.free = append(a.free[:i], a.free[i+1:]...)
	}
}

func (a *Arena) bounds(offset, length uint32) error {
	if uint64(offset)+uint64(length) > uint64(len(a.mem)) {
		return errors.OutOfBounds(errors.PhaseRuntime, offset, length, uint32(len(a.mem)))
	}
	return nil
}

// Read returns a view of length bytes at offset. The view is invalidated
// by the next Allocate that grows the arena.
func (a *Arena) Read(offset uint32, length uint32) ([]byte, error) {
	if err := a.bounds(offset, length); err != nil {
		return nil, err
	}
	return a.mem[offset : offset+length : offset+length], nil
}

// Write copies data into the arena at offset.
func (a *Arena) Write(offset uint32, data []byte) error {
	if err := a.bounds(offset, uint32(len(data))); err != nil {
		return err
	}
	copy(a.mem[offset:], data)
	return nil
}

// ReadU8 reads an unsigned 8-bit value.
func (a *Arena) ReadU8(offset uint32) (uint8, error) {
	if err := a.bounds(offset, 1); err != nil {
		return 0, err
	}
	return a.mem[offset], nil
}

// ReadU16 reads an unsigned 16-bit little-endian value.
func (a *Arena) ReadU16(offset uint32) (uint16, error) {
	if err := a.bounds(offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(a.mem[offset:]), nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (a *Arena) ReadU32(offset uint32) (uint32, error) {
	if err := a.bounds(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(a.mem[offset:]), nil
}

// ReadU64 reads an unsigned 64-bit little-endian value.
func (a *Arena) ReadU64(offset uint32) (uint64, error) {
	if err := a.bounds(offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(a.mem[offset:]), nil
}

// WriteU8 writes an unsigned 8-bit value.
func (a *Arena) WriteU8(offset uint32, value uint8) error {
	if err := a.bounds(offset, 1); err != nil {
		return err
	}
	a.mem[offset] = value
	return nil
}

// WriteU16 writes an unsigned 16-bit little-endian value.
func (a *Arena) WriteU16(offset uint32, value uint16) error {
	if err := a.bounds(offset, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(a.mem[offset:], value)
	return nil
}

// WriteU32 writes an unsigned 32-bit little-endian value.
func (a *Arena) WriteU32(offset uint32, value uint32) error {
	if err := a.bounds(offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(a.mem[offset:], value)
	return nil
}

// WriteU64 writes an unsigned 64-bit little-endian value.
func (a *Arena) WriteU64(offset uint32, value uint64) error {
	if err := a.bounds(offset, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(a.mem[offset:], value)
	return nil
}
