package argon2wasm

// WordAlign is the alignment of every boundary allocation: the natural
// word size of the wasm32 guest.
const WordAlign = 4

// Memory represents the guest address space shared with the host
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU16(offset uint32) (uint16, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU16(offset uint32, value uint16) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer provides the current size of guest memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Allocator hands out word-aligned buffers in guest memory.
// A buffer is released with exactly the (ptr, size) pair that created it.
type Allocator interface {
	Allocate(size uint32) (uint32, error)
	Deallocate(ptr, size uint32) error
}
