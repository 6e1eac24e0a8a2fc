package engine

import (
	"github.com/tetratelabs/wazero/api"

	argon2wasm "github.com/wippyai/argon2-wasm"
	"github.com/wippyai/argon2-wasm/errors"
)

// WrapMemory adapts a wazero memory to argon2wasm.Memory.
func WrapMemory(mem api.Memory) *Memory {
	if mem == nil {
		return nil
	}
	return &Memory{mem: mem}
}

// Memory adapts wazero api.Memory to the argon2wasm.Memory interface.
type Memory struct {
	mem api.Memory
}

var (
	_ argon2wasm.Memory      = (*Memory)(nil)
	_ argon2wasm.MemorySizer = (*Memory)(nil)
)

func (m *Memory) outOfBounds(offset, length uint32) error {
	return errors.OutOfBounds(errors.PhaseHost, offset, length, m.mem.Size())
}

// Read returns a view of guest memory. The view is invalidated when the
// guest grows its memory.
func (m *Memory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, m.outOfBounds(offset, length)
	}
	return data, nil
}

// Write copies data into guest memory.
func (m *Memory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return m.outOfBounds(offset, uint32(len(data)))
	}
	return nil
}

// ReadU8 reads an unsigned 8-bit value.
func (m *Memory) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.mem.ReadByte(offset)
	if !ok {
		return 0, m.outOfBounds(offset, 1)
	}
	return v, nil
}

// ReadU16 reads an unsigned 16-bit little-endian value.
func (m *Memory) ReadU16(offset uint32) (uint16, error) {
	v, ok := m.mem.ReadUint16Le(offset)
	if !ok {
		return 0, m.outOfBounds(offset, 2)
	}
	return v, nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (m *Memory) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, m.outOfBounds(offset, 4)
	}
	return v, nil
}

// ReadU64 reads an unsigned 64-bit little-endian value.
func (m *Memory) ReadU64(offset uint32) (uint64, error) {
	v, ok := m.mem.ReadUint64Le(offset)
	if !ok {
		return 0, m.outOfBounds(offset, 8)
	}
	return v, nil
}

// WriteU8 writes an unsigned 8-bit value.
func (m *Memory) WriteU8(offset uint32, value uint8) error {
	if !m.mem.WriteByte(offset, value) {
		return m.outOfBounds(offset, 1)
	}
	return nil
}

// WriteU16 writes an unsigned 16-bit little-endian value.
func (m *Memory) WriteU16(offset uint32, value uint16) error {
	if !m.mem.WriteUint16Le(offset, value) {
		return m.outOfBounds(offset, 2)
	}
	return nil
}

// WriteU32 writes an unsigned 32-bit little-endian value.
func (m *Memory) WriteU32(offset uint32, value uint32) error {
	if !m.mem.WriteUint32Le(offset, value) {
		return m.outOfBounds(offset, 4)
	}
	return nil
}

// WriteU64 writes an unsigned 64-bit little-endian value.
func (m *Memory) WriteU64(offset uint32, value uint64) error {
	if !m.mem.WriteUint64Le(offset, value) {
		return m.outOfBounds(offset, 8)
	}
	return nil
}

// Size returns the current memory size in bytes.
func (m *Memory) Size() uint32 {
	if m.mem == nil {
		return 0
	}
	return m.mem.Size()
}
