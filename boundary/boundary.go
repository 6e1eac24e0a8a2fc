package boundary

import (
	stderrors "errors"

	argon2wasm "github.com/wippyai/argon2-wasm"
	"github.com/wippyai/argon2-wasm/errors"
	"github.com/wippyai/argon2-wasm/failure"
	"github.com/wippyai/argon2-wasm/kdf"
)

// Heap is the address space the boundary works on: an allocator plus a
// byte view of what it hands out.
type Heap interface {
	argon2wasm.Allocator
	Read(offset uint32, length uint32) ([]byte, error)
}

// Options configures a Boundary.
type Options struct {
	// Sink receives forwarded failure messages once Init has run.
	Sink failure.Sink

	// StrictDecode makes an encoded hash that fails to parse fatal in
	// Verify. When false, Verify returns 0 for it instead.
	StrictDecode bool
}

// DefaultOptions returns strict decoding and no sink.
func DefaultOptions() *Options {
	return &Options{StrictDecode: true}
}

// HashArgs are the arguments of the hash entry point in call order.
type HashArgs struct {
	PasswordPtr    uint32
	PasswordLen    uint32
	SaltPtr        uint32
	SaltLen        uint32
	Algorithm      uint32
	MemoryExponent uint32
	TimeCost       uint32
	Parallelism    uint32
	OutputLength   uint32
	Version        uint32
}

// Values returns the arguments as a slice in call order.
func (a HashArgs) Values() []uint32 {
	return []uint32{
		a.PasswordPtr, a.PasswordLen,
		a.SaltPtr, a.SaltLen,
		a.Algorithm, a.MemoryExponent, a.TimeCost, a.Parallelism,
		a.OutputLength, a.Version,
	}
}

// Boundary implements the five entry points over a Heap. Entry points take
// and return only integers and fail by panicking; each defers
// failure.Forward so the message reaches the installed sink first.
type Boundary struct {
	heap Heap
	opts Options
}

// New creates a boundary over heap. A nil opts means DefaultOptions.
func New(heap Heap, opts *Options) *Boundary {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Boundary{heap: heap, opts: *opts}
}

// Init installs the failure forwarder. Repeated calls are harmless.
func (b *Boundary) Init() {
	failure.Install(b.opts.Sink)
}

// Allocate reserves size bytes and returns their address.
func (b *Boundary) Allocate(size uint32) uint32 {
	defer failure.Forward()
	return b.allocate(size)
}

// Deallocate releases exactly the (ptr, size) pair Allocate produced.
func (b *Boundary) Deallocate(ptr, size uint32) {
	defer failure.Forward()
	if err := b.heap.Deallocate(ptr, size); err != nil {
		panic(err)
	}
}

// Hash derives outputLength bytes into a fresh buffer and returns its
// address. The caller owns the buffer and releases it with
// Deallocate(address, outputLength).
func (b *Boundary) Hash(
	passwordPtr, passwordLen uint32,
	saltPtr, saltLen uint32,
	algorithmCode uint32,
	memoryExponent, timeCost, parallelism uint32,
	outputLength uint32,
	versionCode uint32,
) uint32 {
	defer failure.Forward()

	alg, ver := kdf.Decode(algorithmCode, versionCode)
	params, err := kdf.NewParams(memoryExponent, timeCost, parallelism, outputLength)
	if err != nil {
		panic(err)
	}

	ptr := b.allocate(outputLength)
	out, err := b.heap.Read(ptr, outputLength)
	if err == nil {
		var password, salt []byte
		if password, err = b.read("password", passwordPtr, passwordLen); err == nil {
			if salt, err = b.read("salt", saltPtr, saltLen); err == nil {
				err = kdf.HashInto(out, password, salt, alg, ver, params)
			}
		}
	}
	if err != nil {
		_ = b.heap.Deallocate(ptr, outputLength)
		panic(err)
	}
	return ptr
}

// HashCall is Hash with its arguments in a struct.
func (b *Boundary) HashCall(a HashArgs) uint32 {
	return b.Hash(a.PasswordPtr, a.PasswordLen, a.SaltPtr, a.SaltLen,
		a.Algorithm, a.MemoryExponent, a.TimeCost, a.Parallelism,
		a.OutputLength, a.Version)
}

// Verify returns 1 when the password matches the encoded hash and 0
// otherwise. Only a string that fails to parse is fatal, and only under
// StrictDecode.
func (b *Boundary) Verify(passwordPtr, passwordLen, hashPtr, hashLen uint32) uint32 {
	defer failure.Forward()

	password, err := b.read("password", passwordPtr, passwordLen)
	if err != nil {
		panic(err)
	}
	encoded, err := b.read("hash", hashPtr, hashLen)
	if err != nil {
		panic(err)
	}

	ok, err := kdf.Verify(password, encoded)
	switch {
	case err == nil:
	case stderrors.Is(err, errors.ErrInvalidParams):
		// Well-formed but not derivable: it can never match.
		return 0
	case b.opts.StrictDecode:
		panic(err)
	default:
		return 0
	}
	if ok {
		return 1
	}
	return 0
}

func (b *Boundary) allocate(size uint32) uint32 {
	ptr, err := b.heap.Allocate(size)
	if err != nil {
		panic(err)
	}
	return ptr
}

func (b *Boundary) read(field string, ptr, length uint32) ([]byte, error) {
	data, err := b.heap.Read(ptr, length)
	if err != nil {
		return nil, errors.New(errors.PhaseRuntime, errors.KindOutOfBounds).
			Field(field).
			Value(ptr).
			Detail("argument [%d, +%d) is not readable", ptr, length).
			Cause(err).
			Build()
	}
	return data, nil
}
