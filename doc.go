// Package argon2wasm provides a minimal boundary for running Argon2 inside a
// WebAssembly guest and calling it from a host that has no native
// password-hashing primitive.
//
// The guest owns all memory that crosses the boundary. The host stages
// inputs through the guest allocator, calls hash or verify, reads the result
// and releases every buffer it holds.
//
// # Architecture Overview
//
//	argon2wasm/          Root package with core Memory and Allocator interfaces
//	├── arena/           Boundary allocator (linear arena, pinned guest heap)
//	├── kdf/             Parameter codec, Argon2 derivation, PHC strings, verify
//	├── failure/         Process-wide failure forwarder
//	├── boundary/        The five raw entry points over an allocator
//	├── engine/          wazero loader for the compiled guest
//	├── runtime/         High-level Hash/Verify API over any guest
//	├── errors/          Structured error types
//	└── cmd/
//	    ├── argon2-guest/  wasip1 guest exporting the boundary
//	    └── argon2/        CLI and interactive TUI
//
// # Guest Surface
//
//	allocate(size) -> ptr
//	deallocate(ptr, size)
//	hash(pw_ptr, pw_len, salt_ptr, salt_len, algorithm, m_exp, t, p, out_len, version) -> ptr
//	verify(pw_ptr, pw_len, hash_ptr, hash_len) -> bool
//	init()
//
// and imports env.panic(msg_ptr, msg_len), called with a UTF-8 message when
// the guest hits an unrecoverable error.
//
// # Quick Start
//
//	h, err := runtime.New(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Close(ctx)
//
//	encoded, err := h.Hash(ctx, "correct horse", runtime.DefaultParams())
//	ok, err := h.Verify(ctx, "correct horse", encoded)
//
// runtime.NewNative runs the same boundary in-process without wazero.
//
// # Thread Safety
//
// The boundary contract is single-threaded. runtime.Hasher serializes calls;
// arena and boundary types must not be shared between goroutines.
//
// # Memory Model
//
// WASM linear memory can only grow, never shrink. Released buffers are
// reused by later allocations within the same instance.
package argon2wasm
