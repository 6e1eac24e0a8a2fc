// Package arena implements the boundary allocator shared by host and guest.
//
// Two allocators satisfy argon2wasm.Allocator:
//
//	Arena   - a single growable byte arena addressed by uint32 offsets.
//	          Used when the boundary runs in-process and in tests.
//	Pinned  - the wasm guest's allocator. Each buffer is a Go slice kept
//	          reachable until released; its address is the linear-memory
//	          address handed to the host. Built only for GOARCH=wasm.
//
// # Ownership
//
// Allocate hands out a capability (ptr, size). Whoever holds it owns the
// buffer until calling Deallocate with exactly the same pair. There is no
// implicit collection.
//
// # Misuse Detection
//
// Both allocators keep a size registry. Releasing an address that was never
// allocated, releasing it twice, or releasing it with a different size
// returns an error instead of corrupting the arena:
//
//	ptr, _ := a.Allocate(16)
//	err := a.Deallocate(ptr, 8)  // KindSizeMismatch
//	_ = a.Deallocate(ptr, 16)    // ok
//	err = a.Deallocate(ptr, 16)  // KindDoubleFree
//
// Allocators are not safe for concurrent use.
package arena
