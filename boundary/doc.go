// Package boundary exposes the guest entry points over integer arguments.
//
// The surface mirrors what a host sees across the wasm boundary:
//
//	init()
//	allocate(size) -> ptr
//	deallocate(ptr, size)
//	hash(pwd_ptr, pwd_len, salt_ptr, salt_len, alg, m_exp, t, p, out_len, ver) -> ptr
//	verify(pwd_ptr, pwd_len, hash_ptr, hash_len) -> 0 | 1
//
// Entry points have no error result. Invalid parameters, allocation
// failure, allocator misuse, and (with StrictDecode) an encoded hash that
// fails to parse all panic. failure.Forward reports the panic to the sink
// installed by Init before the call terminates.
//
// [Local] wraps a Boundary over an arena.Arena for in-process hosts and
// returns panics as errors of kind guest_panic.
package boundary
