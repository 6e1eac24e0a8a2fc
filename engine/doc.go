// Package engine loads the argon2 guest module with wazero.
//
// # Architecture
//
//	Engine   - a wazero runtime with WASI preview1 and the env host module
//	Module   - a compiled guest whose exports have been checked
//	Instance - a running guest implementing the boundary calls
//
// # Instantiation Flow
//
//  1. Engine.Load compiles the binary and checks the memory export and
//     the signatures of init, allocate, deallocate, hash and verify.
//  2. Module.Instantiate runs the _initialize reactor hook, then init,
//     which installs the guest's failure forwarder.
//  3. Instance methods call exports with raw uint32 arguments.
//
// # Failure Forwarding
//
// The engine provides env.panic(ptr, len). When a guest entry point fails
// the guest calls it with a UTF-8 message. The host function logs the
// message, records it on the calling instance and aborts the call. The
// call then returns an error of kind guest_panic carrying the message:
//
//	ptr, err := inst.Hash(ctx, args)
//	if errors.Is(err, errors.ErrGuestPanic) {
//	    // err describes why the guest failed
//	}
//
// A guest that failed is left in an undefined state. The instance is
// poisoned and every later call fails; instantiate a new one.
//
// # Thread Safety
//
// Engine and Module are safe for concurrent use. An Instance is not: the
// guest allocator assumes a single caller.
package engine
