// Package runtime provides the high-level API for hashing and verifying
// passwords through the argon2 guest.
//
// # Quick Start
//
//	ctx := context.Background()
//	h, err := runtime.New(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Close(ctx)
//
//	encoded, err := h.Hash(ctx, "password", runtime.DefaultParams())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(encoded) // $argon2id$v=19$m=4096,t=3,p=1$...
//
//	ok, err := h.Verify(ctx, "password", encoded)
//
// # Guests
//
// A Hasher drives any Guest:
//
//	runtime.New(ctx, wasm)  - compiled guest on wazero (*engine.Instance)
//	runtime.NewNative()     - the same boundary in-process (*boundary.Local)
//
// Every call stages its inputs in guest memory, invokes the entry point and
// releases each buffer it allocated. A loaded guest that panics is replaced
// with a fresh instance of the same module.
//
// # Parameters
//
// Params carry the integer codes the guest receives. MemoryCost is an
// exponent: 12 means 1<<12 KiB. Unknown algorithm or version codes select
// argon2id and version 19. A YAML profile overrides DefaultParams:
//
//	algorithm: argon2id
//	version: 19
//	memory_cost: 16
//	time_cost: 3
//	parallelism: 2
//	output_length: 32
//
// # Verification
//
// A wrong password is (false, nil), and so is a well-formed encoded hash
// whose costs or salt cannot be derived. An encoded hash that fails to
// parse is an error unless the Hasher was created WithLenientVerify, in
// which case it is reported as false.
package runtime
