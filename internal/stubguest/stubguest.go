// Package stubguest holds hand-encoded guest modules for tests.
package stubguest

// WASM exports the guest surface with trivial bodies:
// allocate returns 1024, verify returns its second argument and hash
// forwards "boom" (stored at 16) through env.panic.
var WASM = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, 0x01, 0x24, 0x05, 0x60,
	0x02, 0x7f, 0x7f, 0x00, 0x60, 0x00, 0x00, 0x60, 0x01, 0x7f, 0x01, 0x7f,
	0x60, 0x0a, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f,
	0x01, 0x7f, 0x60, 0x04, 0x7f, 0x7f, 0x7f, 0x7f, 0x01, 0x7f, 0x02, 0x0d,
	0x01, 0x03, 0x65, 0x6e, 0x76, 0x05, 0x70, 0x61, 0x6e, 0x69, 0x63, 0x00,
	0x00, 0x03, 0x06, 0x05, 0x01, 0x02, 0x00, 0x03, 0x04, 0x05, 0x03, 0x01,
	0x00, 0x01, 0x07, 0x39, 0x06, 0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79,
	0x02, 0x00, 0x04, 0x69, 0x6e, 0x69, 0x74, 0x00, 0x01, 0x08, 0x61, 0x6c,
	0x6c, 0x6f, 0x63, 0x61, 0x74, 0x65, 0x00, 0x02, 0x0a, 0x64, 0x65, 0x61,
	0x6c, 0x6c, 0x6f, 0x63, 0x61, 0x74, 0x65, 0x00, 0x03, 0x04, 0x68, 0x61,
	0x73, 0x68, 0x00, 0x04, 0x06, 0x76, 0x65, 0x72, 0x69, 0x66, 0x79, 0x00,
	0x05, 0x0a, 0x1d, 0x05, 0x02, 0x00, 0x0b, 0x05, 0x00, 0x41, 0x80, 0x08,
	0x0b, 0x02, 0x00, 0x0b, 0x0a, 0x00, 0x41, 0x10, 0x41, 0x04, 0x10, 0x00,
	0x41, 0x00, 0x0b, 0x04, 0x00, 0x20, 0x01, 0x0b, 0x0b, 0x0a, 0x01, 0x00,
	0x41, 0x10, 0x0b, 0x04, 0x62, 0x6f, 0x6f, 0x6d,}

// BadVerifyWASM is WASM with verify typed (i32) -> i32.
var BadVerifyWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, 0x01, 0x24, 0x05, 0x60,
	0x02, 0x7f, 0x7f, 0x00, 0x60, 0x00, 0x00, 0x60, 0x01, 0x7f, 0x01, 0x7f,
	0x60, 0x0a, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f,
	0x01, 0x7f, 0x60, 0x04, 0x7f, 0x7f, 0x7f, 0x7f, 0x01, 0x7f, 0x02, 0x0d,
	0x01, 0x03, 0x65, 0x6e, 0x76, 0x05, 0x70, 0x61, 0x6e, 0x69, 0x63, 0x00,
	0x00, 0x03, 0x06, 0x05, 0x01, 0x02, 0x00, 0x03, 0x02, 0x05, 0x03, 0x01,
	0x00, 0x01, 0x07, 0x39, 0x06, 0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79,
	0x02, 0x00, 0x04, 0x69, 0x6e, 0x69, 0x74, 0x00, 0x01, 0x08, 0x61, 0x6c,
	0x6c, 0x6f, 0x63, 0x61, 0x74, 0x65, 0x00, 0x02, 0x0a, 0x64, 0x65, 0x61,
	0x6c, 0x6c, 0x6f, 0x63, 0x61, 0x74, 0x65, 0x00, 0x03, 0x04, 0x68, 0x61,
	0x73, 0x68, 0x00, 0x04, 0x06, 0x76, 0x65, 0x72, 0x69, 0x66, 0x79, 0x00,
	0x05, 0x0a, 0x1d, 0x05, 0x02, 0x00, 0x0b, 0x05, 0x00, 0x41, 0x80, 0x08,
	0x0b, 0x02, 0x00, 0x0b, 0x0a, 0x00, 0x41, 0x10, 0x41, 0x04, 0x10, 0x00,
	0x41, 0x00, 0x0b, 0x04, 0x00, 0x20, 0x00, 0x0b, 0x0b, 0x0a, 0x01, 0x00,
	0x41, 0x10, 0x0b, 0x04, 0x62, 0x6f, 0x6f, 0x6d,}

// AddWASM exports a single add function and no memory.
var AddWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	// Type section: (i32, i32) -> i32
	0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f,
	// Function section: func 0 uses type 0
	0x03, 0x02, 0x01, 0x00,
	// Export section: "add" -> func 0
	0x07, 0x07, 0x01, 0x03, 0x61, 0x64, 0x64, 0x00, 0x00,
	// Code section: local.get 0 + local.get 1 = i32.add
	0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b,
}
