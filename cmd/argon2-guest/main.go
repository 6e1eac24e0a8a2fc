//go:build wasip1

// Command argon2-guest is the wasm module exposing the Argon2 boundary.
//
// Build it as a WASI reactor:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o argon2.wasm ./cmd/argon2-guest
//
// The host must run _initialize, then init, before any other export.
package main

import (
	"unsafe"

	"github.com/wippyai/argon2-wasm/arena"
	"github.com/wippyai/argon2-wasm/boundary"
)

var guest = boundary.New(arena.NewPinned(), &boundary.Options{
	Sink:         forward,
	StrictDecode: true,
})

//go:wasmimport env panic
func hostPanic(message unsafe.Pointer, length uint32)

// forward hands a failure message to the host. The string stays reachable
// for the duration of the call.
func forward(message string) {
	if message == "" {
		hostPanic(nil, 0)
		return
	}
	hostPanic(unsafe.Pointer(unsafe.StringData(message)), uint32(len(message)))
}

//go:wasmexport init
func initBoundary() {
	guest.Init()
}

//go:wasmexport allocate
func allocate(size uint32) uint32 {
	return guest.Allocate(size)
}

//go:wasmexport deallocate
func deallocate(ptr, size uint32) {
	guest.Deallocate(ptr, size)
}

//go:wasmexport hash
func hash(
	passwordPtr, passwordLen uint32,
	saltPtr, saltLen uint32,
	algorithm uint32,
	memoryExponent, timeCost, parallelism uint32,
	outputLength uint32,
	version uint32,
) uint32 {
	return guest.Hash(passwordPtr, passwordLen, saltPtr, saltLen,
		algorithm, memoryExponent, timeCost, parallelism, outputLength, version)
}

//go:wasmexport verify
func verify(passwordPtr, passwordLen, hashPtr, hashLen uint32) uint32 {
	return guest.Verify(passwordPtr, passwordLen, hashPtr, hashLen)
}

func main() {}
