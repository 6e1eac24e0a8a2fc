package engine

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/argon2-wasm/errors"
)

// hostPanic implements env.panic(message_ptr, message_len). It records the
// message on the calling instance and aborts the guest call.
func hostPanic(ctx context.Context, mod api.Module, stack []uint64) {
	ptr, length := api.DecodeU32(stack[0]), api.DecodeU32(stack[1])

	message := readMessage(mod.Memory(), ptr, length)
	Logger().Error("guest panic",
		zap.String("module", mod.Name()),
		zap.String("message", message))

	if inst, ok := ctx.Value(instanceKey{}).(*Instance); ok {
		inst.recordFailure(message)
	}

	panic(errors.GuestPanic(message, nil))
}

func readMessage(mem api.Memory, ptr, length uint32) string {
	if mem == nil {
		return "guest panic: no memory"
	}
	data, ok := mem.Read(ptr, length)
	if !ok {
		return "guest panic: message out of bounds"
	}
	if !utf8.Valid(data) {
		return strings.ToValidUTF8(string(data), "�")
	}
	return string(data)
}
