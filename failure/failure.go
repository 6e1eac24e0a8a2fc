// Package failure forwards fatal errors raised inside boundary entry points
// to a process-wide sink before the call terminates.
//
// A boundary call has no error channel: it either returns its integer
// result or dies. Entry points defer [Forward], which turns the panic into a
// message, hands it to the sink installed by [Install], and re-panics.
package failure

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
)

// Sink receives formatted failure messages.
type Sink func(message string)

var (
	installOnce sync.Once
	installed   atomic.Pointer[Sink]
)

// Install registers the process-wide sink. Only the first call with a
// non-nil sink has an effect; later calls are no-ops.
func Install(sink Sink) {
	if sink == nil {
		return
	}
	installOnce.Do(func() {
		installed.Store(&sink)
	})
}

// Installed reports whether a sink is registered.
func Installed() bool {
	return installed.Load() != nil
}

// Forward must be deferred directly by every entry point. On panic it
// delivers the formatted message to the sink and panics again with the
// original value, so the call still terminates.
func Forward() {
	r := recover()
	if r == nil {
		return
	}
	if s := installed.Load(); s != nil {
		file, line := origin()
		(*s)(Format(r, file, line))
	}
	panic(r)
}

// Format renders a recovered panic value as
//
//	panicked at <file>:<line>:
//	<message>
func Format(value any, file string, line int) string {
	var b strings.Builder
	b.WriteString("panicked at ")
	if file == "" {
		b.WriteString("<unknown>")
	} else {
		fmt.Fprintf(&b, "%s:%d", file, line)
	}
	b.WriteString(":\n")
	b.WriteString(Message(value))
	return b.String()
}

// Message converts a panic value to text.
func Message(value any) string {
	switch v := value.(type) {
	case error:
		return v.Error()
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// origin locates the frame that raised the panic being recovered. It must
// be called from the deferred function while the panic is in progress.
func origin() (string, int) {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	panicking := false
	for {
		f, more := frames.Next()
		if f.Function == "runtime.gopanic" {
			panicking = true
		} else if panicking && !strings.HasPrefix(f.Function, "runtime.") {
			return f.File, f.Line
		}
		if !more {
			return "", 0
		}
	}
}
