package engine

import (
	"context"
	"crypto/rand"
	"io"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/wippyai/argon2-wasm/errors"
)

// Names of the guest surface.
const (
	ExportMemory     = "memory"
	ExportInitialize = "_initialize"
	ExportInit       = "init"
	ExportAllocate   = "allocate"
	ExportDeallocate = "deallocate"
	ExportHash       = "hash"
	ExportVerify     = "verify"

	HostModule = "env"
	HostPanic  = "panic"

	wasiModule = "wasi_snapshot_preview1"
)

// Config holds configuration for engine creation
type Config struct {
	// Stderr receives the guest's standard error. nil discards it.
	Stderr io.Writer

	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	// 256 = 16MB, 1024 = 64MB, 4096 = 256MB
	MemoryLimitPages uint32

	// CloseOnContextDone aborts a running guest call when its context ends.
	// The instance is poisoned afterwards.
	CloseOnContextDone bool
}

// Engine owns a wazero runtime prepared for argon2 guests.
type Engine struct {
	runtime      wazero.Runtime
	stderr       io.Writer
	hostInitMu   sync.Mutex
	hostInitDone atomic.Bool
}

// NewEngine creates an engine. A nil cfg uses defaults.
func NewEngine(ctx context.Context, cfg *Config) (*Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	e := &Engine{}

	if cfg != nil {
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
		if cfg.CloseOnContextDone {
			runtimeCfg = runtimeCfg.WithCloseOnContextDone(true)
		}
		e.stderr = cfg.Stderr
	}

	e.runtime = wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	return e, nil
}

// Close releases the runtime and every module instantiated from it.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// initHostModules instantiates WASI and the env module once per runtime.
// Safe for concurrent calls from modules sharing the engine.
func (e *Engine) initHostModules(ctx context.Context) error {
	if e.hostInitDone.Load() {
		return nil
	}

	e.hostInitMu.Lock()
	defer e.hostInitMu.Unlock()

	if e.hostInitDone.Load() {
		return nil
	}

	if e.runtime.Module(wasiModule) == nil {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, e.runtime); err != nil {
			return errors.Load("instantiate WASI", err)
		}
	}

	if e.runtime.Module(HostModule) == nil {
		_, err := e.runtime.NewHostModuleBuilder(HostModule).
			NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(hostPanic),
				[]api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, nil).
			WithParameterNames("message_ptr", "message_len").
			Export(HostPanic).
			Instantiate(ctx)
		if err != nil {
			return errors.Load("instantiate env host module", err)
		}
	}

	e.hostInitDone.Store(true)
	return nil
}

// Load compiles a guest binary and checks its exports.
func (e *Engine) Load(ctx context.Context, wasm []byte) (*Module, error) {
	if len(wasm) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "empty module binary")
	}

	compiled, err := e.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load("compile guest", err)
	}

	if err := checkExports(compiled); err != nil {
		compiled.Close(ctx)
		return nil, err
	}

	Logger().Debug("guest compiled",
		zap.Int("size", len(wasm)),
		zap.Int("exports", len(compiled.ExportedFunctions())))

	return &Module{engine: e, compiled: compiled}, nil
}

// moduleConfig is the configuration of every guest instance. Instances are
// anonymous so a module can be instantiated repeatedly.
func (e *Engine) moduleConfig() wazero.ModuleConfig {
	cfg := wazero.NewModuleConfig().
		WithName("").
		WithStartFunctions().
		WithSysWalltime().
		WithSysNanotime().
		WithRandSource(rand.Reader)
	if e.stderr != nil {
		cfg = cfg.WithStderr(e.stderr)
	}
	return cfg
}

var (
	i32 = api.ValueTypeI32

	exportSignatures = map[string]struct {
		params  []api.ValueType
		results []api.ValueType
	}{
		ExportInit:       {nil, nil},
		ExportAllocate:   {[]api.ValueType{i32}, []api.ValueType{i32}},
		ExportDeallocate: {[]api.ValueType{i32, i32}, nil},
		ExportHash:       {[]api.ValueType{i32, i32, i32, i32, i32, i32, i32, i32, i32, i32}, []api.ValueType{i32}},
		ExportVerify:     {[]api.ValueType{i32, i32, i32, i32}, []api.ValueType{i32}},
	}
)

func checkExports(compiled wazero.CompiledModule) error {
	if _, ok := compiled.ExportedMemories()[ExportMemory]; !ok {
		return errors.NotFound(errors.PhaseLoad, "memory export", ExportMemory)
	}

	fns := compiled.ExportedFunctions()
	for name, sig := range exportSignatures {
		def, ok := fns[name]
		if !ok {
			return errors.NotFound(errors.PhaseLoad, "function export", name)
		}
		if !sameTypes(def.ParamTypes(), sig.params) || !sameTypes(def.ResultTypes(), sig.results) {
			return errors.New(errors.PhaseLoad, errors.KindInvalidInput).
				Field(name).
				Detail("export %q has signature %s, want %s",
					name, signature(def.ParamTypes(), def.ResultTypes()), signature(sig.params, sig.results)).
				Build()
		}
	}
	return nil
}

func sameTypes(a, b []api.ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func signature(params, results []api.ValueType) string {
	s := "("
	for i, p := range params {
		if i > 0 {
			s += ","
		}
		s += api.ValueTypeName(p)
	}
	s += ")->("
	for i, r := range results {
		if i > 0 {
			s += ","
		}
		s += api.ValueTypeName(r)
	}
	return s + ")"
}
