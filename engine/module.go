package engine

import (
	"context"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/argon2-wasm/errors"
)

// Module is a compiled guest with a verified export surface.
type Module struct {
	engine   *Engine
	compiled wazero.CompiledModule
}

// Instantiate creates a guest instance, runs its reactor initialisation and
// then init, which installs the guest failure forwarder.
func (m *Module) Instantiate(ctx context.Context) (*Instance, error) {
	if err := m.engine.initHostModules(ctx); err != nil {
		return nil, err
	}

	mod, err := m.engine.runtime.InstantiateModule(ctx, m.compiled, m.engine.moduleConfig())
	if err != nil {
		return nil, errors.Instantiation(err)
	}

	inst := newInstance(mod)

	if fn := mod.ExportedFunction(ExportInitialize); fn != nil {
		if _, err := inst.call(ctx, ExportInitialize, fn); err != nil {
			inst.Close(ctx)
			return nil, errors.Instantiation(err)
		}
	}
	if _, err := inst.call(ctx, ExportInit, inst.initFn); err != nil {
		inst.Close(ctx)
		return nil, errors.Instantiation(err)
	}

	Logger().Debug("guest instantiated", zap.Uint32("memory_bytes", inst.memory.Size()))
	return inst, nil
}

// Close releases the compiled module.
func (m *Module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}
