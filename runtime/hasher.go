package runtime

import (
	"bytes"
	"context"
	"crypto/rand"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/argon2-wasm/boundary"
	"github.com/wippyai/argon2-wasm/engine"
	"github.com/wippyai/argon2-wasm/errors"
	"github.com/wippyai/argon2-wasm/kdf"
)

// SaltLength is the size of the random salt Hash generates.
const SaltLength = 16

// Hasher hashes and verifies passwords through a guest. Calls are
// serialised; a Hasher is safe for concurrent use.
type Hasher struct {
	mu     sync.Mutex
	guest  Guest
	engine *engine.Engine
	module *engine.Module
	log    *zap.Logger
	opts   options
}

// New loads a compiled guest into a fresh wazero engine.
func New(ctx context.Context, wasm []byte, opts ...Option) (*Hasher, error) {
	o := buildOptions(opts)

	eng, err := engine.NewEngine(ctx, o.engine)
	if err != nil {
		return nil, errors.Load("create engine", err)
	}
	mod, err := eng.Load(ctx, wasm)
	if err != nil {
		eng.Close(ctx)
		return nil, err
	}
	inst, err := mod.Instantiate(ctx)
	if err != nil {
		eng.Close(ctx)
		return nil, err
	}

	o.logger.Debug("hasher ready", zap.String("guest", "wasm"), zap.Bool("lenient", o.lenient))
	return &Hasher{guest: inst, engine: eng, module: mod, log: o.logger, opts: o}, nil
}

// NewNative runs the boundary in-process.
func NewNative(opts ...Option) *Hasher {
	o := buildOptions(opts)
	local := boundary.NewLocal(&boundary.Options{StrictDecode: !o.lenient}, o.arena)

	o.logger.Debug("hasher ready", zap.String("guest", "native"), zap.Bool("lenient", o.lenient))
	return &Hasher{guest: local, log: o.logger, opts: o}
}

// Guest returns the guest the hasher calls.
func (h *Hasher) Guest() Guest {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.guest
}

// HashRaw derives a raw tag of p.OutputLength bytes.
func (h *Hasher) HashRaw(ctx context.Context, password, salt []byte, p Params) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hashRaw(ctx, password, salt, p)
}

func (h *Hasher) hashRaw(ctx context.Context, password, salt []byte, p Params) (out []byte, err error) {
	if h.guest == nil {
		return nil, errors.NotInitialized(errors.PhaseRuntime, "hasher")
	}

	s := &staged{guest: h.guest}
	defer func() { err = h.finish(ctx, s, err) }()

	passwordPtr, passwordLen, err := s.put(ctx, password)
	if err != nil {
		return nil, err
	}
	saltPtr, saltLen, err := s.put(ctx, salt)
	if err != nil {
		return nil, err
	}

	ptr, err := h.guest.Hash(ctx, boundary.HashArgs{
		PasswordPtr:    passwordPtr,
		PasswordLen:    passwordLen,
		SaltPtr:        saltPtr,
		SaltLen:        saltLen,
		Algorithm:      uint32(p.Algorithm),
		MemoryExponent: p.MemoryCost,
		TimeCost:       p.TimeCost,
		Parallelism:    p.Parallelism,
		OutputLength:   p.OutputLength,
		Version:        uint32(p.Version),
	})
	if err != nil {
		return nil, err
	}
	s.own(ptr, p.OutputLength)

	tag, err := h.guest.Memory().Read(ptr, p.OutputLength)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(tag), nil
}

// Hash derives a tag with a random salt and returns it as a PHC string.
func (h *Hasher) Hash(ctx context.Context, password string, p Params) (string, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(errors.PhaseHash, errors.KindInvalidInput, err, "generate salt")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	tag, err := h.hashRaw(ctx, []byte(password), salt, p)
	if err != nil {
		return "", err
	}

	alg, ver := kdf.Decode(uint32(p.Algorithm), uint32(p.Version))
	return kdf.Encode(&kdf.Encoded{
		Algorithm: alg,
		Version:   ver,
		Params:    p.kdfParams(),
		Salt:      salt,
		Hash:      tag,
	}), nil
}

// Verify reports whether password matches the encoded hash.
func (h *Hasher) Verify(ctx context.Context, password, encoded string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.guest == nil {
		return false, errors.NotInitialized(errors.PhaseRuntime, "hasher")
	}

	// A loaded guest is always strict, so lenient decoding happens here.
	if h.opts.lenient {
		if _, err := kdf.DecodeEncoded(encoded); err != nil {
			h.log.Debug("malformed encoded hash", zap.Error(err))
			return false, nil
		}
	}

	return h.verify(ctx, []byte(password), []byte(encoded))
}

func (h *Hasher) verify(ctx context.Context, password, encoded []byte) (ok bool, err error) {
	s := &staged{guest: h.guest}
	defer func() { err = h.finish(ctx, s, err) }()

	passwordPtr, passwordLen, err := s.put(ctx, password)
	if err != nil {
		return false, err
	}
	hashPtr, hashLen, err := s.put(ctx, encoded)
	if err != nil {
		return false, err
	}
	return h.guest.Verify(ctx, passwordPtr, passwordLen, hashPtr, hashLen)
}

// finish releases the call's buffers, or replaces the guest when the
// failure left it unusable.
func (h *Hasher) finish(ctx context.Context, s *staged, err error) error {
	if err != nil && h.poisoned() {
		s.drop()
		return multierr.Append(err, h.reset(ctx))
	}
	return multierr.Append(err, s.release(ctx))
}

func (h *Hasher) poisoned() bool {
	p, ok := h.guest.(interface{ Poisoned() bool })
	return ok && p.Poisoned()
}

// reset swaps a poisoned instance for a fresh one from the same module.
func (h *Hasher) reset(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)

	old := h.guest
	h.guest = nil
	closeErr := old.Close(ctx)

	if h.module == nil {
		return closeErr
	}

	inst, err := h.module.Instantiate(ctx)
	if err != nil {
		h.log.Error("guest reset failed", zap.Error(err))
		return multierr.Append(closeErr, err)
	}
	h.guest = inst
	h.log.Warn("guest instance replaced after failure")
	return closeErr
}

// Close releases the guest and, for loaded guests, the engine.
func (h *Hasher) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if h.guest != nil {
		err = multierr.Append(err, h.guest.Close(ctx))
		h.guest = nil
	}
	if h.module != nil {
		err = multierr.Append(err, h.module.Close(ctx))
		h.module = nil
	}
	if h.engine != nil {
		err = multierr.Append(err, h.engine.Close(ctx))
		h.engine = nil
	}
	return err
}
