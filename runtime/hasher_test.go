package runtime

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"

	"github.com/alexedwards/argon2id"

	"github.com/wippyai/argon2-wasm/boundary"
	"github.com/wippyai/argon2-wasm/engine"
	"github.com/wippyai/argon2-wasm/errors"
	"github.com/wippyai/argon2-wasm/internal/stubguest"
	"github.com/wippyai/argon2-wasm/kdf"
)

// fastParams keeps derivations cheap: 1 MiB, one pass.
func fastParams() Params {
	p := DefaultParams()
	p.MemoryCost = 10
	p.TimeCost = 1
	return p
}

func arenaLive(t *testing.T, h *Hasher) int {
	t.Helper()
	local, ok := h.Guest().(*boundary.Local)
	if !ok {
		t.Fatalf("guest is %T, want *boundary.Local", h.Guest())
	}
	return local.Arena().Live()
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	want := Params{
		Algorithm:    kdf.Argon2id,
		MemoryCost:   12,
		TimeCost:     3,
		Parallelism:  1,
		OutputLength: 32,
		Version:      kdf.Version13,
	}
	if p != want {
		t.Errorf("DefaultParams() = %+v, want %+v", p, want)
	}
}

func TestHasher_HashRaw(t *testing.T) {
	ctx := context.Background()
	h := NewNative()
	defer h.Close(ctx)

	password, salt := []byte("password"), []byte("somesalt")
	p := fastParams()

	got, err := h.HashRaw(ctx, password, salt, p)
	if err != nil {
		t.Fatalf("HashRaw failed: %v", err)
	}

	params, err := kdf.NewParams(p.MemoryCost, p.TimeCost, p.Parallelism, p.OutputLength)
	if err != nil {
		t.Fatal(err)
	}
	want, err := kdf.Hash(password, salt, p.Algorithm, p.Version, params)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("HashRaw = %x, want %x", got, want)
	}
	if n := arenaLive(t, h); n != 0 {
		t.Errorf("%d buffers still live after HashRaw", n)
	}
}

func TestHasher_RoundTrip(t *testing.T) {
	ctx := context.Background()
	h := NewNative()
	defer h.Close(ctx)

	for _, ver := range []kdf.Version{kdf.Version10, kdf.Version13} {
		for _, alg := range []kdf.Algorithm{kdf.Argon2d, kdf.Argon2i, kdf.Argon2id} {
			t.Run(alg.String()+"/v"+ver.String(), func(t *testing.T) {
				p := fastParams()
				p.Algorithm, p.Version = alg, ver

				encoded, err := h.Hash(ctx, "password", p)
				if err != nil {
					t.Fatalf("Hash failed: %v", err)
				}
				prefix := "$" + alg.String() + "$v=" + ver.String() + "$m=1024,t=1,p=1$"
				if !strings.HasPrefix(encoded, prefix) {
					t.Errorf("encoded %q should start with %q", encoded, prefix)
				}

				ok, err := h.Verify(ctx, "password", encoded)
				if err != nil || !ok {
					t.Errorf("Verify(correct) = %v, %v", ok, err)
				}
				ok, err = h.Verify(ctx, "passw0rd", encoded)
				if err != nil || ok {
					t.Errorf("Verify(wrong) = %v, %v", ok, err)
				}
			})
		}
	}

	if n := arenaLive(t, h); n != 0 {
		t.Errorf("%d buffers still live", n)
	}
}

func TestHasher_SaltIsRandom(t *testing.T) {
	ctx := context.Background()
	h := NewNative()
	defer h.Close(ctx)

	a, err := h.Hash(ctx, "password", fastParams())
	if err != nil {
		t.Fatal(err)
	}
	b, err := h.Hash(ctx, "password", fastParams())
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two hashes of the same password should differ")
	}

	e, err := kdf.DecodeEncoded(a)
	if err != nil {
		t.Fatalf("DecodeEncoded failed: %v", err)
	}
	if len(e.Salt) != SaltLength {
		t.Errorf("salt length = %d, want %d", len(e.Salt), SaltLength)
	}
	if len(e.Hash) != 32 {
		t.Errorf("hash length = %d, want 32", len(e.Hash))
	}
}

func TestHasher_UnknownCodesUseDefaults(t *testing.T) {
	ctx := context.Background()
	h := NewNative()
	defer h.Close(ctx)

	p := fastParams()
	p.Algorithm = 7
	p.Version = 99

	encoded, err := h.Hash(ctx, "password", p)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$") {
		t.Errorf("encoded %q should carry the default algorithm and version", encoded)
	}
	if ok, err := h.Verify(ctx, "password", encoded); err != nil || !ok {
		t.Errorf("Verify = %v, %v", ok, err)
	}
}

func TestHasher_InvalidParams(t *testing.T) {
	ctx := context.Background()
	h := NewNative()
	defer h.Close(ctx)

	tests := []struct {
		name   string
		modify func(*Params)
	}{
		{"zero parallelism", func(p *Params) { p.Parallelism = 0 }},
		{"zero time cost", func(p *Params) { p.TimeCost = 0 }},
		{"short output", func(p *Params) { p.OutputLength = 3 }},
		{"memory below 8p", func(p *Params) { p.MemoryCost = 3; p.Parallelism = 2 }},
		{"memory exponent too large", func(p *Params) { p.MemoryCost = 32 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := fastParams()
			tc.modify(&p)

			_, err := h.HashRaw(ctx, []byte("password"), []byte("somesalt"), p)
			if !stderrors.Is(err, errors.ErrInvalidParams) {
				t.Fatalf("expected invalid_params, got %v", err)
			}
			if !stderrors.Is(err, errors.ErrGuestPanic) {
				t.Errorf("expected guest_panic, got %v", err)
			}
			if n := arenaLive(t, h); n != 0 {
				t.Errorf("%d buffers still live after failure", n)
			}
		})
	}

	if _, err := h.HashRaw(ctx, []byte("password"), []byte("somesalt"), fastParams()); err != nil {
		t.Errorf("hasher should stay usable after failures: %v", err)
	}
}

func TestHasher_ShortSalt(t *testing.T) {
	ctx := context.Background()
	h := NewNative()
	defer h.Close(ctx)

	_, err := h.HashRaw(ctx, []byte("password"), []byte("salt"), fastParams())
	if !stderrors.Is(err, errors.ErrInvalidParams) {
		t.Errorf("expected invalid_params for a 4 byte salt, got %v", err)
	}
}

func TestHasher_VerifyMalformed(t *testing.T) {
	ctx := context.Background()
	malformed := []string{
		"",
		"not a hash",
		"$argon2x$v=19$m=1024,t=1,p=1$c29tZXNhbHQ$aGFzaGhhc2g",
		"$argon2id$v=19$m=1024,t=1,p=1$c29tZXNhbHQ$!!!",
	}

	t.Run("strict", func(t *testing.T) {
		h := NewNative()
		defer h.Close(ctx)
		for _, s := range malformed {
			ok, err := h.Verify(ctx, "password", s)
			if ok || !stderrors.Is(err, errors.ErrInvalidEncoding) {
				t.Errorf("Verify(%q) = %v, %v; want invalid_encoding", s, ok, err)
			}
		}
		if n := arenaLive(t, h); n != 0 {
			t.Errorf("%d buffers still live", n)
		}
	})

	t.Run("not derivable", func(t *testing.T) {
		h := NewNative()
		defer h.Close(ctx)
		for _, s := range []string{
			"$argon2id$v=19$m=1024,t=1$c29tZXNhbHQ$aGFzaGhhc2g",
			"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaGhhc2g",
		} {
			ok, err := h.Verify(ctx, "password", s)
			if ok || err != nil {
				t.Errorf("Verify(%q) = %v, %v; want false, nil", s, ok, err)
			}
		}
	})

	t.Run("lenient", func(t *testing.T) {
		h := NewNative(WithLenientVerify())
		defer h.Close(ctx)
		for _, s := range malformed {
			ok, err := h.Verify(ctx, "password", s)
			if ok || err != nil {
				t.Errorf("Verify(%q) = %v, %v; want false, nil", s, ok, err)
			}
		}
	})
}

func TestHasher_InteropAlexedwards(t *testing.T) {
	ctx := context.Background()
	h := NewNative()
	defer h.Close(ctx)

	encoded, err := h.Hash(ctx, "pa$$word", fastParams())
	if err != nil {
		t.Fatal(err)
	}
	match, err := argon2id.ComparePasswordAndHash("pa$$word", encoded)
	if err != nil || !match {
		t.Errorf("argon2id.ComparePasswordAndHash = %v, %v", match, err)
	}

	theirs, err := argon2id.CreateHash("pa$$word", &argon2id.Params{
		Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})
	if err != nil {
		t.Fatal(err)
	}
	ok, err := h.Verify(ctx, "pa$$word", theirs)
	if err != nil || !ok {
		t.Errorf("Verify(alexedwards hash) = %v, %v", ok, err)
	}
}

func TestHasher_Concurrent(t *testing.T) {
	ctx := context.Background()
	h := NewNative()
	defer h.Close(ctx)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			encoded, err := h.Hash(ctx, "password", fastParams())
			if err != nil {
				errs <- err
				return
			}
			if ok, err := h.Verify(ctx, "password", encoded); err != nil || !ok {
				errs <- stderrors.New("verify failed: " + encoded)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	if n := arenaLive(t, h); n != 0 {
		t.Errorf("%d buffers still live", n)
	}
}

func TestHasher_Closed(t *testing.T) {
	ctx := context.Background()
	h := NewNative()
	if err := h.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := h.Close(ctx); err != nil {
		t.Errorf("second Close should be a no-op: %v", err)
	}

	if _, err := h.HashRaw(ctx, []byte("password"), []byte("somesalt"), fastParams()); err == nil {
		t.Error("HashRaw on a closed hasher should fail")
	}
	if _, err := h.Verify(ctx, "password", "$argon2id$"); err == nil {
		t.Error("Verify on a closed hasher should fail")
	}
}

func TestHasher_CanceledContext(t *testing.T) {
	h := NewNative()
	defer h.Close(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := h.HashRaw(ctx, []byte("password"), []byte("somesalt"), fastParams()); err == nil {
		t.Error("expected an error for a canceled context")
	}
}

func TestHasher_WasmGuestReset(t *testing.T) {
	ctx := context.Background()
	h, err := New(ctx, stubguest.WASM, WithEngineConfig(&engine.Config{MemoryLimitPages: 16}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer h.Close(ctx)

	before := h.Guest()
	_, err = h.HashRaw(ctx, []byte("password"), []byte("somesalt"), fastParams())
	if !stderrors.Is(err, errors.ErrGuestPanic) {
		t.Fatalf("expected guest_panic, got %v", err)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error should carry the forwarded message: %v", err)
	}

	after := h.Guest()
	if after == nil || after == before {
		t.Fatal("a poisoned instance should be replaced")
	}
	if inst := after.(*engine.Instance); inst.Poisoned() {
		t.Error("replacement instance should be usable")
	}
}

func TestHasher_WasmLenientPrecheck(t *testing.T) {
	ctx := context.Background()
	valid := "$argon2id$v=19$m=1024,t=1,p=1$c29tZXNhbHRzb21lc2FsdA$3q2+7w"

	// The stub guest answers every verify with its password length.
	strict, err := New(ctx, stubguest.WASM)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer strict.Close(ctx)
	if ok, err := strict.Verify(ctx, "password", "garbage"); err != nil || !ok {
		t.Errorf("strict Verify should reach the guest: %v, %v", ok, err)
	}

	lenient, err := New(ctx, stubguest.WASM, WithLenientVerify())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer lenient.Close(ctx)
	if ok, err := lenient.Verify(ctx, "password", "garbage"); err != nil || ok {
		t.Errorf("lenient Verify(garbage) = %v, %v; want false, nil", ok, err)
	}
	if ok, err := lenient.Verify(ctx, "password", valid); err != nil || !ok {
		t.Errorf("lenient Verify(valid) should reach the guest: %v, %v", ok, err)
	}
}

func TestNew_RejectsModule(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, stubguest.AddWASM); err == nil {
		t.Error("expected an error for a module without the guest surface")
	}
	if _, err := New(ctx, nil); err == nil {
		t.Error("expected an error for an empty binary")
	}
}

func TestHasher_WasmArtifact(t *testing.T) {
	wasm := stubguest.Artifact(t)
	ctx := context.Background()

	h, err := New(ctx, wasm)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer h.Close(ctx)
	native := NewNative()
	defer native.Close(ctx)

	p := fastParams()
	got, err := h.HashRaw(ctx, []byte("password"), []byte("somesalt"), p)
	if err != nil {
		t.Fatalf("HashRaw failed: %v", err)
	}
	want, err := native.HashRaw(ctx, []byte("password"), []byte("somesalt"), p)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("wasm tag %x, native tag %x", got, want)
	}

	encoded, err := h.Hash(ctx, "password", p)
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := native.Verify(ctx, "password", encoded); err != nil || !ok {
		t.Errorf("native Verify of wasm hash = %v, %v", ok, err)
	}

	p.Parallelism = 0
	if _, err := h.HashRaw(ctx, []byte("password"), []byte("somesalt"), p); !stderrors.Is(err, errors.ErrGuestPanic) {
		t.Fatalf("expected guest_panic, got %v", err)
	}
	if _, err := h.HashRaw(ctx, []byte("password"), []byte("somesalt"), fastParams()); err != nil {
		t.Errorf("hasher should recover after a guest panic: %v", err)
	}
}
