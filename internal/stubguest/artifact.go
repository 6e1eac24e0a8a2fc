package stubguest

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

// ArtifactEnv names the compiled guest used by artifact tests.
const ArtifactEnv = "ARGON2_GUEST_WASM"

const guestPackage = "./cmd/argon2-guest"

// Artifact returns the compiled guest from $ARGON2_GUEST_WASM or
// testdata/argon2.wasm at the module root. Failing both, it builds
// cmd/argon2-guest for wasip1 into a temporary directory, and skips the
// test only when that build is not possible.
func Artifact(tb testing.TB) []byte {
	tb.Helper()

	path := os.Getenv(ArtifactEnv)
	root := moduleRoot()
	if path == "" && root != "" {
		if p := filepath.Join(root, "testdata", "argon2.wasm"); exists(p) {
			path = p
		}
	}
	if path == "" {
		path = build(tb, root)
	}

	wasm, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read guest %s: %v", path, err)
	}
	return wasm
}

func build(tb testing.TB, root string) string {
	tb.Helper()

	if testing.Short() {
		tb.Skipf("short mode: set %s to run against a compiled guest", ArtifactEnv)
	}
	if root == "" {
		tb.Skip("module root not found, cannot build the guest")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		tb.Skipf("go toolchain not found: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	out := filepath.Join(tb.TempDir(), "argon2.wasm")
	cmd := exec.CommandContext(ctx, goBin, "build", "-buildmode=c-shared", "-o", out, guestPackage)
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "GOOS=wasip1", "GOARCH=wasm")
	if output, err := cmd.CombinedOutput(); err != nil {
		tb.Skipf("build guest: %v\n%s", err, output)
	}
	return out
}

func moduleRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if exists(filepath.Join(dir, "go.mod")) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
