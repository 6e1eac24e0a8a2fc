// argon2 hashes and verifies passwords through the argon2 guest, either a
// compiled guest module on wazero (--wasm) or the same boundary in-process.
package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/argon2-wasm/engine"
	"github.com/wippyai/argon2-wasm/kdf"
	"github.com/wippyai/argon2-wasm/runtime"
)

const usage = `Usage: argon2 [flags] <command> [args]

Commands:
  hash               print a PHC string for the password (random salt)
  verify <encoded>   check the password against an encoded hash
  raw --salt <salt>  print the raw tag as hex

The password is read from --password, a no-echo prompt on a terminal, or
the first line of stdin.

Flags:
`

type config struct {
	wasm        string
	profile     string
	password    string
	salt        string
	algorithm   string
	version     uint32
	memory      uint32
	time        uint32
	parallelism uint32
	length      uint32
	lenient     bool
	interactive bool
	verbose     bool
}

// exitError carries a process exit code without a message.
type exitError int

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", int(e)) }
func (e exitError) ExitCode() int { return int(e) }

func main() {
	if err := run(os.Args[1:]); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
}

func run(args []string) error {
	var cfg config

	flagSet := pflag.NewFlagSet("argon2", pflag.ContinueOnError)
	flagSet.StringVar(&cfg.wasm, "wasm", "", "compiled guest module (default: in-process boundary)")
	flagSet.StringVar(&cfg.profile, "config", "", "YAML parameter profile")
	flagSet.StringVar(&cfg.password, "password", "", "password (default: prompt or stdin)")
	flagSet.StringVar(&cfg.salt, "salt", "", "salt for raw (at least 8 bytes)")
	flagSet.StringVarP(&cfg.algorithm, "algorithm", "a", "", "argon2d, argon2i or argon2id")
	flagSet.Uint32VarP(&cfg.version, "version", "v", 0, "protocol version, 16 or 19")
	flagSet.Uint32VarP(&cfg.memory, "memory", "m", 0, "memory cost as a power of two in KiB")
	flagSet.Uint32VarP(&cfg.time, "time", "t", 0, "number of passes")
	flagSet.Uint32VarP(&cfg.parallelism, "parallelism", "p", 0, "number of lanes")
	flagSet.Uint32VarP(&cfg.length, "length", "l", 0, "tag length in bytes")
	flagSet.BoolVar(&cfg.lenient, "lenient", false, "report a malformed encoded hash as a mismatch")
	flagSet.BoolVarP(&cfg.interactive, "interactive", "i", false, "interactive mode with TUI")
	flagSet.BoolVar(&cfg.verbose, "verbose", false, "development logging to stderr")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		flagSet.Usage()
		return nil
	}

	log, err := newLogger(cfg.verbose)
	if err != nil {
		return err
	}
	defer log.Sync()
	engine.SetLogger(log)
	runtime.SetLogger(log)

	params, err := cfg.params(flagSet)
	if err != nil {
		return err
	}

	ctx := context.Background()
	h, err := cfg.hasher(ctx)
	if err != nil {
		return err
	}
	defer h.Close(ctx)

	if cfg.interactive {
		return runInteractive(h, params, cfg.source())
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		flagSet.Usage()
		return exitError(2)
	}

	switch rest[0] {
	case "hash":
		return cmdHash(ctx, h, &cfg, params)
	case "verify":
		if len(rest) != 2 {
			return fmt.Errorf("verify takes exactly one encoded hash")
		}
		return cmdVerify(ctx, h, &cfg, rest[1])
	case "raw":
		return cmdRaw(ctx, h, &cfg, params)
	default:
		return fmt.Errorf("unknown command %q", rest[0])
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log, nil
}

// params layers explicit flags over the profile over the defaults.
func (c *config) params(flagSet *pflag.FlagSet) (runtime.Params, error) {
	p := runtime.DefaultParams()
	if c.profile != "" {
		var err error
		if p, err = runtime.LoadProfile(c.profile); err != nil {
			return p, err
		}
	}

	if flagSet.Changed("algorithm") {
		alg, err := kdf.ParseAlgorithm(c.algorithm)
		if err != nil {
			return p, err
		}
		p.Algorithm = alg
	}
	if flagSet.Changed("version") {
		v, err := kdf.ParseVersion(fmt.Sprint(c.version))
		if err != nil {
			return p, err
		}
		p.Version = v
	}
	if flagSet.Changed("memory") {
		p.MemoryCost = c.memory
	}
	if flagSet.Changed("time") {
		p.TimeCost = c.time
	}
	if flagSet.Changed("parallelism") {
		p.Parallelism = c.parallelism
	}
	if flagSet.Changed("length") {
		p.OutputLength = c.length
	}
	return p, nil
}

func (c *config) hasher(ctx context.Context) (*runtime.Hasher, error) {
	var opts []runtime.Option
	if c.lenient {
		opts = append(opts, runtime.WithLenientVerify())
	}
	if c.wasm == "" {
		return runtime.NewNative(opts...), nil
	}

	wasm, err := os.ReadFile(c.wasm)
	if err != nil {
		return nil, fmt.Errorf("read guest: %w", err)
	}
	opts = append(opts, runtime.WithEngineConfig(&engine.Config{Stderr: os.Stderr}))
	h, err := runtime.New(ctx, wasm, opts...)
	if err != nil {
		return nil, fmt.Errorf("load guest %s: %w", c.wasm, err)
	}
	return h, nil
}

func (c *config) source() string {
	if c.wasm != "" {
		return c.wasm
	}
	return "in-process"
}

// readPassword returns --password, prompts without echo on a terminal, or
// reads the first line of stdin.
func (c *config) readPassword() (string, error) {
	if c.password != "" {
		return c.password, nil
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Password: ")
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(password), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func cmdHash(ctx context.Context, h *runtime.Hasher, cfg *config, params runtime.Params) error {
	password, err := cfg.readPassword()
	if err != nil {
		return err
	}
	encoded, err := h.Hash(ctx, password, params)
	if err != nil {
		return err
	}
	fmt.Println(encoded)
	return nil
}

func cmdVerify(ctx context.Context, h *runtime.Hasher, cfg *config, encoded string) error {
	password, err := cfg.readPassword()
	if err != nil {
		return err
	}
	ok, err := h.Verify(ctx, password, encoded)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("mismatch")
		return exitError(1)
	}
	fmt.Println("ok")
	return nil
}

func cmdRaw(ctx context.Context, h *runtime.Hasher, cfg *config, params runtime.Params) error {
	if cfg.salt == "" {
		return fmt.Errorf("raw requires --salt")
	}
	password, err := cfg.readPassword()
	if err != nil {
		return err
	}
	tag, err := h.HashRaw(ctx, []byte(password), []byte(cfg.salt), params)
	if err != nil {
		return err
	}
	fmt.Println(hex.EncodeToString(tag))
	return nil
}
