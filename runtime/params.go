package runtime

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/argon2-wasm/kdf"
)

// Params are the hashing parameters as the guest receives them.
type Params struct {
	Algorithm kdf.Algorithm

	// MemoryCost is the memory size as a power of two in KiB.
	MemoryCost uint32

	TimeCost     uint32
	Parallelism  uint32
	OutputLength uint32
	Version      kdf.Version
}

// DefaultParams returns argon2id v19 with 4 MiB of memory, three passes,
// one lane and a 32 byte tag.
func DefaultParams() Params {
	return Params{
		Algorithm:    kdf.Argon2id,
		MemoryCost:   12,
		TimeCost:     3,
		Parallelism:  1,
		OutputLength: 32,
		Version:      kdf.Version13,
	}
}

// kdfParams returns the cost parameters the guest derives from p, without
// validation.
func (p Params) kdfParams() kdf.Params {
	var memory uint32
	if p.MemoryCost <= kdf.MaxMemoryExponent {
		memory = 1 << p.MemoryCost
	}
	return kdf.Params{
		MemoryCost:   memory,
		TimeCost:     p.TimeCost,
		Parallelism:  p.Parallelism,
		OutputLength: p.OutputLength,
	}
}

// Profile is the YAML form of Params. Absent fields keep their defaults.
type Profile struct {
	Algorithm    *string `yaml:"algorithm"`
	Version      *uint32 `yaml:"version"`
	MemoryCost   *uint32 `yaml:"memory_cost"`
	TimeCost     *uint32 `yaml:"time_cost"`
	Parallelism  *uint32 `yaml:"parallelism"`
	OutputLength *uint32 `yaml:"output_length"`
}

// Apply overlays the fields set in the profile onto p.
func (pr Profile) Apply(p Params) (Params, error) {
	if pr.Algorithm != nil {
		alg, err := kdf.ParseAlgorithm(*pr.Algorithm)
		if err != nil {
			return p, err
		}
		p.Algorithm = alg
	}
	if pr.Version != nil {
		switch v := kdf.Version(*pr.Version); v {
		case kdf.Version10, kdf.Version13:
			p.Version = v
		default:
			return p, fmt.Errorf("unsupported version %d (want %d or %d)", *pr.Version, kdf.Version10, kdf.Version13)
		}
	}
	if pr.MemoryCost != nil {
		p.MemoryCost = *pr.MemoryCost
	}
	if pr.TimeCost != nil {
		p.TimeCost = *pr.TimeCost
	}
	if pr.Parallelism != nil {
		p.Parallelism = *pr.Parallelism
	}
	if pr.OutputLength != nil {
		p.OutputLength = *pr.OutputLength
	}
	return p, nil
}

// ParseProfile reads a YAML parameter profile on top of DefaultParams.
func ParseProfile(data []byte) (Params, error) {
	var pr Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&pr); err != nil && !errors.Is(err, io.EOF) {
		return Params{}, fmt.Errorf("parse profile: %w", err)
	}
	p, err := pr.Apply(DefaultParams())
	if err != nil {
		return Params{}, fmt.Errorf("parse profile: %w", err)
	}
	return p, nil
}

// LoadProfile reads a YAML parameter profile from path.
func LoadProfile(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("read profile %s: %w", path, err)
	}
	p, err := ParseProfile(data)
	if err != nil {
		return Params{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
