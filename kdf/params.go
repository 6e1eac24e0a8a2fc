package kdf

import (
	"fmt"

	"github.com/wippyai/argon2-wasm/errors"
)

const (
	// MaxMemoryExponent is the largest exponent whose power of two fits in uint32.
	MaxMemoryExponent = 31

	// MaxParallelism is the largest lane count Argon2 defines.
	MaxParallelism = 1<<24 - 1

	// MinOutputLength is the shortest tag Argon2 defines.
	MinOutputLength = 4

	// MinSaltLength is the shortest salt Argon2 defines.
	MinSaltLength = 8

	// blocksPerLane is the minimum number of 1 KiB blocks per lane.
	blocksPerLane = 8
)

// Params are the validated cost parameters of a derivation.
type Params struct {
	// MemoryCost is the memory size in KiB.
	MemoryCost uint32

	// TimeCost is the number of passes over memory.
	TimeCost uint32

	// Parallelism is the number of lanes.
	Parallelism uint32

	// OutputLength is the tag size in bytes.
	OutputLength uint32
}

// NewParams builds cost parameters with MemoryCost = 1<<memoryExponent.
// Invalid combinations fail with errors.ErrInvalidParams; nothing is clamped.
func NewParams(memoryExponent, timeCost, parallelism, outputLength uint32) (Params, error) {
	if memoryExponent > MaxMemoryExponent {
		return Params{}, errors.InvalidParams("memory_cost", memoryExponent,
			fmt.Sprintf("exponent %d exceeds %d", memoryExponent, MaxMemoryExponent))
	}
	return ParamsFromCost(1<<memoryExponent, timeCost, parallelism, outputLength)
}

// ParamsFromCost builds cost parameters from an absolute memory cost in KiB.
func ParamsFromCost(memoryCost, timeCost, parallelism, outputLength uint32) (Params, error) {
	p := Params{
		MemoryCost:   memoryCost,
		TimeCost:     timeCost,
		Parallelism:  parallelism,
		OutputLength: outputLength,
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate reports the first constraint p violates.
func (p Params) Validate() error {
	switch {
	case p.Parallelism < 1:
		return errors.InvalidParams("parallelism", p.Parallelism, "must be at least 1")
	case p.Parallelism > MaxParallelism:
		return errors.InvalidParams("parallelism", p.Parallelism,
			fmt.Sprintf("must be at most %d", MaxParallelism))
	case uint64(p.MemoryCost) < blocksPerLane*uint64(p.Parallelism):
		return errors.InvalidParams("memory_cost", p.MemoryCost,
			fmt.Sprintf("%d KiB is below the minimum of %d KiB for %d lanes",
				p.MemoryCost, blocksPerLane*uint64(p.Parallelism), p.Parallelism))
	case p.TimeCost < 1:
		return errors.InvalidParams("time_cost", p.TimeCost, "must be at least 1")
	case p.OutputLength < MinOutputLength:
		return errors.InvalidParams("output_length", p.OutputLength,
			fmt.Sprintf("must be at least %d bytes", MinOutputLength))
	}
	return nil
}

// String renders the PHC parameter segment.
func (p Params) String() string {
	return fmt.Sprintf("m=%d,t=%d,p=%d", p.MemoryCost, p.TimeCost, p.Parallelism)
}
