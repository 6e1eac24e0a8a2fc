// Package core implements the Argon2 memory-hard function (RFC 9106) for
// all three variants and both protocol versions, including the optional
// secret key and associated data inputs.
//
// Parameters are not validated here beyond what would otherwise corrupt
// memory; callers go through package kdf.
package core

import (
	"encoding/binary"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// Mode selects the addressing scheme.
type Mode uint32

const (
	ModeD  Mode = 0 // data-dependent
	ModeI  Mode = 1 // data-independent
	ModeID Mode = 2 // hybrid
)

const (
	Version10 uint32 = 0x10
	Version13 uint32 = 0x13
)

const (
	blockWords = 128
	syncPoints = 4
)

type block [blockWords]uint64

// Input carries every value that feeds the initial hash H0.
type Input struct {
	Password []byte
	Salt     []byte
	Secret   []byte
	Data     []byte
	Time     uint32
	Memory   uint32 // KiB
	Threads  uint32
	Mode     Mode
	Version  uint32
}

// DeriveInto fills out with the Argon2 tag for in. The tag length is len(out).
func DeriveInto(out []byte, in Input) {
	if in.Time < 1 {
		panic("argon2: number of rounds too small")
	}
	if in.Threads < 1 {
		panic("argon2: parallelism degree too low")
	}

	h0 := initHash(in, uint32(len(out)))

	memory := in.Memory / (syncPoints * in.Threads) * (syncPoints * in.Threads)
	if memory < 2*syncPoints*in.Threads {
		memory = 2 * syncPoints * in.Threads
	}

	b := initBlocks(&h0, memory, in.Threads)
	fill(b, in.Time, memory, in.Threads, in.Mode, in.Version)
	extractKey(out, b, memory, in.Threads)
}

// Derive returns a keyLen byte Argon2 tag for in.
func Derive(in Input, keyLen uint32) []byte {
	out := make([]byte, keyLen)
	DeriveInto(out, in)
	return out
}

func initHash(in Input, keyLen uint32) [blake2b.Size + 8]byte {
	var (
		h0     [blake2b.Size + 8]byte
		params [24]byte
		length [4]byte
	)

	h, _ := blake2b.New512(nil)
	binary.LittleEndian.PutUint32(params[0:4], in.Threads)
	binary.LittleEndian.PutUint32(params[4:8], keyLen)
	binary.LittleEndian.PutUint32(params[8:12], in.Memory)
	binary.LittleEndian.PutUint32(params[12:16], in.Time)
	binary.LittleEndian.PutUint32(params[16:20], in.Version)
	binary.LittleEndian.PutUint32(params[20:24], uint32(in.Mode))
	h.Write(params[:])

	for _, field := range [][]byte{in.Password, in.Salt, in.Secret, in.Data} {
		binary.LittleEndian.PutUint32(length[:], uint32(len(field)))
		h.Write(length[:])
		h.Write(field)
	}

	h.Sum(h0[:0])
	return h0
}

func initBlocks(h0 *[blake2b.Size + 8]byte, memory, threads uint32) []block {
	var raw [1024]byte
	b := make([]block, memory)
	laneLen := memory / threads

	for lane := uint32(0); lane < threads; lane++ {
		start := lane * laneLen
		binary.LittleEndian.PutUint32(h0[blake2b.Size+4:], lane)
		for i := uint32(0); i < 2; i++ {
			binary.LittleEndian.PutUint32(h0[blake2b.Size:], i)
			hashPrime(raw[:], h0[:])
			for w := range b[start+i] {
				b[start+i][w] = binary.LittleEndian.Uint64(raw[w*8:])
			}
		}
	}
	return b
}

// fill runs every pass over memory. Lanes of one slice are independent and
// are processed concurrently; slices are barriers.
func fill(b []block, passes, memory, threads uint32, mode Mode, version uint32) {
	laneLen := memory / threads
	segLen := laneLen / syncPoints

	for pass := uint32(0); pass < passes; pass++ {
		for slice := uint32(0); slice < syncPoints; slice++ {
			var wg sync.WaitGroup
			for lane := uint32(0); lane < threads; lane++ {
				wg.Add(1)
				go func(lane uint32) {
					defer wg.Done()
					s := segment{
						b:       b,
						pass:    pass,
						slice:   slice,
						lane:    lane,
						passes:  passes,
						memory:  memory,
						threads: threads,
						laneLen: laneLen,
						segLen:  segLen,
						mode:    mode,
						version: version,
					}
					s.process()
				}(lane)
			}
			wg.Wait()
		}
	}
}

type segment struct {
	b       []block
	pass    uint32
	slice   uint32
	lane    uint32
	passes  uint32
	memory  uint32
	threads uint32
	laneLen uint32
	segLen  uint32
	mode    Mode
	version uint32
}

func (s *segment) dataIndependent() bool {
	return s.mode == ModeI || (s.mode == ModeID && s.pass == 0 && s.slice < syncPoints/2)
}

func (s *segment) process() {
	var addresses, input, zero block

	independent := s.dataIndependent()
	if independent {
		input[0] = uint64(s.pass)
		input[1] = uint64(s.lane)
		input[2] = uint64(s.slice)
		input[3] = uint64(s.memory)
		input[4] = uint64(s.passes)
		input[5] = uint64(s.mode)
	}

	next := func() {
		input[6]++
		compress(&addresses, &input, &zero, false)
		compress(&addresses, &addresses, &zero, false)
	}

	index := uint32(0)
	if s.pass == 0 && s.slice == 0 {
		// The first two blocks of every lane come from H0.
		index = 2
		if independent {
			next()
		}
	}

	offset := s.lane*s.laneLen + s.slice*s.segLen + index
	for index < s.segLen {
		prev := offset - 1
		if index == 0 && s.slice == 0 {
			prev += s.laneLen
		}

		var pseudo uint64
		if independent {
			if index%blockWords == 0 {
				next()
			}
			pseudo = addresses[index%blockWords]
		} else {
			pseudo = s.b[prev][0]
		}

		ref := s.reference(pseudo, index)
		compress(&s.b[offset], &s.b[prev], &s.b[ref], s.version != Version10)

		index++
		offset++
	}
}

// reference maps a pseudo-random value to the index of the block mixed
// into position index of this segment.
func (s *segment) reference(pseudo uint64, index uint32) uint32 {
	refLane := uint32(pseudo>>32) % s.threads
	if s.pass == 0 && s.slice == 0 {
		refLane = s.lane
	}

	area, start := 3*s.segLen, ((s.slice+1)%syncPoints)*s.segLen
	if refLane == s.lane {
		area += index
	}
	if s.pass == 0 {
		area, start = s.slice*s.segLen, 0
		if s.slice == 0 || refLane == s.lane {
			area += index
		}
	}
	if index == 0 || refLane == s.lane {
		area--
	}

	x := pseudo & 0xFFFFFFFF
	x = (x * x) >> 32
	x = (uint64(area) * x) >> 32
	rel := (uint64(start) + uint64(area) - (x + 1)) % uint64(s.laneLen)
	return refLane*s.laneLen + uint32(rel)
}

func extractKey(out []byte, b []block, memory, threads uint32) {
	laneLen := memory / threads
	final := &b[memory-1]
	for lane := uint32(0); lane < threads-1; lane++ {
		for i, w := range b[lane*laneLen+laneLen-1] {
			final[i] ^= w
		}
	}

	var raw [1024]byte
	for i, w := range final {
		binary.LittleEndian.PutUint64(raw[i*8:], w)
	}
	hashPrime(out, raw[:])
}

// hashPrime is the variable-length hash H' built on BLAKE2b.
func hashPrime(out, in []byte) {
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(out)))

	if len(out) <= blake2b.Size {
		h, _ := blake2b.New(len(out), nil)
		h.Write(prefix[:])
		h.Write(in)
		h.Sum(out[:0])
		return
	}

	h, _ := blake2b.New512(nil)
	h.Write(prefix[:])
	h.Write(in)
	v := h.Sum(nil)

	copy(out, v[:blake2b.Size/2])
	out = out[blake2b.Size/2:]
	for len(out) > blake2b.Size {
		next := blake2b.Sum512(v)
		v = next[:]
		copy(out, v[:blake2b.Size/2])
		out = out[blake2b.Size/2:]
	}

	h, _ = blake2b.New(len(out), nil)
	h.Write(v)
	h.Sum(out[:0])
}
