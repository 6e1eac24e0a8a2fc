package core

import "math/bits"

// rows and columns list the word indices fed to each BlaMka round when the
// 1 KiB block is viewed as an 8x8 matrix of 16-byte registers.
var rows, columns [8][16]int

func init() {
	for r := 0; r < 8; r++ {
		for k := 0; k < 16; k++ {
			rows[r][k] = 16*r + k
		}
	}
	for c := 0; c < 8; c++ {
		for k := 0; k < 8; k++ {
			columns[c][2*k] = 16*k + 2*c
			columns[c][2*k+1] = 16*k + 2*c + 1
		}
	}
}

// compress is the Argon2 compression function G. With xor set the result is
// folded into out (version 0x13); otherwise out is overwritten.
// out may alias x.
func compress(out, x, y *block, xor bool) {
	var r, t block
	for i := range r {
		r[i] = x[i] ^ y[i]
	}
	t = r

	for i := range rows {
		round(&t, &rows[i])
	}
	for i := range columns {
		round(&t, &columns[i])
	}

	if xor {
		for i := range out {
			out[i] ^= r[i] ^ t[i]
		}
		return
	}
	for i := range out {
		out[i] = r[i] ^ t[i]
	}
}

func round(t *block, idx *[16]int) {
	var v [16]uint64
	for k, j := range idx {
		v[k] = t[j]
	}

	v[0], v[4], v[8], v[12] = gb(v[0], v[4], v[8], v[12])
	v[1], v[5], v[9], v[13] = gb(v[1], v[5], v[9], v[13])
	v[2], v[6], v[10], v[14] = gb(v[2], v[6], v[10], v[14])
	v[3], v[7], v[11], v[15] = gb(v[3], v[7], v[11], v[15])
	v[0], v[5], v[10], v[15] = gb(v[0], v[5], v[10], v[15])
	v[1], v[6], v[11], v[12] = gb(v[1], v[6], v[11], v[12])
	v[2], v[7], v[8], v[13] = gb(v[2], v[7], v[8], v[13])
	v[3], v[4], v[9], v[14] = gb(v[3], v[4], v[9], v[14])

	for k, j := range idx {
		t[j] = v[k]
	}
}

// gb is the BlaMka variant of the BLAKE2b quarter round.
func gb(a, b, c, d uint64) (uint64, uint64, uint64, uint64) {
	a += b + 2*uint64(uint32(a))*uint64(uint32(b))
	d = bits.RotateLeft64(d^a, -32)
	c += d + 2*uint64(uint32(c))*uint64(uint32(d))
	b = bits.RotateLeft64(b^c, -24)
	a += b + 2*uint64(uint32(a))*uint64(uint32(b))
	d = bits.RotateLeft64(d^a, -16)
	c += d + 2*uint64(uint32(c))*uint64(uint32(d))
	b = bits.RotateLeft64(b^c, -63)
	return a, b, c, d
}
