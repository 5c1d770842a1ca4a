package hash

import "math/bits"

// Round constants of the half-MD4 transform (round 1 adds no constant).
const (
	halfMD4K2 = 0x5A827999
	halfMD4K3 = 0x6ED9EBA1
)

func mdF(x, y, z uint32) uint32 { return z ^ (x & (y ^ z)) }
func mdG(x, y, z uint32) uint32 { return (x & y) + ((x ^ y) & z) }
func mdH(x, y, z uint32) uint32 { return x ^ y ^ z }

// halfMD4Transform runs one 512-bit-message-style compression over eight
// input words: three rounds of eight operations, half the full MD4
// schedule. The word order and shift amounts are fixed by the reference
// and must not be reordered.
func halfMD4Transform(state *[4]uint32, in *[8]uint32) {
	a, b, c, d := state[0], state[1], state[2], state[3]

	// Round 1
	a = bits.RotateLeft32(a+mdF(b, c, d)+in[0], 3)
	d = bits.RotateLeft32(d+mdF(a, b, c)+in[1], 7)
	c = bits.RotateLeft32(c+mdF(d, a, b)+in[2], 11)
	b = bits.RotateLeft32(b+mdF(c, d, a)+in[3], 19)
	a = bits.RotateLeft32(a+mdF(b, c, d)+in[4], 3)
	d = bits.RotateLeft32(d+mdF(a, b, c)+in[5], 7)
	c = bits.RotateLeft32(c+mdF(d, a, b)+in[6], 11)
	b = bits.RotateLeft32(b+mdF(c, d, a)+in[7], 19)

	// Round 2
	a = bits.RotateLeft32(a+mdG(b, c, d)+in[1]+halfMD4K2, 3)
	d = bits.RotateLeft32(d+mdG(a, b, c)+in[3]+halfMD4K2, 5)
	c = bits.RotateLeft32(c+mdG(d, a, b)+in[5]+halfMD4K2, 9)
	b = bits.RotateLeft32(b+mdG(c, d, a)+in[7]+halfMD4K2, 13)
	a = bits.RotateLeft32(a+mdG(b, c, d)+in[0]+halfMD4K2, 3)
	d = bits.RotateLeft32(d+mdG(a, b, c)+in[2]+halfMD4K2, 5)
	c = bits.RotateLeft32(c+mdG(d, a, b)+in[4]+halfMD4K2, 9)
	b = bits.RotateLeft32(b+mdG(c, d, a)+in[6]+halfMD4K2, 13)

	// Round 3
	a = bits.RotateLeft32(a+mdH(b, c, d)+in[3]+halfMD4K3, 3)
	d = bits.RotateLeft32(d+mdH(a, b, c)+in[7]+halfMD4K3, 9)
	c = bits.RotateLeft32(c+mdH(d, a, b)+in[2]+halfMD4K3, 11)
	b = bits.RotateLeft32(b+mdH(c, d, a)+in[6]+halfMD4K3, 15)
	a = bits.RotateLeft32(a+mdH(b, c, d)+in[1]+halfMD4K3, 3)
	d = bits.RotateLeft32(d+mdH(a, b, c)+in[5]+halfMD4K3, 9)
	c = bits.RotateLeft32(c+mdH(d, a, b)+in[0]+halfMD4K3, 11)
	b = bits.RotateLeft32(b+mdH(c, d, a)+in[4]+halfMD4K3, 15)

	state[0] += a
	state[1] += b
	state[2] += c
	state[3] += d
}
