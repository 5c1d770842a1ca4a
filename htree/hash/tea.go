package hash

// teaDelta is the TEA key schedule constant.
const teaDelta = 0x9E3779B9

// teaTransform mixes four input words into the first two state words with
// 16 rounds of the TEA block cipher round function.
func teaTransform(state *[4]uint32, in *[4]uint32) {
	sum := uint32(0)
	b0, b1 := state[0], state[1]
	a, b, c, d := in[0], in[1], in[2], in[3]

	for n := 0; n < 16; n++ {
		sum += teaDelta
		b0 += (b1<<4 + a) ^ (b1 + sum) ^ (b1>>5 + b)
		b1 += (b0<<4 + c) ^ (b0 + sum) ^ (b0>>5 + d)
	}

	state[0] += b0
	state[1] += b1
}
