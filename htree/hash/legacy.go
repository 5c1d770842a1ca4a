package hash

// legacyMultiplier is the constant of the original multiplicative directory
// hash.
const legacyMultiplier = 0x6D22F5

// legacyHash is the pre-index directory hash, kept for filesystems created
// before the newer algorithms existed. It never produces a minor hash.
func legacyHash(name []byte, unsigned bool) uint32 {
	h0 := uint32(0x12A3FE2D)
	h1 := uint32(0x37ABE8F9)
	for _, b := range name {
		var c int32
		if unsigned {
			c = int32(b)
		} else {
			c = int32(int8(b))
		}
		h := h1 + (h0 ^ uint32(c)*legacyMultiplier)
		if h&0x80000000 != 0 {
			h -= 0x7FFFFFFF
		}
		h1 = h0
		h0 = h
	}
	return h0 << 1
}
