package hash

// prepHashbuf packs name bytes into 32-bit words the way the reference
// implementation does: each word accumulates four bytes high-to-low, words
// are primed with a pad value built from the remaining source length, and
// the tail of the word array is filled with the pad. src is the entire
// remaining input; only the first len(dst)*4 bytes are consumed.
func prepHashbuf(src []byte, dst []uint32, unsigned bool) {
	slen := len(src)
	pad := uint32(slen) | uint32(slen)<<8
	pad |= pad << 16

	n := slen
	if n > len(dst)*4 {
		n = len(dst) * 4
	}

	val := pad
	w := 0
	for i := 0; i < n; i++ {
		var c int32
		if unsigned {
			c = int32(src[i])
		} else {
			c = int32(int8(src[i]))
		}
		val = uint32(c) + val<<8
		if i%4 == 3 {
			dst[w] = val
			w++
			val = pad
		}
	}
	if w < len(dst) {
		dst[w] = val
		w++
	}
	for ; w < len(dst); w++ {
		dst[w] = pad
	}
}
