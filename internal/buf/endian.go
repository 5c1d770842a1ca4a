// Package buf contains endian and bounds helpers shared by the on-disk
// codecs. Directory blocks store every integer little-endian.
package buf

import "encoding/binary"

// U16LE reads a little-endian uint16 from b. Returns 0 when b is too short.
func U16LE(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// U32LE reads a little-endian uint32 from b. Returns 0 when b is too short.
func U32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// PutU16LE writes v to b in little-endian order.
func PutU16LE(b []byte, v uint16) {
	binary.LittleEndian.PutUint16(b, v)
}

// PutU32LE writes v to b in little-endian order.
func PutU32LE(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b, v)
}
