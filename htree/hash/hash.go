// Package hash computes the (major, minor) hash pair used as the on-disk
// sort key for directory entry names. Three base algorithms are defined by
// the format, each with a signed and an unsigned character variant; the
// results are stored on disk, so every bit must match the reference
// implementation.
package hash

import "fmt"

// Hash version codes (on-disk values).
const (
	Legacy          uint8 = 0
	HalfMD4         uint8 = 1
	Tea             uint8 = 2
	LegacyUnsigned  uint8 = 3
	HalfMD4Unsigned uint8 = 4
	TeaUnsigned     uint8 = 5
)

// ErrUnknownVersion is returned for hash version codes the format does not
// define.
var ErrUnknownVersion = fmt.Errorf("hash: unknown version code")

// defaultSeed is the MD4-style initialization vector used when the
// filesystem carries no hash seed.
var defaultSeed = [4]uint32{0x67452301, 0xEFCDAB89, 0x98BADCFE, 0x10325476}

// htreeEOF is the hash value reserved as the readdir end marker; computed
// majors colliding with it are folded one position down.
const htreeEOF = 0x7FFFFFFF

// Known reports whether version is a defined hash version code.
func Known(version uint8) bool { return version <= TeaUnsigned }

// Unsigned reports whether version is one of the unsigned-character
// variants.
func Unsigned(version uint8) bool { return version >= LegacyUnsigned && version <= TeaUnsigned }

// PromoteUnsigned maps a signed version code to its unsigned variant. The
// unsigned codes map to themselves.
func PromoteUnsigned(version uint8) uint8 {
	if version <= Tea {
		return version + LegacyUnsigned
	}
	return version
}

// Compute hashes name under the given version. A nil or all-zero seed
// selects the default seed. The empty name hashes to (0, 0). The returned
// major always has its low bit clear.
func Compute(name []byte, seed *[4]uint32, version uint8) (major, minor uint32, err error) {
	if !Known(version) {
		return 0, 0, fmt.Errorf("%w: %d", ErrUnknownVersion, version)
	}
	if len(name) == 0 {
		return 0, 0, nil
	}

	state := defaultSeed
	if seed != nil {
		for _, w := range seed {
			if w != 0 {
				state = *seed
				break
			}
		}
	}
	unsigned := Unsigned(version)

	switch version {
	case Legacy, LegacyUnsigned:
		major = legacyHash(name, unsigned)

	case HalfMD4, HalfMD4Unsigned:
		var in [8]uint32
		for rest := name; len(rest) > 0; {
			prepHashbuf(rest, in[:], unsigned)
			halfMD4Transform(&state, &in)
			if len(rest) <= 32 {
				break
			}
			rest = rest[32:]
		}
		major = state[1]
		minor = state[2]

	case Tea, TeaUnsigned:
		var in [4]uint32
		for rest := name; len(rest) > 0; {
			prepHashbuf(rest, in[:4], unsigned)
			teaTransform(&state, &in)
			if len(rest) <= 16 {
				break
			}
			rest = rest[16:]
		}
		major = state[0]
		minor = state[1]
	}

	major &^= 1
	if major == htreeEOF<<1 {
		major = (htreeEOF - 1) << 1
	}
	return major, minor, nil
}
