package format

import (
	"fmt"

	"github.com/joshuapare/htreekit/internal/buf"
)

// RootInfo is the index info header stored in the root block after the two
// dot entries:
//
//	Offset  Size  Field
//	0x18    1     Hash version code
//	0x19    1     Info length (always 8)
//	0x1A    1     Indirect levels (tree depth below the root)
//	0x1B    1     Unused flags (must be zero)
type RootInfo struct {
	HashVersion    uint8
	InfoLen        uint8
	IndirectLevels uint8
	UnusedFlags    uint8
}

// ParseRootInfo reads the info header from a root block.
func ParseRootInfo(block []byte) (RootInfo, error) {
	if !buf.Has(block, RootInfoOffset, RootInfoSize) {
		return RootInfo{}, fmt.Errorf("root info: %w", ErrTruncated)
	}
	return RootInfo{
		HashVersion:    block[RootInfoOffset],
		InfoLen:        block[RootInfoOffset+1],
		IndirectLevels: block[RootInfoOffset+2],
		UnusedFlags:    block[RootInfoOffset+3],
	}, nil
}

// PutRootInfo writes the info header into a root block.
func PutRootInfo(block []byte, info RootInfo) {
	block[RootInfoOffset] = info.HashVersion
	block[RootInfoOffset+1] = info.InfoLen
	block[RootInfoOffset+2] = info.IndirectLevels
	block[RootInfoOffset+3] = info.UnusedFlags
}

// CountLimit is the {limit, count} header preceding an index pair array.
// Limit is the slot capacity, count the number of live pairs (pair 0's
// sentinel included).
type CountLimit struct {
	Limit uint16
	Count uint16
}

// ReadCountLimit reads the header at off.
func ReadCountLimit(block []byte, off int) (CountLimit, error) {
	if !buf.Has(block, off, CountLimitSize) {
		return CountLimit{}, fmt.Errorf("count/limit at %d: %w", off, ErrTruncated)
	}
	return CountLimit{
		Limit: buf.U16LE(block[off:]),
		Count: buf.U16LE(block[off+2:]),
	}, nil
}

// PutCountLimit writes the header at off.
func PutCountLimit(block []byte, off int, cl CountLimit) {
	buf.PutU16LE(block[off:], cl.Limit)
	buf.PutU16LE(block[off+2:], cl.Count)
}

// Pair is one {hash, child block} index pair. Pairs are stored ascending by
// hash; pair 0's hash field is an unused sentinel and its block field points
// at the subtree covering everything below pair 1's hash.
type Pair struct {
	Hash  uint32
	Block uint32
}

// PairAt reads pair i of the array starting at base.
func PairAt(block []byte, base, i int) Pair {
	off := base + i*PairSize
	return Pair{
		Hash:  buf.U32LE(block[off:]),
		Block: buf.U32LE(block[off+4:]),
	}
}

// PutPairAt writes pair i of the array starting at base.
func PutPairAt(block []byte, base, i int, p Pair) {
	off := base + i*PairSize
	buf.PutU32LE(block[off:], p.Hash)
	buf.PutU32LE(block[off+4:], p.Block)
}

// CheckPairBounds validates that count pairs fit between base and the end of
// usable entry space.
func CheckPairBounds(block []byte, base, count int, csum bool) error {
	end, err := buf.CheckListBounds(len(block), base, count, PairSize)
	if err != nil {
		return fmt.Errorf("index pairs: %w", err)
	}
	if end > EntrySpaceEnd(len(block), csum) {
		return fmt.Errorf("index pairs: end %d overlaps tail: %w", end, ErrTruncated)
	}
	return nil
}

// CheckDots validates the fixed "." and ".." entries at the start of a root
// block: "." spans exactly DotEntrySize bytes and ".." spans the remainder
// of the block, pinning the index payload's position.
func CheckDots(block []byte, filetype bool) error {
	dot, err := DecodeDirent(block, 0, filetype)
	if err != nil {
		return err
	}
	if dot.Free() || dot.RecLen != DotEntrySize || string(dot.Name) != "." {
		return fmt.Errorf("%q entry: %w", ".", ErrBadDots)
	}
	dotdot, err := DecodeDirent(block, DotEntrySize, filetype)
	if err != nil {
		return err
	}
	if dotdot.Free() || dotdot.RecLen != len(block)-DotEntrySize || string(dotdot.Name) != ".." {
		return fmt.Errorf("%q entry: %w", "..", ErrBadDots)
	}
	return nil
}

// PutDots writes the fixed "." and ".." entries of a root block.
func PutDots(block []byte, self, parent uint32, filetype bool) error {
	var ftype uint8
	if filetype {
		ftype = 2 // directory tag
	}
	dot := Dirent{Inode: self, RecLen: DotEntrySize, NameLen: 1, Name: []byte("."), Aux: ftype}
	if err := PutDirent(block, 0, dot); err != nil {
		return err
	}
	dotdot := Dirent{
		Inode:   parent,
		RecLen:  len(block) - DotEntrySize,
		NameLen: 2,
		Name:    []byte(".."),
		Aux:     ftype,
	}
	// PutDirent zeroes through RecLen, so ".." wipes everything after the
	// dot entries. Callers must write the index payload afterwards.
	return PutDirent(block, DotEntrySize, dotdot)
}
