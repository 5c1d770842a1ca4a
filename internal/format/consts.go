// Package format houses the bit-exact codecs for the on-disk hashed
// directory index: directory entries, the index root block, internal index
// blocks, and the optional checksum tail. The goal is to keep the byte-level
// layout in one place, allocation-free where possible, and independent from
// the engine packages that orchestrate the data.
package format

const (
	// DirentHeaderSize is the fixed directory entry header: inode (4),
	// entry length (2), name length (1), and the dual-purpose type byte (1).
	DirentHeaderSize = 8

	// DirentAlign is the required alignment of directory entry lengths.
	DirentAlign = 4

	// DotEntrySize is the on-disk size of the fixed "." entry at the start
	// of the index root block; the ".." entry header follows at this offset
	// and its entry length spans the remainder of the block.
	DotEntrySize = 12

	// RootInfoOffset is where the index info header sits in the root block,
	// immediately after the two dot entries.
	RootInfoOffset = 2 * DotEntrySize

	// RootInfoSize is the size of the index info header
	// {hash_version, info_length, indirect_levels, unused_flags}.
	RootInfoSize = 4

	// InfoLength is the value stored in the info header's info_length
	// field. It covers the info header plus the count/limit header.
	InfoLength = 8

	// CountLimitSize is the {limit:u16, count:u16} header preceding every
	// index pair array.
	CountLimitSize = 4

	// PairSize is the size of one {hash:u32, block:u32} index pair.
	PairSize = 8

	// RootPairsOffset is where the pair array starts in the root block.
	RootPairsOffset = RootInfoOffset + RootInfoSize + CountLimitSize

	// NodePairsOffset is where the pair array starts in an internal index
	// block, which carries only the count/limit header.
	NodePairsOffset = CountLimitSize

	// TailSize is the size of the trailing checksum pseudo-entry present
	// when the metadata checksum feature is enabled.
	TailSize = 12

	// HashSentinel is the stored hash of pair 0 in every index block. The
	// field is never consulted during search; pair 0 is the unconditional
	// lower bound of the block's range.
	HashSentinel = 0
)

// DirentSize returns the aligned on-disk size of an entry holding a name of
// nameLen bytes.
func DirentSize(nameLen int) int {
	return (DirentHeaderSize + nameLen + DirentAlign - 1) &^ (DirentAlign - 1)
}

// EntrySpaceEnd returns the end offset of usable entry space in a block:
// the block size, minus the checksum tail when the feature is enabled.
func EntrySpaceEnd(blockSize int, csum bool) int {
	if csum {
		return blockSize - TailSize
	}
	return blockSize
}

// RootLimit returns the pair capacity of the root block for a block size.
func RootLimit(blockSize int, csum bool) int {
	return (EntrySpaceEnd(blockSize, csum) - RootPairsOffset) / PairSize
}

// NodeLimit returns the pair capacity of an internal index block.
func NodeLimit(blockSize int, csum bool) int {
	return (EntrySpaceEnd(blockSize, csum) - NodePairsOffset) / PairSize
}
