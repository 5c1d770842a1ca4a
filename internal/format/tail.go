package format

import (
	"fmt"

	"github.com/joshuapare/htreekit/internal/buf"
)

// The checksum tail is a directory-entry-shaped placeholder occupying the
// last TailSize bytes of a block when the metadata checksum feature is
// enabled:
//
//	Offset  Size  Field
//	0x00    4     Inode number, always 0
//	0x04    2     Entry length, always 12
//	0x06    1     Name length, always 0
//	0x07    1     Reserved, 0
//	0x08    4     Checksum over the preceding block bytes

// TailOffset returns the offset of the tail within a block.
func TailOffset(blockSize int) int { return blockSize - TailSize }

// ReadTail validates the tail shape and returns the stored checksum.
func ReadTail(block []byte) (uint32, error) {
	off := TailOffset(len(block))
	if !buf.Has(block, off, TailSize) {
		return 0, fmt.Errorf("tail: %w", ErrTruncated)
	}
	if buf.U32LE(block[off:]) != 0 || buf.U16LE(block[off+4:]) != TailSize || block[off+6] != 0 {
		return 0, fmt.Errorf("tail at %d: %w", off, ErrBadTail)
	}
	return buf.U32LE(block[off+8:]), nil
}

// PutTail writes the tail shape and checksum into the block's last bytes.
func PutTail(block []byte, sum uint32) error {
	off := TailOffset(len(block))
	if !buf.Has(block, off, TailSize) {
		return fmt.Errorf("tail: %w", ErrTruncated)
	}
	buf.PutU32LE(block[off:], 0)
	buf.PutU16LE(block[off+4:], TailSize)
	block[off+6] = 0
	block[off+7] = 0
	buf.PutU32LE(block[off+8:], sum)
	return nil
}
