// Package csum computes and verifies the optional trailing checksum carried
// by index and leaf blocks when the metadata checksum feature is enabled.
// The checksum is CRC32c seeded, in order, with the filesystem UUID, the
// directory inode number, and the inode generation, then run over the block
// contents excluding the tail. Mismatches are reported, never repaired.
package csum

import (
	"fmt"

	"hash/crc32"

	"github.com/joshuapare/htreekit/internal/buf"
	"github.com/joshuapare/htreekit/internal/format"
	"github.com/joshuapare/htreekit/pkg/types"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// CRC32c is the raw-seed CRC32c the reference uses: no implicit initial or
// final inversion, so successive calls chain through the crc argument.
func CRC32c(crc uint32, p []byte) uint32 {
	return ^crc32.Update(^crc, castagnoli, p)
}

// Seed derives the per-inode checksum seed.
func Seed(uuid [16]byte, ino, gen uint32) uint32 {
	var w [4]byte
	s := CRC32c(^uint32(0), uuid[:])
	buf.PutU32LE(w[:], ino)
	s = CRC32c(s, w[:])
	buf.PutU32LE(w[:], gen)
	return CRC32c(s, w[:])
}

// Validator checksums blocks of one directory inode.
type Validator struct {
	seed    uint32
	enabled bool
}

// New builds a Validator for the directory described by ictx. When the
// metadata checksum feature is off, Stamp and Verify become no-ops.
func New(ictx types.InodeContext) Validator {
	return Validator{
		seed:    Seed(ictx.UUID(), ictx.InodeNumber(), ictx.Generation()),
		enabled: ictx.Features().MetadataCsum,
	}
}

// Enabled reports whether the metadata checksum feature is active.
func (v Validator) Enabled() bool { return v.enabled }

// Compute returns the checksum of block, excluding the tail region.
func (v Validator) Compute(block []byte) uint32 {
	return CRC32c(v.seed, block[:format.TailOffset(len(block))])
}

// Stamp writes the checksum tail into block. No-op when disabled.
func (v Validator) Stamp(block []byte) error {
	if !v.enabled {
		return nil
	}
	return format.PutTail(block, v.Compute(block))
}

// Verify checks the stored tail against the block contents. No-op when
// disabled. A malformed tail or a checksum mismatch both surface as
// ErrChecksumMismatch.
func (v Validator) Verify(block []byte) error {
	if !v.enabled {
		return nil
	}
	stored, err := format.ReadTail(block)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrChecksumMismatch, err)
	}
	if got := v.Compute(block); got != stored {
		return fmt.Errorf("%w: stored %#08x, computed %#08x", types.ErrChecksumMismatch, stored, got)
	}
	return nil
}
