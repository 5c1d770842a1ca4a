// Package store provides BlockStore implementations: an in-memory store
// for tests and tooling, and a memory-mapped image-file store for working
// with directory images on disk.
package store

import (
	"fmt"

	"github.com/joshuapare/htreekit/pkg/types"
)

// MemStore keeps directory blocks in memory. Addresses are assigned
// sequentially from zero.
//
// NOT thread-safe, matching the engine's single-threaded contract.
type MemStore struct {
	blockSize uint32
	blocks    [][]byte
	capacity  int // maximum block count; 0 means unbounded
}

// NewMemStore returns an empty store with the given block size.
func NewMemStore(blockSize uint32) *MemStore {
	return &MemStore{blockSize: blockSize}
}

// NewBoundedMemStore returns a store that refuses to allocate more than
// capacity blocks, for exercising allocation-failure paths.
func NewBoundedMemStore(blockSize uint32, capacity int) *MemStore {
	return &MemStore{blockSize: blockSize, capacity: capacity}
}

// BlockSize implements types.BlockStore.
func (s *MemStore) BlockSize() uint32 { return s.blockSize }

// Blocks returns the number of allocated blocks.
func (s *MemStore) Blocks() int { return len(s.blocks) }

// ReadBlock returns a copy of the block at addr.
func (s *MemStore) ReadBlock(addr uint32) ([]byte, error) {
	if int(addr) >= len(s.blocks) {
		return nil, fmt.Errorf("read block %d of %d: %w", addr, len(s.blocks), types.ErrCorruptIndex)
	}
	out := make([]byte, s.blockSize)
	copy(out, s.blocks[addr])
	return out, nil
}

// WriteBlock replaces the block at addr.
func (s *MemStore) WriteBlock(addr uint32, data []byte) error {
	if int(addr) >= len(s.blocks) {
		return fmt.Errorf("write block %d of %d: %w", addr, len(s.blocks), types.ErrCorruptIndex)
	}
	if uint32(len(data)) != s.blockSize {
		return fmt.Errorf("write block %d: %d bytes, block size %d", addr, len(data), s.blockSize)
	}
	copy(s.blocks[addr], data)
	return nil
}

// AllocateBlock appends a zeroed block and returns its address.
func (s *MemStore) AllocateBlock() (uint32, error) {
	if s.capacity > 0 && len(s.blocks) >= s.capacity {
		return 0, fmt.Errorf("capacity %d blocks: %w", s.capacity, types.ErrNoSpace)
	}
	s.blocks = append(s.blocks, make([]byte, s.blockSize))
	return uint32(len(s.blocks) - 1), nil
}
