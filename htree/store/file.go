package store

import (
	"fmt"
	"os"

	"github.com/joshuapare/htreekit/internal/mmfile"
	"github.com/joshuapare/htreekit/pkg/types"
)

// FileStore is a BlockStore over a memory-mapped image file. Block reads
// and writes go through the mapping; Sync flushes dirty pages and the
// header. Growth extends the file and remaps.
//
// NOT thread-safe, matching the engine's single-threaded contract.
type FileStore struct {
	f          *os.File
	data       []byte // whole file mapping, header page included
	blockSize  uint32
	blockCount uint32
	info       *types.InodeInfo
	readonly   bool
}

// CreateFile creates a fresh image at path. A zero info.FSUUID is replaced
// with a random UUID. The store starts with no blocks.
func CreateFile(path string, blockSize uint32, info *types.InodeInfo) (*FileStore, error) {
	if blockSize < types.MinBlockSize || blockSize > types.MaxBlockSize {
		return nil, fmt.Errorf("image %s: block size %d out of range", path, blockSize)
	}
	NewImageUUID(info)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}
	if _, err := f.Write(encodeHeader(blockSize, 0, info)); err != nil {
		f.Close()
		return nil, err
	}
	data, err := mmfile.MapFile(f, imageHeaderSize, false)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &FileStore{f: f, data: data, blockSize: blockSize, info: info}, nil
}

// OpenFile opens an existing image. The returned InodeInfo reflects the
// stored inode metadata; mutations to it (directory size growth) are
// persisted by Sync and Close.
func OpenFile(path string, readonly bool) (*FileStore, *types.InodeInfo, error) {
	flag := os.O_RDWR
	if readonly {
		flag = os.O_RDONLY
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if st.Size() < imageHeaderSize {
		f.Close()
		return nil, nil, fmt.Errorf("image %s: truncated header", path)
	}
	data, err := mmfile.MapFile(f, int(st.Size()), readonly)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	blockSize, blockCount, info, err := decodeHeader(data[:imageHeaderSize])
	if err != nil {
		mmfile.Unmap(data)
		f.Close()
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	want := int64(imageHeaderSize) + int64(blockCount)*int64(blockSize)
	if st.Size() < want {
		mmfile.Unmap(data)
		f.Close()
		return nil, nil, fmt.Errorf("image %s: %d bytes, need %d for %d blocks",
			path, st.Size(), want, blockCount)
	}
	s := &FileStore{
		f:          f,
		data:       data,
		blockSize:  blockSize,
		blockCount: blockCount,
		info:       info,
		readonly:   readonly,
	}
	return s, info, nil
}

// Info returns the image's inode metadata.
func (s *FileStore) Info() *types.InodeInfo { return s.info }

// BlockSize implements types.BlockStore.
func (s *FileStore) BlockSize() uint32 { return s.blockSize }

// Blocks returns the number of allocated blocks.
func (s *FileStore) Blocks() int { return int(s.blockCount) }

func (s *FileStore) blockRange(addr uint32) (int, int, error) {
	if addr >= s.blockCount {
		return 0, 0, fmt.Errorf("block %d of %d: %w", addr, s.blockCount, types.ErrCorruptIndex)
	}
	start := imageHeaderSize + int(addr)*int(s.blockSize)
	return start, start + int(s.blockSize), nil
}

// ReadBlock returns a copy of the block at addr.
func (s *FileStore) ReadBlock(addr uint32) ([]byte, error) {
	start, end, err := s.blockRange(addr)
	if err != nil {
		return nil, err
	}
	out := make([]byte, s.blockSize)
	copy(out, s.data[start:end])
	return out, nil
}

// WriteBlock replaces the block at addr through the mapping.
func (s *FileStore) WriteBlock(addr uint32, data []byte) error {
	if s.readonly {
		return types.ErrReadonly
	}
	if uint32(len(data)) != s.blockSize {
		return fmt.Errorf("write block %d: %d bytes, block size %d", addr, len(data), s.blockSize)
	}
	start, end, err := s.blockRange(addr)
	if err != nil {
		return err
	}
	copy(s.data[start:end], data)
	return nil
}

// AllocateBlock grows the file by one zeroed block and remaps.
func (s *FileStore) AllocateBlock() (uint32, error) {
	if s.readonly {
		return 0, types.ErrReadonly
	}
	newCount := s.blockCount + 1
	newSize := int64(imageHeaderSize) + int64(newCount)*int64(s.blockSize)
	if err := mmfile.Unmap(s.data); err != nil {
		return 0, err
	}
	s.data = nil
	if err := mmfile.Grow(s.f, newSize); err != nil {
		return 0, fmt.Errorf("%w: %w", types.ErrNoSpace, err)
	}
	data, err := mmfile.MapFile(s.f, int(newSize), false)
	if err != nil {
		return 0, err
	}
	s.data = data
	s.blockCount = newCount
	return newCount - 1, nil
}

// Sync rewrites the header from the current inode metadata and flushes the
// mapping and file to disk.
func (s *FileStore) Sync() error {
	if s.readonly {
		return nil
	}
	copy(s.data[:imageHeaderSize], encodeHeader(s.blockSize, s.blockCount, s.info))
	if err := mmfile.Sync(s.f, s.data); err != nil {
		return err
	}
	return mmfile.Datasync(s.f)
}

// Close syncs (when writable) and releases the mapping and file.
func (s *FileStore) Close() error {
	var first error
	if !s.readonly && s.data != nil {
		first = s.Sync()
	}
	if s.data != nil {
		if err := mmfile.Unmap(s.data); err != nil && first == nil {
			first = err
		}
		s.data = nil
	}
	if err := s.f.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
