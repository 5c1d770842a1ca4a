package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/htreekit/pkg/types"
)

func testFileInode() *types.InodeInfo {
	return &types.InodeInfo{
		Ino:         2,
		Gen:         7,
		HashVersion: 1,
		Seed:        &[4]uint32{0x11, 0x22, 0x33, 0x44},
		Flags:       types.Features{DirIndex: true, FileType: true, MetadataCsum: true},
	}
}

func TestFileStore_CreateReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dir.img")
	info := testFileInode()

	s, err := CreateFile(path, 1024, info)
	require.NoError(t, err)
	require.NotEqual(t, [16]byte{}, info.FSUUID, "zero UUID is replaced")

	a0, err := s.AllocateBlock()
	require.NoError(t, err)
	require.Equal(t, uint32(0), a0)
	block := make([]byte, 1024)
	copy(block, []byte("persisted"))
	require.NoError(t, s.WriteBlock(a0, block))
	info.ByteSize = 1024
	require.NoError(t, s.Close())

	s2, info2, err := OpenFile(path, true)
	require.NoError(t, err)
	defer s2.Close()

	require.Equal(t, uint32(1024), s2.BlockSize())
	require.Equal(t, 1, s2.Blocks())
	require.Equal(t, info.FSUUID, info2.FSUUID)
	require.Equal(t, uint32(2), info2.Ino)
	require.Equal(t, uint32(7), info2.Gen)
	require.Equal(t, uint64(1024), info2.ByteSize)
	require.Equal(t, uint8(1), info2.HashVersion)
	require.NotNil(t, info2.Seed)
	require.Equal(t, *info.Seed, *info2.Seed)
	require.Equal(t, info.Flags, info2.Flags)

	got, err := s2.ReadBlock(0)
	require.NoError(t, err)
	require.Equal(t, []byte("persisted"), got[:9])
}

func TestFileStore_ReadonlyRejectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dir.img")
	s, err := CreateFile(path, 1024, testFileInode())
	require.NoError(t, err)
	_, err = s.AllocateBlock()
	require.NoError(t, err)
	require.NoError(t, s.Close())

	ro, _, err := OpenFile(path, true)
	require.NoError(t, err)
	defer ro.Close()

	require.ErrorIs(t, ro.WriteBlock(0, make([]byte, 1024)), types.ErrReadonly)
	_, err = ro.AllocateBlock()
	require.ErrorIs(t, err, types.ErrReadonly)
}

func TestFileStore_RejectsBadImages(t *testing.T) {
	dir := t.TempDir()

	_, err := CreateFile(filepath.Join(dir, "b.img"), 512, testFileInode())
	require.Error(t, err, "block size below the minimum")

	// Refuses to clobber an existing file.
	path := filepath.Join(dir, "c.img")
	s, err := CreateFile(path, 1024, testFileInode())
	require.NoError(t, err)
	require.NoError(t, s.Close())
	_, err = CreateFile(path, 1024, testFileInode())
	require.Error(t, err)

	_, _, err = OpenFile(filepath.Join(dir, "missing.img"), true)
	require.Error(t, err)
}

func TestHeaderCodec_RoundTrip(t *testing.T) {
	info := testFileInode()
	info.FSUUID = [16]byte{9, 8, 7, 6, 5, 4, 3, 2, 1}
	info.ByteSize = 5 << 32 // exercise the high dword

	h := encodeHeader(2048, 17, info)
	blockSize, blockCount, got, err := decodeHeader(h)
	require.NoError(t, err)
	require.Equal(t, uint32(2048), blockSize)
	require.Equal(t, uint32(17), blockCount)
	require.Equal(t, info.Ino, got.Ino)
	require.Equal(t, info.ByteSize, got.ByteSize)
	require.Equal(t, info.FSUUID, got.FSUUID)
	require.Equal(t, info.Flags, got.Flags)

	h[0] = 'X'
	_, _, _, err = decodeHeader(h)
	require.Error(t, err)
}

func TestFeatureBits_RoundTrip(t *testing.T) {
	all := types.Features{
		DirIndex: true, FileType: true, UnsignedHash: true,
		MetadataCsum: true, Casefold: true,
	}
	require.Equal(t, all, unpackFeatures(packFeatures(all)))
	require.Equal(t, types.Features{}, unpackFeatures(packFeatures(types.Features{})))
	one := types.Features{Casefold: true}
	require.Equal(t, one, unpackFeatures(packFeatures(one)))
}
