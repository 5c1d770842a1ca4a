package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootInfoRoundTrip(t *testing.T) {
	b := make([]byte, 1024)
	PutRootInfo(b, RootInfo{HashVersion: 1, InfoLen: InfoLength, IndirectLevels: 1})
	info, err := ParseRootInfo(b)
	require.NoError(t, err)
	require.Equal(t, uint8(1), info.HashVersion)
	require.Equal(t, uint8(InfoLength), info.InfoLen)
	require.Equal(t, uint8(1), info.IndirectLevels)
	require.Zero(t, info.UnusedFlags)

	_, err = ParseRootInfo(b[:RootInfoOffset+2])
	require.ErrorIs(t, err, ErrTruncated)
}

func TestCountLimitRoundTrip(t *testing.T) {
	b := make([]byte, 64)
	PutCountLimit(b, 8, CountLimit{Limit: 508, Count: 3})
	cl, err := ReadCountLimit(b, 8)
	require.NoError(t, err)
	require.Equal(t, uint16(508), cl.Limit)
	require.Equal(t, uint16(3), cl.Count)

	_, err = ReadCountLimit(b, 62)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestPairArray(t *testing.T) {
	b := make([]byte, 256)
	for i := 0; i < 4; i++ {
		PutPairAt(b, 16, i, Pair{Hash: uint32(i * 100), Block: uint32(i + 1)})
	}
	for i := 0; i < 4; i++ {
		p := PairAt(b, 16, i)
		require.Equal(t, uint32(i*100), p.Hash)
		require.Equal(t, uint32(i+1), p.Block)
	}
}

func TestCheckPairBounds(t *testing.T) {
	b := make([]byte, 1024)
	limit := NodeLimit(len(b), true)
	require.NoError(t, CheckPairBounds(b, NodePairsOffset, limit, true))
	require.Error(t, CheckPairBounds(b, NodePairsOffset, limit+1, true))
	// Without a checksum tail one more pair fits.
	require.NoError(t, CheckPairBounds(b, NodePairsOffset, NodeLimit(len(b), false), false))
}

func TestDots(t *testing.T) {
	b := make([]byte, 1024)
	require.NoError(t, PutDots(b, 2, 5, true))
	require.NoError(t, CheckDots(b, true))

	dot, err := DecodeDirent(b, 0, true)
	require.NoError(t, err)
	require.Equal(t, uint32(2), dot.Inode)
	require.Equal(t, []byte("."), dot.Name)
	require.Equal(t, DotEntrySize, dot.RecLen)

	dotdot, err := DecodeDirent(b, DotEntrySize, true)
	require.NoError(t, err)
	require.Equal(t, uint32(5), dotdot.Inode)
	require.Equal(t, []byte(".."), dotdot.Name)
	require.Equal(t, len(b)-DotEntrySize, dotdot.RecLen)

	// A ".." that does not span the rest of the block is rejected.
	b[DotEntrySize+4] = 32
	b[DotEntrySize+5] = 0
	require.ErrorIs(t, CheckDots(b, true), ErrBadDots)
}

func TestLimits(t *testing.T) {
	// 1024-byte block with checksum tail: usable space ends 12 bytes short.
	require.Equal(t, 1012, EntrySpaceEnd(1024, true))
	require.Equal(t, 1024, EntrySpaceEnd(1024, false))
	require.Equal(t, (1012-RootPairsOffset)/PairSize, RootLimit(1024, true))
	require.Equal(t, (1012-NodePairsOffset)/PairSize, NodeLimit(1024, true))
	require.Greater(t, NodeLimit(1024, true), RootLimit(1024, true))
}
