package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTailRoundTrip(t *testing.T) {
	b := make([]byte, 1024)
	require.NoError(t, PutTail(b, 0xCAFEBABE))
	sum, err := ReadTail(b)
	require.NoError(t, err)
	require.Equal(t, uint32(0xCAFEBABE), sum)
}

func TestReadTail_ShapeChecks(t *testing.T) {
	b := make([]byte, 1024)
	require.NoError(t, PutTail(b, 1))
	off := TailOffset(len(b))

	// Non-zero pseudo inode.
	b[off] = 1
	_, err := ReadTail(b)
	require.ErrorIs(t, err, ErrBadTail)
	b[off] = 0

	// Wrong pseudo entry length.
	b[off+4] = 16
	_, err = ReadTail(b)
	require.ErrorIs(t, err, ErrBadTail)
	b[off+4] = TailSize

	// Non-zero name length.
	b[off+6] = 1
	_, err = ReadTail(b)
	require.ErrorIs(t, err, ErrBadTail)
}

func TestTail_TooSmall(t *testing.T) {
	b := make([]byte, TailSize-1)
	_, err := ReadTail(b)
	require.ErrorIs(t, err, ErrTruncated)
	require.ErrorIs(t, PutTail(b, 0), ErrTruncated)
}
