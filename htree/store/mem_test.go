package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/htreekit/pkg/types"
)

func TestMemStore_AllocReadWrite(t *testing.T) {
	s := NewMemStore(1024)
	require.Equal(t, uint32(1024), s.BlockSize())
	require.Zero(t, s.Blocks())

	a0, err := s.AllocateBlock()
	require.NoError(t, err)
	a1, err := s.AllocateBlock()
	require.NoError(t, err)
	require.Equal(t, uint32(0), a0)
	require.Equal(t, uint32(1), a1)

	data := make([]byte, 1024)
	data[7] = 0x55
	require.NoError(t, s.WriteBlock(a1, data))

	got, err := s.ReadBlock(a1)
	require.NoError(t, err)
	require.Equal(t, byte(0x55), got[7])

	// Reads hand out copies, not aliases.
	got[7] = 0
	again, err := s.ReadBlock(a1)
	require.NoError(t, err)
	require.Equal(t, byte(0x55), again[7])
}

func TestMemStore_Bounds(t *testing.T) {
	s := NewMemStore(1024)
	_, err := s.ReadBlock(0)
	require.Error(t, err)
	require.Error(t, s.WriteBlock(0, make([]byte, 1024)))

	_, err = s.AllocateBlock()
	require.NoError(t, err)
	require.Error(t, s.WriteBlock(0, make([]byte, 512)), "size mismatch rejected")
}

func TestBoundedMemStore_NoSpace(t *testing.T) {
	s := NewBoundedMemStore(1024, 2)
	_, err := s.AllocateBlock()
	require.NoError(t, err)
	_, err = s.AllocateBlock()
	require.NoError(t, err)
	_, err = s.AllocateBlock()
	require.ErrorIs(t, err, types.ErrNoSpace)
}
