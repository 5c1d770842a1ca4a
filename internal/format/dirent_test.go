package format

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/htreekit/internal/buf"
)

func TestDirentRoundTrip(t *testing.T) {
	b := make([]byte, 64)
	d, err := NewDirent(42, []byte("hello.txt"), 1, true)
	require.NoError(t, err)
	require.Equal(t, DirentSize(9), d.RecLen)

	require.NoError(t, PutDirent(b, 4, d))

	got, next, err := NextDirent(b, 4, true)
	require.NoError(t, err)
	require.Equal(t, uint32(42), got.Inode)
	require.Equal(t, []byte("hello.txt"), got.Name)
	require.Equal(t, uint8(1), got.FileType(true))
	require.False(t, got.Free())
	require.Equal(t, 4+d.RecLen, next)
}

func TestDirentSize_Alignment(t *testing.T) {
	require.Equal(t, 12, DirentSize(1))
	require.Equal(t, 12, DirentSize(4))
	require.Equal(t, 16, DirentSize(5))
	require.Equal(t, 264, DirentSize(255))
	for n := 1; n <= 255; n++ {
		require.Zero(t, DirentSize(n)%DirentAlign, "name length %d", n)
		require.GreaterOrEqual(t, DirentSize(n), DirentHeaderSize+n)
	}
}

func TestDecodeDirent_Invalid(t *testing.T) {
	b := make([]byte, 32)

	// Too short for a header.
	_, err := DecodeDirent(b[:6], 0, true)
	require.ErrorIs(t, err, ErrTruncated)

	// Entry length below the header size.
	require.NoError(t, PutFreeDirent(b, 0, 12))
	b[4] = 4
	b[5] = 0
	_, err = DecodeDirent(b, 0, true)
	require.ErrorIs(t, err, ErrBadDirent)

	// Unaligned entry length.
	b[4] = 13
	_, err = DecodeDirent(b, 0, true)
	require.ErrorIs(t, err, ErrBadDirent)

	// Entry length running past the buffer.
	b[4] = 0
	b[5] = 1 // 256
	_, err = DecodeDirent(b, 0, true)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeDirent_LiveNeedsName(t *testing.T) {
	b := make([]byte, 32)
	d := Dirent{Inode: 7, RecLen: 12, NameLen: 0}
	require.NoError(t, PutDirent(b, 0, d))
	_, err := DecodeDirent(b, 0, true)
	require.ErrorIs(t, err, ErrBadDirent)

	// Name length exceeding the record is rejected too.
	d = Dirent{Inode: 7, RecLen: 12, NameLen: 9, Name: []byte("four")}
	require.NoError(t, PutDirent(b, 0, d))
	_, err = DecodeDirent(b, 0, true)
	require.ErrorIs(t, err, ErrBadDirent)
}

func TestFreeDirent(t *testing.T) {
	b := make([]byte, 64)
	require.NoError(t, PutFreeDirent(b, 0, 64))
	d, next, err := NextDirent(b, 0, true)
	require.NoError(t, err)
	require.True(t, d.Free())
	require.Nil(t, d.Name)
	require.Equal(t, 64, next)

	require.ErrorIs(t, PutFreeDirent(b, 0, 6), ErrBadDirent)
	require.ErrorIs(t, PutFreeDirent(b, 0, 0x10000), ErrTruncated)
}

// A record spanning a whole 64 KiB block is stored as 0xFFFF, the largest
// value the 16-bit field holds; smaller blocks never see the escape.
func TestRecLen_FullBlockEncoding(t *testing.T) {
	b := make([]byte, 1<<16)
	require.NoError(t, PutFreeDirent(b, 0, 1<<16))
	require.Equal(t, uint16(0xFFFF), buf.U16LE(b[4:]))

	d, next, err := NextDirent(b, 0, true)
	require.NoError(t, err)
	require.True(t, d.Free())
	require.Equal(t, 1<<16, d.RecLen)
	require.Equal(t, 1<<16, next)

	// Below 64 KiB blocks the escape value is an ordinary, and therefore
	// unaligned, entry length.
	small := make([]byte, 1024)
	small[4] = 0xFF
	small[5] = 0xFF
	_, err = DecodeDirent(small, 0, true)
	require.ErrorIs(t, err, ErrBadDirent)

	// An in-memory length at or above the escape that is not the
	// full-block case cannot be stored.
	wide := Dirent{RecLen: 0xFFFC}
	require.NoError(t, PutDirent(b, 0, wide))
	require.ErrorIs(t, PutDirent(small, 0, Dirent{RecLen: 1 << 16}), ErrTruncated)
}

func TestPutDirent_ZeroesPadding(t *testing.T) {
	b := make([]byte, 32)
	for i := range b {
		b[i] = 0xEE
	}
	d, err := NewDirent(9, []byte("ab"), 0, true)
	require.NoError(t, err)
	d.RecLen = 20 // widened entry absorbing free space
	require.NoError(t, PutDirent(b, 0, d))
	for i := DirentHeaderSize + 2; i < 20; i++ {
		require.Zero(t, b[i], "byte %d", i)
	}
	require.Equal(t, byte(0xEE), b[20])
}

func TestNewDirent_NameBounds(t *testing.T) {
	_, err := NewDirent(1, nil, 0, true)
	require.ErrorIs(t, err, ErrBadName)
	_, err = NewDirent(1, make([]byte, 256), 0, true)
	require.ErrorIs(t, err, ErrBadName)

	d, err := NewDirent(1, make([]byte, 255), 3, false)
	require.NoError(t, err)
	require.Equal(t, uint8(255), d.NameLen)
	require.Zero(t, d.Aux, "no filetype feature, no type tag")
}

func TestFullNameLen_DualPurposeByte(t *testing.T) {
	// Without the filetype feature the fourth byte extends the name length.
	b := make([]byte, 600)
	d := Dirent{Inode: 5, RecLen: 520, NameLen: 0x04, Aux: 0x01, Name: make([]byte, 260)}
	require.NoError(t, PutDirent(b, 0, d))

	got, err := DecodeDirent(b, 0, false)
	require.NoError(t, err)
	require.Len(t, got.Name, 260)

	// With it, the same bytes mean a 4-byte name with type tag 1.
	got, err = DecodeDirent(b, 0, true)
	require.NoError(t, err)
	require.Len(t, got.Name, 4)
	require.Equal(t, uint8(1), got.FileType(true))
}
