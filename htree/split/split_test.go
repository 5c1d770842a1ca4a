package split

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/htreekit/htree/dirty"
	"github.com/joshuapare/htreekit/htree/hash"
	"github.com/joshuapare/htreekit/htree/index"
	"github.com/joshuapare/htreekit/htree/store"
	"github.com/joshuapare/htreekit/internal/format"
	"github.com/joshuapare/htreekit/pkg/types"
)

// --- helpers ---

const testBlockSize = 1024

// rawEngine builds an engine over a store whose block 0 is an untouched
// placeholder root, for tests that drive the split primitives directly.
func rawEngine(t *testing.T) (*Engine, *store.MemStore) {
	t.Helper()
	s := store.NewMemStore(testBlockSize)
	ictx := &types.InodeInfo{
		Ino: 2,
		Gen: 1,
		Flags: types.Features{
			DirIndex: true,
			FileType: true,
			// Checksums stay off so tests can write raw blocks.
		},
	}
	if _, err := s.AllocateBlock(); err != nil {
		t.Fatal(err)
	}
	r := index.NewReader(s, ictx)
	return NewEngine(s, ictx, r, dirty.NewTracker()), s
}

// writeLeaf allocates a block and fills it with the given live names.
func writeLeaf(t *testing.T, s *store.MemStore, names []string) uint32 {
	t.Helper()
	addr, err := s.AllocateBlock()
	require.NoError(t, err)
	block := make([]byte, testBlockSize)
	off := 0
	for _, name := range names {
		d, err := format.NewDirent(uint32(100+off), []byte(name), 1, true)
		require.NoError(t, err)
		require.NoError(t, format.PutDirent(block, off, d))
		off += d.RecLen
	}
	require.NoError(t, format.PutFreeDirent(block, off, testBlockSize-off))
	require.NoError(t, s.WriteBlock(addr, block))
	return addr
}

func leafNames(t *testing.T, s *store.MemStore, addr uint32) []string {
	t.Helper()
	block, err := s.ReadBlock(addr)
	require.NoError(t, err)
	var names []string
	for off := 0; off < testBlockSize; {
		d, next, err := format.NextDirent(block, off, true)
		require.NoError(t, err)
		if !d.Free() {
			names = append(names, string(d.Name))
		}
		off = next
	}
	return names
}

// --- leaf splits ---

func TestSplitLeafBlock_Boundary(t *testing.T) {
	e, s := rawEngine(t)
	names := make([]string, 40)
	for i := range names {
		names[i] = fmt.Sprintf("split_me_%04d", i)
	}
	addr := writeLeaf(t, s, names)

	hi := index.HashInfo{Version: hash.HalfMD4}
	newAddr, splitHash, err := e.SplitLeafBlock(addr, hi)
	require.NoError(t, err)
	require.Equal(t, uint32(2), newAddr)
	require.Zero(t, splitHash&1)

	lower := leafNames(t, s, addr)
	upper := leafNames(t, s, newAddr)
	require.Len(t, append(lower, upper...), len(names), "split conserves entries")
	require.NotEmpty(t, lower)
	require.NotEmpty(t, upper)

	for _, name := range lower {
		major, _, err := hash.Compute([]byte(name), nil, hash.HalfMD4)
		require.NoError(t, err)
		require.Less(t, major, splitHash, "lower half stays below the split hash")
	}
	for _, name := range upper {
		major, _, err := hash.Compute([]byte(name), nil, hash.HalfMD4)
		require.NoError(t, err)
		require.GreaterOrEqual(t, major, splitHash)
	}
}

func TestSplitLeafBlock_SingleEntry(t *testing.T) {
	e, s := rawEngine(t)
	addr := writeLeaf(t, s, []string{"loner"})
	_, _, err := e.SplitLeafBlock(addr, index.HashInfo{Version: hash.HalfMD4})
	require.ErrorIs(t, err, types.ErrHashCollision)
}

// findCollision brute-forces two names sharing a legacy major hash. The
// 31-bit hash space makes a birthday collision a near-certainty within the
// search bound.
func findCollision(t *testing.T) (string, string) {
	t.Helper()
	seen := make(map[uint32]string, 1<<20)
	for i := 0; i < 1<<20; i++ {
		name := fmt.Sprintf("c%07d", i)
		major, _, err := hash.Compute([]byte(name), nil, hash.Legacy)
		require.NoError(t, err)
		if prev, ok := seen[major]; ok {
			return prev, name
		}
		seen[major] = name
	}
	t.Fatal("no legacy hash collision within bound")
	return "", ""
}

func TestSplitLeafBlock_AllOneHash(t *testing.T) {
	a, b := findCollision(t)
	e, s := rawEngine(t)
	addr := writeLeaf(t, s, []string{a, b})
	_, _, err := e.SplitLeafBlock(addr, index.HashInfo{Version: hash.Legacy})
	require.ErrorIs(t, err, types.ErrHashCollision)

	// Adding one entry outside the run makes the block splittable again,
	// and the equal-hash run is never torn apart.
	addr2 := writeLeaf(t, s, []string{a, b, "bystander"})
	newAddr, _, err := e.SplitLeafBlock(addr2, index.HashInfo{Version: hash.Legacy})
	require.NoError(t, err)

	lower := leafNames(t, s, addr2)
	upper := leafNames(t, s, newAddr)
	sameHalf := func(half []string) bool {
		seen := 0
		for _, n := range half {
			if n == a || n == b {
				seen++
			}
		}
		return seen == 0 || seen == 2
	}
	require.True(t, sameHalf(lower) && sameHalf(upper))
	require.Len(t, append(lower, upper...), 3)
}

// --- index entry insertion ---

func newIndexFrame(limit int) *index.Frame {
	block := make([]byte, testBlockSize)
	format.PutCountLimit(block, 0, format.CountLimit{Limit: uint16(limit), Count: 1})
	format.PutPairAt(block, format.NodePairsOffset, 0, format.Pair{Hash: format.HashSentinel, Block: 50})
	return &index.Frame{
		Addr:     9,
		Block:    block,
		PairBase: format.NodePairsOffset,
		Count:    1,
		Limit:    limit,
	}
}

func TestInsertIndexEntry_SortedOrder(t *testing.T) {
	f := newIndexFrame(8)
	require.NoError(t, InsertIndexEntry(f, 400, 51))
	require.NoError(t, InsertIndexEntry(f, 200, 52))
	require.NoError(t, InsertIndexEntry(f, 600, 53))
	require.NoError(t, InsertIndexEntry(f, 300, 54))
	require.Equal(t, 5, f.Count)

	require.Equal(t, uint32(50), f.Pair(0).Block, "sentinel pair keeps its slot")
	wantHash := []uint32{200, 300, 400, 600}
	wantBlock := []uint32{52, 54, 51, 53}
	for i := 1; i < f.Count; i++ {
		require.Equal(t, wantHash[i-1], f.Pair(i).Hash)
		require.Equal(t, wantBlock[i-1], f.Pair(i).Block)
	}

	// The on-block count header tracks the struct.
	cl, err := format.ReadCountLimit(f.Block, 0)
	require.NoError(t, err)
	require.Equal(t, uint16(5), cl.Count)
}

func TestInsertIndexEntry_DuplicateKey(t *testing.T) {
	f := newIndexFrame(8)
	require.NoError(t, InsertIndexEntry(f, 200, 51))
	require.ErrorIs(t, InsertIndexEntry(f, 200, 52), types.ErrCorruptIndex)
}

func TestInsertIndexEntry_FullBlock(t *testing.T) {
	f := newIndexFrame(3)
	require.NoError(t, InsertIndexEntry(f, 200, 51))
	require.NoError(t, InsertIndexEntry(f, 400, 52))
	require.ErrorIs(t, InsertIndexEntry(f, 600, 53), types.ErrCorruptIndex)
}

// --- in-leaf insertion ---

func TestTryInsertLeaf_FreeAndCarvedSlots(t *testing.T) {
	e, s := rawEngine(t)
	addr := writeLeaf(t, s, []string{"first"})
	block, err := s.ReadBlock(addr)
	require.NoError(t, err)

	// Takes over part of the trailing free entry.
	d, err := format.NewDirent(7, []byte("second"), 1, true)
	require.NoError(t, err)
	require.True(t, e.tryInsertLeaf(block, d))

	got, _, err := format.NextDirent(block, format.DirentSize(len("first")), true)
	require.NoError(t, err)
	require.Equal(t, []byte("second"), got.Name)
}

func TestTryInsertLeaf_NoRoom(t *testing.T) {
	e, _ := rawEngine(t)
	block := make([]byte, testBlockSize)
	off := 0
	for i := 0; ; i++ {
		d, err := format.NewDirent(uint32(1+i), []byte(fmt.Sprintf("filler_%04d", i)), 1, true)
		require.NoError(t, err)
		if off+d.RecLen > testBlockSize {
			break
		}
		require.NoError(t, format.PutDirent(block, off, d))
		off += d.RecLen
	}
	// Widen the final entry over the leftover bytes so the block tiles.
	last := off - format.DirentSize(len("filler_0000"))
	d, err := format.DecodeDirent(block, last, true)
	require.NoError(t, err)
	d.RecLen = testBlockSize - last
	require.NoError(t, format.PutDirent(block, last, d))

	nd, err := format.NewDirent(99, []byte("does_not_fit"), 1, true)
	require.NoError(t, err)
	require.False(t, e.tryInsertLeaf(block, nd))
}
