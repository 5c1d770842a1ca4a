package dirty

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTracker_SortedDeduped(t *testing.T) {
	tr := NewTracker()
	tr.Add(7)
	tr.Add(0)
	tr.Add(7)
	tr.Add(3)
	tr.Add(0)
	require.Equal(t, []uint32{0, 3, 7}, tr.Blocks())
	require.Equal(t, 5, tr.Len(), "raw marks, dedup happens at read time")
}

func TestTracker_Empty(t *testing.T) {
	tr := NewTracker()
	require.Nil(t, tr.Blocks())
	require.Zero(t, tr.Len())
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker()
	tr.Add(1)
	tr.Add(2)
	tr.Reset()
	require.Zero(t, tr.Len())
	tr.Add(5)
	require.Equal(t, []uint32{5}, tr.Blocks())
}
