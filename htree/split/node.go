package split

import (
	"fmt"

	"github.com/joshuapare/htreekit/htree/index"
	"github.com/joshuapare/htreekit/internal/format"
	"github.com/joshuapare/htreekit/pkg/types"
)

// IndexSplitResult describes the outcome of an index block split.
type IndexSplitResult struct {
	// NewBlock is the freshly allocated index block.
	NewBlock uint32
	// SplitHash is the key the level above must adopt for NewBlock.
	// Zero when the split grew the root.
	SplitHash uint32
	// GrewDepth reports a root depth growth; the caller must restart the
	// operation from lookup because the recorded path is now stale.
	GrewDepth bool
}

// InsertIndexEntry inserts (h, child) into the frame's pair array in sorted
// position, shifting greater keys right. The caller must have split the
// block beforehand if it was full; the sentinel at position 0 is never
// displaced.
func InsertIndexEntry(f *index.Frame, h, child uint32) error {
	if f.Count >= f.Limit {
		return fmt.Errorf("index block %d: insert into full block: %w",
			f.Addr, types.ErrCorruptIndex)
	}
	i := f.Count
	for i > 1 && f.Pair(i-1).Hash > h {
		f.SetPair(i, f.Pair(i-1))
		i--
	}
	if i > 1 && f.Pair(i-1).Hash == h {
		return fmt.Errorf("index block %d: duplicate key %#08x: %w",
			f.Addr, h, types.ErrCorruptIndex)
	}
	f.SetPair(i, format.Pair{Hash: h, Block: child})
	f.SetCount(f.Count + 1)
	return nil
}

// insertIndexEntry is the internal spelling used by the driver.
func insertIndexEntry(f *index.Frame, h, child uint32) error {
	return InsertIndexEntry(f, h, child)
}

// SplitIndexBlock splits the index block at path level. For an internal
// block this is a sibling split whose result is hooked into the level
// above; for a root with no internal level it grows the tree depth. A root
// that is full while an internal level already exists cannot grow further
// and fails with ErrUnsupportedDepth. Staged blocks are committed before
// returning.
func (e *Engine) SplitIndexBlock(path *index.Path, level int) (IndexSplitResult, error) {
	if level < 0 || level >= len(path.Frames) {
		return IndexSplitResult{}, fmt.Errorf("index split at level %d of %d: %w",
			level, len(path.Frames), types.ErrCorruptIndex)
	}
	frame := &path.Frames[level]
	o := e.newOp()
	if frame.Root {
		if len(path.Frames) > 1 {
			return IndexSplitResult{}, fmt.Errorf("root split: %w", types.ErrUnsupportedDepth)
		}
		if err := e.growRoot(o, frame); err != nil {
			return IndexSplitResult{}, err
		}
		if err := o.commit(); err != nil {
			return IndexSplitResult{}, err
		}
		return IndexSplitResult{GrewDepth: true}, nil
	}
	parent := &path.Frames[level-1]
	newAddr, splitHash, err := e.splitIndexSibling(o, parent, frame)
	if err != nil {
		return IndexSplitResult{}, err
	}
	if err := o.commit(); err != nil {
		return IndexSplitResult{}, err
	}
	return IndexSplitResult{NewBlock: newAddr, SplitHash: splitHash}, nil
}

// splitIndexSibling halves a full internal index block: the upper half of
// its pairs moves to a freshly allocated sibling, and the sibling's first
// hash is inserted into the parent. The frame is retargeted to whichever
// half the descent position landed in.
func (e *Engine) splitIndexSibling(o *op, parent, frame *index.Frame) (uint32, uint32, error) {
	if frame.Count != frame.Limit {
		return 0, 0, fmt.Errorf("index block %d: sibling split of non-full block (%d/%d): %w",
			frame.Addr, frame.Count, frame.Limit, types.ErrCorruptIndex)
	}
	newAddr, err := o.alloc()
	if err != nil {
		return 0, 0, err
	}
	blockSize := int(e.store.BlockSize())
	limit := format.NodeLimit(blockSize, e.check.Enabled())
	at := frame.Count / 2
	moved := frame.Count - at

	newBlock := make([]byte, blockSize)
	format.PutCountLimit(newBlock, 0, format.CountLimit{Limit: uint16(limit), Count: uint16(moved)})
	for i := 0; i < moved; i++ {
		format.PutPairAt(newBlock, format.NodePairsOffset, i, frame.Pair(at+i))
	}
	splitHash := frame.Pair(at).Hash

	oldAddr, oldBlock := frame.Addr, frame.Block
	frame.SetCount(at)
	o.stage(oldAddr, oldBlock)
	o.stage(newAddr, newBlock)

	switched := frame.At >= at
	if switched {
		frame.Addr = newAddr
		frame.Block = newBlock
		frame.PairBase = format.NodePairsOffset
		frame.At -= at
		frame.Count = moved
		frame.Limit = limit
	}

	if err := insertIndexEntry(parent, splitHash, newAddr); err != nil {
		return 0, 0, err
	}
	if switched {
		// The sibling key landed one slot past the old pair, which is
		// where the descent now continues.
		parent.At++
	}
	o.stage(parent.Addr, parent.Block)
	return newAddr, splitHash, nil
}

// growRoot converts a root-plus-leaves tree into a two-level tree: every
// pair of the root moves into a freshly allocated internal block and the
// root keeps a single sentinel pair covering the whole hash range.
func (e *Engine) growRoot(o *op, root *index.Frame) error {
	newAddr, err := o.alloc()
	if err != nil {
		return err
	}
	blockSize := int(e.store.BlockSize())
	limit := format.NodeLimit(blockSize, e.check.Enabled())
	if root.Count > limit {
		return fmt.Errorf("root count %d exceeds node limit %d: %w",
			root.Count, limit, types.ErrCorruptIndex)
	}

	newBlock := make([]byte, blockSize)
	format.PutCountLimit(newBlock, 0, format.CountLimit{Limit: uint16(limit), Count: uint16(root.Count)})
	for i := 0; i < root.Count; i++ {
		format.PutPairAt(newBlock, format.NodePairsOffset, i, root.Pair(i))
	}

	root.SetCount(1)
	root.SetPair(0, format.Pair{Hash: format.HashSentinel, Block: newAddr})
	info, err := format.ParseRootInfo(root.Block)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrCorruptIndex, err)
	}
	info.IndirectLevels++
	format.PutRootInfo(root.Block, info)

	o.stage(root.Addr, root.Block)
	o.stage(newAddr, newBlock)
	return nil
}
