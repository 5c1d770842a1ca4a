// Package split grows the hashed directory index: leaf splitting on a
// major-hash boundary, index sibling splits, root depth growth, and the
// insert driver that strings them together.
//
// Every operation stages its block images in memory and issues writes only
// once the full split decision has been computed, so an allocation failure
// mid-split surfaces as ErrNoSpace with nothing partially committed.
// Durability of the resulting multi-block write set is the caller's
// transaction layer's concern; the dirty tracker reports which blocks each
// operation touched.
package split

import (
	"fmt"

	"github.com/joshuapare/htreekit/htree/csum"
	"github.com/joshuapare/htreekit/htree/dirty"
	"github.com/joshuapare/htreekit/htree/index"
	"github.com/joshuapare/htreekit/internal/format"
	"github.com/joshuapare/htreekit/pkg/types"
)

// Engine performs index growth for one directory. It is single-threaded,
// like the rest of the engine: the caller serializes operations per
// directory.
type Engine struct {
	store  types.BlockStore
	ictx   types.InodeContext
	reader *index.Reader
	check  csum.Validator
	dirty  *dirty.Tracker
}

// NewEngine binds a split engine to a directory. The reader is shared with
// the lookup path; the tracker accumulates each operation's dirtied blocks.
func NewEngine(store types.BlockStore, ictx types.InodeContext, r *index.Reader, t *dirty.Tracker) *Engine {
	return &Engine{
		store:  store,
		ictx:   ictx,
		reader: r,
		check:  csum.New(ictx),
		dirty:  t,
	}
}

// op is the staging area of one insert or split operation: block images to
// write, in order, plus the count of freshly allocated blocks for the
// directory size update.
type op struct {
	e         *Engine
	order     []uint32
	writes    map[uint32][]byte
	allocated int
}

func (e *Engine) newOp() *op {
	return &op{e: e, writes: make(map[uint32][]byte)}
}

// stage registers block for writing at commit. Staging the same address
// again keeps the original order; the image is shared, so later mutations
// through the same slice are committed too.
func (o *op) stage(addr uint32, block []byte) {
	if _, ok := o.writes[addr]; !ok {
		o.order = append(o.order, addr)
	}
	o.writes[addr] = block
}

// alloc reserves a fresh block and accounts for directory growth.
func (o *op) alloc() (uint32, error) {
	addr, err := o.e.store.AllocateBlock()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", types.ErrNoSpace, err)
	}
	o.allocated++
	return addr, nil
}

// commit stamps checksums, writes every staged block, records them dirty,
// and applies the directory size growth.
func (o *op) commit() error {
	for _, addr := range o.order {
		block := o.writes[addr]
		if err := o.e.check.Stamp(block); err != nil {
			return fmt.Errorf("block %d: %w", addr, err)
		}
		if err := o.e.store.WriteBlock(addr, block); err != nil {
			return fmt.Errorf("block %d: %w", addr, err)
		}
		o.e.dirty.Add(addr)
	}
	if o.allocated > 0 {
		o.e.ictx.SetSize(o.e.ictx.Size() + uint64(o.allocated)*uint64(o.e.store.BlockSize()))
	}
	return nil
}

// AddEntry inserts (name, ino, ftype) into the directory, splitting leaf
// and index blocks as required. At most one root depth growth can occur,
// after which the operation restarts from lookup on the deepened tree.
func (e *Engine) AddEntry(name []byte, ino uint32, ftype types.FileType) error {
	e.dirty.Reset()
	for pass := 0; pass < 2; pass++ {
		done, grewRoot, err := e.addOnce(name, ino, ftype)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if !grewRoot {
			break
		}
	}
	return fmt.Errorf("insert %q: %w", name, types.ErrCorruptIndex)
}

// addOnce runs one lookup-to-insert attempt. It reports done=false with
// grewRoot=true when the tree depth was increased and the caller must
// restart from lookup.
func (e *Engine) addOnce(name []byte, ino uint32, ftype types.FileType) (done, grewRoot bool, err error) {
	hi, err := e.reader.InitHashInfo(name)
	if err != nil {
		return false, false, err
	}
	leaf, path, err := e.reader.GetLeafBlock(hi)
	if err != nil {
		return false, false, err
	}
	block, err := e.reader.ReadLeaf(leaf)
	if err != nil {
		return false, false, err
	}
	if _, exists, err := e.reader.ScanLeaf(block, name); err != nil {
		return false, false, err
	} else if exists {
		return false, false, fmt.Errorf("%q: %w", name, types.ErrExists)
	}

	d, err := format.NewDirent(ino, name, uint8(ftype), e.ictx.Features().FileType)
	if err != nil {
		return false, false, fmt.Errorf("%w: %w", types.ErrNameLen, err)
	}

	o := e.newOp()

	// Fast path: the leaf still has room.
	if e.tryInsertLeaf(block, d) {
		o.stage(leaf, block)
		return true, false, o.commit()
	}

	// The leaf is full. Make room in the parent index first so the new
	// sibling pointer is guaranteed a slot.
	parent := path.Bottom()
	if parent.Count >= parent.Limit {
		if len(path.Frames) == 1 {
			// The parent is the root and the tree has no internal
			// level yet: grow the depth and restart from lookup.
			if err := e.growRoot(o, &path.Frames[0]); err != nil {
				return false, false, err
			}
			return false, true, o.commit()
		}
		root := &path.Frames[0]
		if root.Count >= root.Limit {
			// A second growth would need indirect_levels == 2.
			return false, false, fmt.Errorf("insert %q: %w", name, types.ErrUnsupportedDepth)
		}
		if _, _, err := e.splitIndexSibling(o, root, parent); err != nil {
			return false, false, err
		}
	}

	newAddr, right, splitHash, err := e.splitLeaf(o, block, hi)
	if err != nil {
		return false, false, err
	}

	target := block
	if hi.Major >= splitHash {
		target = right
	}
	if !e.tryInsertLeaf(target, d) {
		// Both halves hold roughly half a block of free space, so a
		// legal entry always fits.
		return false, false, fmt.Errorf("insert %q after split: %w", name, types.ErrCorruptIndex)
	}
	if err := insertIndexEntry(parent, splitHash, newAddr); err != nil {
		return false, false, err
	}

	o.stage(leaf, block)
	o.stage(newAddr, right)
	o.stage(parent.Addr, parent.Block)
	return true, false, o.commit()
}
