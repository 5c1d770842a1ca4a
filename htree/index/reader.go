// Package index implements traversal of the hashed directory index: root
// validation, hash-info setup, root-to-leaf descent, and leaf scanning.
// The descent records every visited index block in a Path so a later split
// can propagate upward without re-traversing.
package index

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/htreekit/htree/casefold"
	"github.com/joshuapare/htreekit/htree/csum"
	"github.com/joshuapare/htreekit/htree/hash"
	"github.com/joshuapare/htreekit/internal/format"
	"github.com/joshuapare/htreekit/pkg/types"
)

// RootAddr is the block address of the index root: logical block 0 of the
// directory.
const RootAddr = 0

// HashInfo carries the resolved hash parameters and the target hash of one
// lookup or insert operation.
type HashInfo struct {
	Version uint8
	Major   uint32
	Minor   uint32
}

// Frame records one index block visited during descent.
type Frame struct {
	Addr     uint32 // block address
	Block    []byte // block contents as read; mutated in place by splits
	PairBase int    // offset of the pair array within Block
	At       int    // pair position the descent followed
	Count    int
	Limit    int
	Root     bool
}

// Pair returns pair i of the frame's array.
func (f *Frame) Pair(i int) format.Pair {
	return format.PairAt(f.Block, f.PairBase, i)
}

// SetPair overwrites pair i of the frame's array.
func (f *Frame) SetPair(i int, p format.Pair) {
	format.PutPairAt(f.Block, f.PairBase, i, p)
}

// SetCount updates the live pair count, in the frame and on the block.
func (f *Frame) SetCount(n int) {
	f.Count = n
	format.PutCountLimit(f.Block, f.PairBase-format.CountLimitSize,
		format.CountLimit{Limit: uint16(f.Limit), Count: uint16(n)})
}

// Path is the root-to-leaf trail of one descent.
type Path struct {
	Frames []Frame // root first
	Leaf   uint32  // leaf block address
}

// Bottom returns the deepest index frame, the leaf's direct parent.
func (p *Path) Bottom() *Frame { return &p.Frames[len(p.Frames)-1] }

// Reader traverses a directory's index through its BlockStore.
type Reader struct {
	store types.BlockStore
	ictx  types.InodeContext
	check csum.Validator
}

// NewReader binds a reader to a directory's storage and inode context.
func NewReader(store types.BlockStore, ictx types.InodeContext) *Reader {
	return &Reader{store: store, ictx: ictx, check: csum.New(ictx)}
}

// Checksummer returns the validator derived from the inode context.
func (r *Reader) Checksummer() csum.Validator { return r.check }

// foldName applies casefolding when the directory requires it.
func (r *Reader) foldName(name []byte) []byte {
	if r.ictx.Features().Casefold {
		return casefold.Fold(name)
	}
	return name
}

// nameEqual compares a candidate entry name against the target.
func (r *Reader) nameEqual(entry, target []byte) bool {
	if r.ictx.Features().Casefold {
		return casefold.Equal(entry, target)
	}
	return bytes.Equal(entry, target)
}

// InitHashInfo reads and validates the index root, resolves the effective
// hash version and seed, and computes the target hash for name.
func (r *Reader) InitHashInfo(name []byte) (HashInfo, error) {
	if len(name) == 0 || len(name) > types.MaxNameLen {
		return HashInfo{}, fmt.Errorf("%w: %d bytes", types.ErrNameLen, len(name))
	}
	root, err := r.readRoot()
	if err != nil {
		return HashInfo{}, err
	}
	info, _, err := r.validateRoot(root)
	if err != nil {
		return HashInfo{}, err
	}
	version := info.HashVersion
	if r.ictx.Features().UnsignedHash {
		version = hash.PromoteUnsigned(version)
	}
	major, minor, err := hash.Compute(r.foldName(name), r.ictx.HashSeed(), version)
	if err != nil {
		return HashInfo{}, fmt.Errorf("%w: %w", types.ErrCorruptIndex, err)
	}
	return HashInfo{Version: version, Major: major, Minor: minor}, nil
}

// GetLeafBlock descends from the root to the leaf covering hi's major hash,
// recording each visited index block. The sentinel pair guarantees the
// search lands somewhere at every level.
func (r *Reader) GetLeafBlock(hi HashInfo) (uint32, *Path, error) {
	root, err := r.readRoot()
	if err != nil {
		return 0, nil, err
	}
	info, cl, err := r.validateRoot(root)
	if err != nil {
		return 0, nil, err
	}

	path := &Path{}
	block := root
	addr := uint32(RootAddr)
	base := format.RootPairsOffset
	count, limit := int(cl.Count), int(cl.Limit)
	isRoot := true

	for level := int(info.IndirectLevels); ; level-- {
		at := searchPairs(block, base, count, hi.Major)
		path.Frames = append(path.Frames, Frame{
			Addr:     addr,
			Block:    block,
			PairBase: base,
			At:       at,
			Count:    count,
			Limit:    limit,
			Root:     isRoot,
		})
		child := format.PairAt(block, base, at).Block
		if level == 0 {
			path.Leaf = child
			return child, path, nil
		}

		block, err = r.store.ReadBlock(child)
		if err != nil {
			return 0, nil, fmt.Errorf("index block %d: %w", child, err)
		}
		if err := r.check.Verify(block); err != nil {
			return 0, nil, fmt.Errorf("index block %d: %w", child, err)
		}
		addr = child
		base = format.NodePairsOffset
		isRoot = false
		nodeCL, err := format.ReadCountLimit(block, 0)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: index block %d: %w", types.ErrCorruptIndex, child, err)
		}
		count, limit = int(nodeCL.Count), int(nodeCL.Limit)
		if count < 1 || count > limit {
			return 0, nil, fmt.Errorf("%w: index block %d: count %d, limit %d",
				types.ErrCorruptIndex, child, count, limit)
		}
		if err := format.CheckPairBounds(block, base, limit, r.check.Enabled()); err != nil {
			return 0, nil, fmt.Errorf("%w: index block %d: %w", types.ErrCorruptIndex, child, err)
		}
	}
}

// FindEntry looks name up through the index and scans the covering leaf,
// comparing full names because distinct names can share a hash. Returns the
// entry's inode number, or ErrNotFound.
func (r *Reader) FindEntry(name []byte) (uint32, error) {
	hi, err := r.InitHashInfo(name)
	if err != nil {
		return 0, err
	}
	leaf, _, err := r.GetLeafBlock(hi)
	if err != nil {
		return 0, err
	}
	block, err := r.ReadLeaf(leaf)
	if err != nil {
		return 0, err
	}
	ino, found, err := r.ScanLeaf(block, name)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("%q: %w", name, types.ErrNotFound)
	}
	return ino, nil
}

// ReadLeaf reads a leaf block and verifies its checksum.
func (r *Reader) ReadLeaf(addr uint32) ([]byte, error) {
	block, err := r.store.ReadBlock(addr)
	if err != nil {
		return nil, fmt.Errorf("leaf block %d: %w", addr, err)
	}
	if err := r.check.Verify(block); err != nil {
		return nil, fmt.Errorf("leaf block %d: %w", addr, err)
	}
	return block, nil
}

// ScanLeaf walks a leaf's entries looking for an exact name match.
func (r *Reader) ScanLeaf(block []byte, name []byte) (uint32, bool, error) {
	filetype := r.ictx.Features().FileType
	end := format.EntrySpaceEnd(len(block), r.check.Enabled())
	for off := 0; off < end; {
		d, next, err := format.NextDirent(block, off, filetype)
		if err != nil {
			return 0, false, fmt.Errorf("%w: %w", types.ErrCorruptIndex, err)
		}
		if !d.Free() && r.nameEqual(d.Name, name) {
			return d.Inode, true, nil
		}
		off = next
	}
	return 0, false, nil
}

func (r *Reader) readRoot() ([]byte, error) {
	root, err := r.store.ReadBlock(RootAddr)
	if err != nil {
		return nil, fmt.Errorf("index root: %w", err)
	}
	if err := r.check.Verify(root); err != nil {
		return nil, fmt.Errorf("index root: %w", err)
	}
	return root, nil
}

// validateRoot enforces the root header invariants. Violations surface as
// ErrCorruptIndex; the engine never attempts repair.
func (r *Reader) validateRoot(root []byte) (format.RootInfo, format.CountLimit, error) {
	info, err := format.ParseRootInfo(root)
	if err != nil {
		return format.RootInfo{}, format.CountLimit{}, fmt.Errorf("%w: %w", types.ErrCorruptIndex, err)
	}
	if !hash.Known(info.HashVersion) {
		return format.RootInfo{}, format.CountLimit{},
			fmt.Errorf("%w: hash version %d", types.ErrCorruptIndex, info.HashVersion)
	}
	if info.InfoLen != format.InfoLength {
		return format.RootInfo{}, format.CountLimit{},
			fmt.Errorf("%w: info length %d", types.ErrCorruptIndex, info.InfoLen)
	}
	if info.UnusedFlags != 0 {
		return format.RootInfo{}, format.CountLimit{},
			fmt.Errorf("%w: unused flags %#x", types.ErrCorruptIndex, info.UnusedFlags)
	}
	if info.IndirectLevels > types.MaxIndirectLevels {
		return format.RootInfo{}, format.CountLimit{},
			fmt.Errorf("%w: indirect levels %d", types.ErrCorruptIndex, info.IndirectLevels)
	}
	cl, err := format.ReadCountLimit(root, format.RootInfoOffset+format.RootInfoSize)
	if err != nil {
		return format.RootInfo{}, format.CountLimit{}, fmt.Errorf("%w: %w", types.ErrCorruptIndex, err)
	}
	if cl.Count < 1 || cl.Count > cl.Limit {
		return format.RootInfo{}, format.CountLimit{},
			fmt.Errorf("%w: root count %d, limit %d", types.ErrCorruptIndex, cl.Count, cl.Limit)
	}
	if err := format.CheckPairBounds(root, format.RootPairsOffset, int(cl.Limit), r.check.Enabled()); err != nil {
		return format.RootInfo{}, format.CountLimit{},
			fmt.Errorf("%w: %w", types.ErrCorruptIndex, err)
	}
	return info, cl, nil
}

// RootInfo re-reads and returns the validated root header. Used by callers
// that need the tree depth without a full descent.
func (r *Reader) RootInfo() (format.RootInfo, error) {
	root, err := r.readRoot()
	if err != nil {
		return format.RootInfo{}, err
	}
	info, _, err := r.validateRoot(root)
	return info, err
}

// searchPairs binary-searches pairs [1, count) for the greatest pair whose
// hash is <= target, falling back to the sentinel at position 0.
func searchPairs(block []byte, base, count int, target uint32) int {
	lo, hi := 1, count-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		if target < format.PairAt(block, base, mid).Hash {
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}
	return lo - 1
}
