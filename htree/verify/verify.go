package verify

import (
	"fmt"

	"github.com/joshuapare/htreekit/htree/casefold"
	"github.com/joshuapare/htreekit/htree/csum"
	"github.com/joshuapare/htreekit/htree/hash"
	"github.com/joshuapare/htreekit/htree/index"
	"github.com/joshuapare/htreekit/internal/format"
	"github.com/joshuapare/htreekit/pkg/types"
)

// ValidationError describes one failed invariant check.
type ValidationError struct {
	Type    string
	Message string
	Block   int64 // block address, -1 when not tied to one block
}

func (e *ValidationError) Error() string {
	if e.Block >= 0 {
		return fmt.Sprintf("%s in block %d: %s", e.Type, e.Block, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func fail(typ string, block int64, msg string, args ...any) error {
	return &ValidationError{Type: typ, Message: fmt.Sprintf(msg, args...), Block: block}
}

// AllInvariants walks the whole index tree and validates every structural
// invariant: root header shape, per-node count/limit sanity, ascending index
// keys, leaf dirent tiling, per-entry hash range membership, and block
// checksums when the feature is enabled. Returns the first error found.
func AllInvariants(store types.BlockStore, ictx types.InodeContext) error {
	feat := ictx.Features()
	check := csum.New(ictx)
	blockSize := int(store.BlockSize())

	root, err := store.ReadBlock(index.RootAddr)
	if err != nil {
		return fail("Root", int64(index.RootAddr), "read: %v", err)
	}
	if err := check.Verify(root); err != nil {
		return fail("Checksum", int64(index.RootAddr), "%v", err)
	}
	if err := RootHeader(root, feat); err != nil {
		return err
	}

	info, err := format.ParseRootInfo(root)
	if err != nil {
		return fail("Root", int64(index.RootAddr), "%v", err)
	}
	version := info.HashVersion
	if feat.UnsignedHash {
		version = hash.PromoteUnsigned(version)
	}
	w := &walker{
		store:     store,
		check:     check,
		feat:      feat,
		seed:      ictx.HashSeed(),
		version:   version,
		blockSize: blockSize,
	}

	cl, err := format.ReadCountLimit(root, format.RootInfoOffset+format.RootInfoSize)
	if err != nil {
		return fail("Root", int64(index.RootAddr), "%v", err)
	}
	return w.node(root, format.RootPairsOffset, cl, int(info.IndirectLevels), 0, ^uint32(0))
}

// RootHeader validates the fixed layout of the index root block: the two
// dot entries, the info header, and the count/limit header.
func RootHeader(root []byte, feat types.Features) error {
	if err := format.CheckDots(root, feat.FileType); err != nil {
		return fail("RootHeader", int64(index.RootAddr), "dot entries: %v", err)
	}
	info, err := format.ParseRootInfo(root)
	if err != nil {
		return fail("RootHeader", int64(index.RootAddr), "%v", err)
	}
	if !hash.Known(info.HashVersion) {
		return fail("RootHeader", int64(index.RootAddr), "unknown hash version %d", info.HashVersion)
	}
	if info.InfoLen != format.InfoLength {
		return fail("RootHeader", int64(index.RootAddr),
			"info length %d, expected %d", info.InfoLen, format.InfoLength)
	}
	if info.UnusedFlags != 0 {
		return fail("RootHeader", int64(index.RootAddr), "unused flags 0x%02X, must be zero", info.UnusedFlags)
	}
	if int(info.IndirectLevels) > types.MaxIndirectLevels {
		return fail("RootHeader", int64(index.RootAddr), "indirect levels %d exceeds %d",
			info.IndirectLevels, types.MaxIndirectLevels)
	}
	cl, err := format.ReadCountLimit(root, format.RootInfoOffset+format.RootInfoSize)
	if err != nil {
		return fail("RootHeader", int64(index.RootAddr), "%v", err)
	}
	want := format.RootLimit(len(root), feat.MetadataCsum)
	if int(cl.Limit) != want {
		return fail("RootHeader", int64(index.RootAddr), "limit %d, expected %d", cl.Limit, want)
	}
	if cl.Count < 1 || cl.Count > cl.Limit {
		return fail("RootHeader", int64(index.RootAddr), "count %d outside [1, %d]", cl.Count, cl.Limit)
	}
	return nil
}

type walker struct {
	store     types.BlockStore
	check     csum.Validator
	feat      types.Features
	seed      *[4]uint32
	version   uint8
	blockSize int
}

// node checks one index block's pair array and recurses into its children.
// low and high bound the hash range the block covers; high is exclusive.
func (w *walker) node(block []byte, base int, cl format.CountLimit, levels int, low, high uint32) error {
	if err := format.CheckPairBounds(block, base, int(cl.Count), w.feat.MetadataCsum); err != nil {
		return fail("IndexNode", -1, "%v", err)
	}
	if err := IndexKeys(block, base, int(cl.Count), low, high); err != nil {
		return err
	}
	for i := 0; i < int(cl.Count); i++ {
		p := format.PairAt(block, base, i)
		childLow := low
		if i > 0 {
			childLow = p.Hash
		}
		childHigh := high
		if i+1 < int(cl.Count) {
			childHigh = format.PairAt(block, base, i+1).Hash
		}
		child, err := w.store.ReadBlock(p.Block)
		if err != nil {
			return fail("IndexNode", int64(p.Block), "read child: %v", err)
		}
		if err := w.check.Verify(child); err != nil {
			return fail("Checksum", int64(p.Block), "%v", err)
		}
		if levels == 0 {
			if err := w.leaf(p.Block, child, childLow, childHigh); err != nil {
				return err
			}
			continue
		}
		ccl, err := format.ReadCountLimit(child, 0)
		if err != nil {
			return fail("IndexNode", int64(p.Block), "%v", err)
		}
		want := format.NodeLimit(w.blockSize, w.feat.MetadataCsum)
		if int(ccl.Limit) != want {
			return fail("IndexNode", int64(p.Block), "limit %d, expected %d", ccl.Limit, want)
		}
		if ccl.Count < 1 || ccl.Count > ccl.Limit {
			return fail("IndexNode", int64(p.Block), "count %d outside [1, %d]", ccl.Count, ccl.Limit)
		}
		if err := w.node(child, format.NodePairsOffset, ccl, levels-1, childLow, childHigh); err != nil {
			return err
		}
	}
	return nil
}

// IndexKeys validates that the keys of pairs 1..count-1 are strictly
// increasing and fall inside [low, high). Pair 0's key is a sentinel and is
// not checked.
func IndexKeys(block []byte, base, count int, low, high uint32) error {
	prev := low
	for i := 1; i < count; i++ {
		h := format.PairAt(block, base, i).Hash
		if i > 1 && h <= prev {
			return fail("IndexKeys", -1, "key %d at slot %d not above predecessor %d", h, i, prev)
		}
		if h < low || h >= high {
			return fail("IndexKeys", -1, "key %d at slot %d outside [%d, %d)", h, i, low, high)
		}
		prev = h
	}
	return nil
}

// leaf checks one leaf block: the dirents must tile the entry space exactly
// and every live name must hash into the range the index assigns the block.
func (w *walker) leaf(addr uint32, block []byte, low, high uint32) error {
	end := format.EntrySpaceEnd(w.blockSize, w.feat.MetadataCsum)
	off := 0
	for off < end {
		d, next, err := format.NextDirent(block, off, w.feat.FileType)
		if err != nil {
			return fail("LeafTiling", int64(addr), "entry at %d: %v", off, err)
		}
		if next > end {
			return fail("LeafTiling", int64(addr), "entry at %d runs past entry space end %d", off, end)
		}
		if !d.Free() {
			name := d.Name
			if w.feat.Casefold {
				name = casefold.Fold(name)
			}
			major, _, err := hash.Compute(name, w.seed, w.version)
			if err != nil {
				return fail("LeafHash", int64(addr), "%v", err)
			}
			if major < low || (major >= high && high != ^uint32(0)) {
				return fail("LeafHash", int64(addr),
					"name %q hashes to %d outside [%d, %d)", d.Name, major, low, high)
			}
		}
		off = next
	}
	if off != end {
		return fail("LeafTiling", int64(addr), "entries end at %d, expected %d", off, end)
	}
	return nil
}
