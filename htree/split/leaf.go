package split

import (
	"fmt"
	"sort"

	"github.com/joshuapare/htreekit/htree/casefold"
	"github.com/joshuapare/htreekit/htree/hash"
	"github.com/joshuapare/htreekit/htree/index"
	"github.com/joshuapare/htreekit/internal/format"
	"github.com/joshuapare/htreekit/pkg/types"
)

// taggedEntry is one live leaf entry annotated with its hash, the sort key
// of the split. The dirent's name is a copy: the source block is rewritten
// underneath it.
type taggedEntry struct {
	major uint32
	minor uint32
	d     format.Dirent
}

// tryInsertLeaf places d into the first slot of block that can hold it:
// either a free entry of sufficient record length, or the padding of a live
// entry wide enough to carve the new record from. Reports false when the
// block has no room.
func (e *Engine) tryInsertLeaf(block []byte, d format.Dirent) bool {
	filetype := e.ictx.Features().FileType
	need := format.DirentSize(len(d.Name))
	end := format.EntrySpaceEnd(len(block), e.check.Enabled())
	for off := 0; off < end; {
		cur, next, err := format.NextDirent(block, off, filetype)
		if err != nil {
			return false
		}
		rec := cur.RecLen
		if cur.Free() && rec >= need {
			nd := d
			nd.RecLen = rec
			if format.PutDirent(block, off, nd) == nil {
				return true
			}
			return false
		}
		if !cur.Free() {
			used := format.DirentSize(len(cur.Name))
			if rec-used >= need {
				shrunk := cur
				shrunk.RecLen = used
				if format.PutDirent(block, off, shrunk) != nil {
					return false
				}
				nd := d
				nd.RecLen = rec - used
				if format.PutDirent(block, off+used, nd) == nil {
					return true
				}
				return false
			}
		}
		off = next
	}
	return false
}

// SplitLeafBlock splits the leaf at addr around the median of its consumed
// bytes, on a major-hash boundary. It returns the new block's address and
// the major hash of its first entry, the key the parent index must adopt.
// The staged halves are written before returning.
func (e *Engine) SplitLeafBlock(addr uint32, hi index.HashInfo) (uint32, uint32, error) {
	block, err := e.reader.ReadLeaf(addr)
	if err != nil {
		return 0, 0, err
	}
	o := e.newOp()
	newAddr, right, splitHash, err := e.splitLeaf(o, block, hi)
	if err != nil {
		return 0, 0, err
	}
	o.stage(addr, block)
	o.stage(newAddr, right)
	if err := o.commit(); err != nil {
		return 0, 0, err
	}
	return newAddr, splitHash, nil
}

// splitLeaf performs the in-memory half of a leaf split: block is rewritten
// to hold the lower half and the returned buffer holds the upper half. The
// new block is allocated but nothing is written; the caller stages both.
func (e *Engine) splitLeaf(o *op, block []byte, hi index.HashInfo) (newAddr uint32, right []byte, splitHash uint32, err error) {
	entries, used, err := e.collectEntries(block, hi)
	if err != nil {
		return 0, nil, 0, err
	}
	if len(entries) < 2 || entries[0].major == entries[len(entries)-1].major {
		return 0, nil, 0, fmt.Errorf("leaf with %d entries of one hash: %w",
			len(entries), types.ErrHashCollision)
	}

	// Pick the entry nearest half the consumed bytes, then slide forward
	// to a major-hash boundary so no run of equal hashes is torn apart.
	// When the forward walk runs off the end, back up to the boundary
	// preceding the run instead.
	half := used / 2
	s, acc := 0, 0
	for i := range entries {
		acc += format.DirentSize(len(entries[i].d.Name))
		if acc >= half {
			s = i + 1
			break
		}
	}
	if s == 0 || s >= len(entries) {
		s = len(entries) / 2
	}
	fwd := s
	for fwd < len(entries) && entries[fwd].major == entries[fwd-1].major {
		fwd++
	}
	if fwd < len(entries) {
		s = fwd
	} else {
		for s > 0 && entries[s].major == entries[s-1].major {
			s--
		}
		if s == 0 {
			return 0, nil, 0, fmt.Errorf("no usable split boundary: %w", types.ErrHashCollision)
		}
	}
	splitHash = entries[s].major

	newAddr, err = o.alloc()
	if err != nil {
		return 0, nil, 0, err
	}
	right = make([]byte, len(block))
	if err := e.writeLeafEntries(right, entries[s:]); err != nil {
		return 0, nil, 0, err
	}
	if err := e.writeLeafEntries(block, entries[:s]); err != nil {
		return 0, nil, 0, err
	}
	return newAddr, right, splitHash, nil
}

// collectEntries gathers the live entries of a leaf with their hashes and
// the total consumed bytes, sorted ascending by (major, minor). The sort is
// stable so equal-hash entries keep their block order.
func (e *Engine) collectEntries(block []byte, hi index.HashInfo) ([]taggedEntry, int, error) {
	filetype := e.ictx.Features().FileType
	fold := e.ictx.Features().Casefold
	seed := e.ictx.HashSeed()
	end := format.EntrySpaceEnd(len(block), e.check.Enabled())

	var entries []taggedEntry
	used := 0
	for off := 0; off < end; {
		d, next, err := format.NextDirent(block, off, filetype)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %w", types.ErrCorruptIndex, err)
		}
		if !d.Free() {
			name := d.Name
			if fold {
				name = casefold.Fold(name)
			}
			major, minor, err := hash.Compute(name, seed, hi.Version)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: %w", types.ErrCorruptIndex, err)
			}
			d.Name = append([]byte(nil), d.Name...)
			entries = append(entries, taggedEntry{major: major, minor: minor, d: d})
			used += format.DirentSize(len(d.Name))
		}
		off = next
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].major != entries[j].major {
			return entries[i].major < entries[j].major
		}
		return entries[i].minor < entries[j].minor
	})
	return entries, used, nil
}

// writeLeafEntries serializes entries into block back to back, padding the
// remainder with a trailing free entry (or by widening the last record when
// the remainder is too small to hold a free entry header).
func (e *Engine) writeLeafEntries(block []byte, entries []taggedEntry) error {
	for i := range block {
		block[i] = 0
	}
	end := format.EntrySpaceEnd(len(block), e.check.Enabled())
	off := 0
	for i := range entries {
		rec := format.DirentSize(len(entries[i].d.Name))
		if i == len(entries)-1 {
			if rem := end - off - rec; rem > 0 && rem < format.DirentHeaderSize {
				rec += rem
			}
		}
		d := entries[i].d
		d.RecLen = rec
		if err := format.PutDirent(block, off, d); err != nil {
			return fmt.Errorf("%w: %w", types.ErrCorruptIndex, err)
		}
		off += rec
	}
	if off < end {
		if err := format.PutFreeDirent(block, off, end-off); err != nil {
			return fmt.Errorf("%w: %w", types.ErrCorruptIndex, err)
		}
	}
	return nil
}
