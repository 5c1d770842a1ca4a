// Package htree is the public face of the hashed directory index engine:
// lookups and inserts over a directory whose blocks live behind a
// BlockStore and whose inode metadata lives behind an InodeContext.
//
// The engine is synchronous and single-threaded. The caller must hold an
// exclusive lock on the directory for the duration of each call, and the
// caller's transaction layer owns atomicity of the multi-block writes an
// insert can produce; DirtyBlocks reports what the last operation touched.
package htree

import (
	"fmt"

	"github.com/joshuapare/htreekit/htree/dirty"
	"github.com/joshuapare/htreekit/htree/index"
	"github.com/joshuapare/htreekit/htree/split"
	"github.com/joshuapare/htreekit/pkg/types"
)

// Dir is a handle on one indexed directory.
type Dir struct {
	store   types.BlockStore
	ictx    types.InodeContext
	reader  *index.Reader
	engine  *split.Engine
	tracker *dirty.Tracker
}

// Open binds a directory handle to its storage and inode context. It does
// not validate the index; the first operation does.
func Open(store types.BlockStore, ictx types.InodeContext) *Dir {
	t := dirty.NewTracker()
	r := index.NewReader(store, ictx)
	return &Dir{
		store:   store,
		ictx:    ictx,
		reader:  r,
		engine:  split.NewEngine(store, ictx, r, t),
		tracker: t,
	}
}

// IsIndexed reports whether the directory carries a usable hash index:
// the filesystem feature is on and the root block parses cleanly.
func (d *Dir) IsIndexed() bool {
	if !d.ictx.Features().DirIndex {
		return false
	}
	_, err := d.reader.RootInfo()
	return err == nil
}

// Lookup returns the inode number stored for name. A miss is reported as
// ErrNotFound, which is not a structural error.
func (d *Dir) Lookup(name string) (uint32, error) {
	if !d.ictx.Features().DirIndex {
		return 0, types.ErrNotIndexed
	}
	return d.reader.FindEntry([]byte(name))
}

// Insert adds name -> ino with the given file type tag, splitting leaf and
// index blocks as needed. Zero, one, or two blocks may be allocated.
func (d *Dir) Insert(name string, ino uint32, ftype types.FileType) error {
	if !d.ictx.Features().DirIndex {
		return types.ErrNotIndexed
	}
	if ino == 0 {
		return fmt.Errorf("insert %q: inode 0 marks free entries", name)
	}
	return d.engine.AddEntry([]byte(name), ino, ftype)
}

// DirtyBlocks returns the block addresses the most recent insert staged,
// sorted and deduplicated, for the caller's transaction layer.
func (d *Dir) DirtyBlocks() []uint32 {
	return d.tracker.Blocks()
}

// Reader exposes the traversal layer for tooling.
func (d *Dir) Reader() *index.Reader { return d.reader }

// SplitEngine exposes the growth layer for tooling.
func (d *Dir) SplitEngine() *split.Engine { return d.engine }
