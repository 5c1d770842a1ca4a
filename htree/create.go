package htree

import (
	"fmt"

	"github.com/joshuapare/htreekit/htree/csum"
	"github.com/joshuapare/htreekit/htree/hash"
	"github.com/joshuapare/htreekit/htree/index"
	"github.com/joshuapare/htreekit/internal/format"
	"github.com/joshuapare/htreekit/pkg/types"
)

// CreateOptions parameterizes Create.
type CreateOptions struct {
	// ParentInode is the inode number recorded in the ".." entry. When
	// zero, the directory's own inode number is used (a root directory).
	ParentInode uint32
}

// Create initializes an empty indexed directory on a fresh store: the index
// root at block 0 with a single pair covering the whole hash range, and one
// empty leaf. The store must not contain any blocks yet. Full migration of
// a populated linear directory is the filesystem's concern, not this
// engine's.
func Create(store types.BlockStore, ictx types.InodeContext, opts CreateOptions) (*Dir, error) {
	if !ictx.Features().DirIndex {
		return nil, types.ErrNotIndexed
	}
	version := ictx.DefaultHashVersion()
	if !hash.Known(version) || hash.Unsigned(version) {
		return nil, fmt.Errorf("create: hash version %d: %w", version, types.ErrCorruptIndex)
	}
	blockSize := int(store.BlockSize())
	if blockSize < types.MinBlockSize || blockSize > types.MaxBlockSize {
		return nil, fmt.Errorf("create: block size %d out of range", blockSize)
	}

	rootAddr, err := store.AllocateBlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrNoSpace, err)
	}
	if rootAddr != index.RootAddr {
		return nil, fmt.Errorf("create: store not empty, first block is %d", rootAddr)
	}
	leafAddr, err := store.AllocateBlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrNoSpace, err)
	}

	check := csum.New(ictx)
	withTail := check.Enabled()
	parent := opts.ParentInode
	if parent == 0 {
		parent = ictx.InodeNumber()
	}

	root := make([]byte, blockSize)
	if err := format.PutDots(root, ictx.InodeNumber(), parent, ictx.Features().FileType); err != nil {
		return nil, err
	}
	format.PutRootInfo(root, format.RootInfo{
		HashVersion: version,
		InfoLen:     format.InfoLength,
	})
	limit := format.RootLimit(blockSize, withTail)
	format.PutCountLimit(root, format.RootInfoOffset+format.RootInfoSize,
		format.CountLimit{Limit: uint16(limit), Count: 1})
	format.PutPairAt(root, format.RootPairsOffset, 0,
		format.Pair{Hash: format.HashSentinel, Block: leafAddr})

	leaf := make([]byte, blockSize)
	if err := format.PutFreeDirent(leaf, 0, format.EntrySpaceEnd(blockSize, withTail)); err != nil {
		return nil, err
	}

	if err := check.Stamp(root); err != nil {
		return nil, err
	}
	if err := check.Stamp(leaf); err != nil {
		return nil, err
	}
	if err := store.WriteBlock(rootAddr, root); err != nil {
		return nil, fmt.Errorf("index root: %w", err)
	}
	if err := store.WriteBlock(leafAddr, leaf); err != nil {
		return nil, fmt.Errorf("leaf block %d: %w", leafAddr, err)
	}
	ictx.SetSize(2 * uint64(blockSize))
	return Open(store, ictx), nil
}
