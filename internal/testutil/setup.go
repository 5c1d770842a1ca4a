// Package testutil builds throwaway indexed directories for tests: an
// in-memory or file-backed store initialized with an empty index, plus
// name generators for bulk-insert scenarios.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/joshuapare/htreekit/htree"
	"github.com/joshuapare/htreekit/htree/hash"
	"github.com/joshuapare/htreekit/htree/store"
	"github.com/joshuapare/htreekit/pkg/types"
)

// DefaultFeatures is the feature set most tests run under.
func DefaultFeatures() types.Features {
	return types.Features{
		DirIndex:     true,
		FileType:     true,
		MetadataCsum: true,
	}
}

// NewInode returns inode metadata for a fresh test directory.
func NewInode(feat types.Features) *types.InodeInfo {
	return &types.InodeInfo{
		Ino:         2,
		Gen:         1,
		FSUUID:      [16]byte{0xA1, 0xB2, 0xC3, 0xD4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		HashVersion: hash.HalfMD4,
		Flags:       feat,
	}
}

// SetupDir creates an empty indexed directory on an in-memory store.
func SetupDir(t *testing.T, blockSize uint32, feat types.Features) (*htree.Dir, *store.MemStore, *types.InodeInfo) {
	t.Helper()
	s := store.NewMemStore(blockSize)
	inode := NewInode(feat)
	d, err := htree.Create(s, inode, htree.CreateOptions{})
	if err != nil {
		t.Fatalf("create index: %v", err)
	}
	return d, s, inode
}

// SetupFileDir creates an empty indexed directory on a file-backed store in
// a temporary directory. The store is closed via t.Cleanup.
func SetupFileDir(t *testing.T, blockSize uint32, feat types.Features) (*htree.Dir, *store.FileStore, *types.InodeInfo) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dir.img")
	inode := NewInode(feat)
	s, err := store.CreateFile(path, blockSize, inode)
	if err != nil {
		t.Fatalf("create image: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	d, err := htree.Create(s, inode, htree.CreateOptions{})
	if err != nil {
		t.Fatalf("create index: %v", err)
	}
	return d, s, inode
}

// SeqNames returns n names of the form prefix_0000, prefix_0001, ...
func SeqNames(prefix string, n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("%s_%04d", prefix, i)
	}
	return names
}
