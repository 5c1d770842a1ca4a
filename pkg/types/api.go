package types

import "fmt"

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindFormat      ErrKind = iota // malformed headers/structures (bad dirent, bad root)
	ErrKindCorrupt                    // structural corruption (count>limit, bad ordering)
	ErrKindChecksum                   // stored tail checksum does not match block contents
	ErrKindUnsupported                // valid on-disk feature we don't support (yet)
	ErrKindNotFound                   // missing directory entry
	ErrKindCollision                  // block unsplittable, all entries share one hash
	ErrKindNoSpace                    // block allocation failed
	ErrKindState                      // invalid operation for current state (e.g., readonly)
)

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Sentinels commonly returned by the index engine.
var (
	// ErrNotIndexed indicates the directory does not carry a hash index.
	ErrNotIndexed = &Error{Kind: ErrKindFormat, Msg: "directory is not indexed"}
	// ErrCorruptIndex indicates a header or structural invariant violation
	// in the index tree. The engine never attempts local repair.
	ErrCorruptIndex = &Error{Kind: ErrKindCorrupt, Msg: "corrupt directory index"}
	// ErrChecksumMismatch indicates the block tail checksum did not verify.
	ErrChecksumMismatch = &Error{Kind: ErrKindChecksum, Msg: "block checksum mismatch"}
	// ErrHashCollision indicates a leaf could not be split because every
	// entry in it shares one major hash.
	ErrHashCollision = &Error{Kind: ErrKindCollision, Msg: "unsplittable block: single hash value"}
	// ErrNoSpace indicates the block store could not allocate a block.
	ErrNoSpace = &Error{Kind: ErrKindNoSpace, Msg: "no space left for block allocation"}
	// ErrUnsupportedDepth indicates the tree is already at the maximum
	// depth this engine supports (indirect_levels == 1).
	ErrUnsupportedDepth = &Error{Kind: ErrKindUnsupported, Msg: "index tree at maximum supported depth"}
	// ErrNotFound indicates the named entry does not exist.
	ErrNotFound = &Error{Kind: ErrKindNotFound, Msg: "entry not found"}
	// ErrExists indicates an insert hit an entry with the same name.
	ErrExists = &Error{Kind: ErrKindState, Msg: "entry already exists"}
	// ErrNameLen indicates a name outside the 1..255 byte range.
	ErrNameLen = &Error{Kind: ErrKindFormat, Msg: "invalid name length"}
	// ErrReadonly indicates a mutation was attempted on a read-only store.
	ErrReadonly = &Error{Kind: ErrKindState, Msg: "block store is read-only"}
)

// -----------------------------------------------------------------------------
// Collaborator contracts
// -----------------------------------------------------------------------------

// BlockStore is the engine's view of directory block storage. Addresses are
// opaque: the engine stores whatever AllocateBlock returned into index pairs
// and hands the same value back to ReadBlock/WriteBlock. All calls are
// synchronous; the engine performs no internal retry.
type BlockStore interface {
	// BlockSize returns the fixed block size in bytes.
	BlockSize() uint32

	// ReadBlock returns the contents of the block at addr. The returned
	// slice is owned by the caller; implementations must not alias it to
	// live storage that a later WriteBlock would mutate underneath the
	// caller.
	ReadBlock(addr uint32) ([]byte, error)

	// WriteBlock replaces the contents of the block at addr. len(data)
	// must equal BlockSize().
	WriteBlock(addr uint32, data []byte) error

	// AllocateBlock reserves a fresh block and returns its address.
	// Returns ErrNoSpace (possibly wrapped) when storage is exhausted.
	AllocateBlock() (uint32, error)
}

// Features carries the filesystem feature bits the index engine consults.
type Features struct {
	// DirIndex is the hashed-directory-index feature. When clear,
	// IsIndexed always reports false.
	DirIndex bool
	// FileType selects the meaning of the dirent's fourth header byte:
	// file type tag when set, high byte of an extended name length when
	// clear (pre-filetype filesystem revisions).
	FileType bool
	// UnsignedHash forces the unsigned variants of the hash functions.
	UnsignedHash bool
	// MetadataCsum enables the trailing checksum on index and leaf blocks.
	MetadataCsum bool
	// Casefold folds names case-insensitively before hashing and
	// comparison.
	Casefold bool
}

// InodeContext is the engine's view of the directory inode and the
// filesystem-wide metadata that parameterizes hashing and checksumming.
// Mutability is limited to the directory byte size, which grows by one
// block per split.
type InodeContext interface {
	// InodeNumber returns the directory's inode number.
	InodeNumber() uint32

	// Generation returns the inode generation, mixed into block checksums.
	Generation() uint32

	// Size returns the directory size in bytes.
	Size() uint64

	// SetSize records directory growth after a block was appended.
	SetSize(size uint64)

	// UUID returns the 16-byte filesystem UUID, mixed into block checksums.
	UUID() [16]byte

	// HashSeed returns the filesystem hash seed, or nil when the
	// superblock carries none (the default seed is used instead).
	HashSeed() *[4]uint32

	// DefaultHashVersion returns the signed hash version code recorded in
	// the superblock. The UnsignedHash feature promotes it to the
	// unsigned variant.
	DefaultHashVersion() uint8

	// Features returns the feature bits in effect for this directory.
	Features() Features
}

// FileType enumerates the dirent file type tags used when the FileType
// feature is enabled. The numbers are the on-disk values.
type FileType uint8

const (
	FTUnknown FileType = 0
	FTRegFile FileType = 1
	FTDir     FileType = 2
	FTChrdev  FileType = 3
	FTBlkdev  FileType = 4
	FTFifo    FileType = 5
	FTSock    FileType = 6
	FTSymlink FileType = 7
)

// String implements the Stringer interface for FileType.
func (t FileType) String() string {
	switch t {
	case FTUnknown:
		return "unknown"
	case FTRegFile:
		return "file"
	case FTDir:
		return "dir"
	case FTChrdev:
		return "chrdev"
	case FTBlkdev:
		return "blkdev"
	case FTFifo:
		return "fifo"
	case FTSock:
		return "sock"
	case FTSymlink:
		return "symlink"
	default:
		return fmt.Sprintf("filetype(%d)", uint8(t))
	}
}
