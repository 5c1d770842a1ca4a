package types

// Limits imposed by the on-disk directory index format.

const (
	// MaxNameLen is the maximum directory entry name length in bytes.
	MaxNameLen = 255

	// MaxIndirectLevels is the deepest tree this engine supports: a root
	// plus one layer of internal index blocks. Deeper trees exist in some
	// successors of the format but are rejected as unsupported here.
	MaxIndirectLevels = 1

	// MinBlockSize and MaxBlockSize bound the block sizes the format
	// defines (1 KiB to 64 KiB, powers of two).
	MinBlockSize = 1024
	MaxBlockSize = 65536
)
