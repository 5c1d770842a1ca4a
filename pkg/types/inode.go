package types

// InodeInfo is a plain-struct InodeContext for embeddings that do not have
// their own inode representation: the image-file store, the CLI, and tests.
// Filesystem integrations typically adapt their inode type instead.
type InodeInfo struct {
	Ino         uint32
	Gen         uint32
	ByteSize    uint64
	FSUUID      [16]byte
	Seed        *[4]uint32
	HashVersion uint8
	Flags       Features
}

func (i *InodeInfo) InodeNumber() uint32        { return i.Ino }
func (i *InodeInfo) Generation() uint32         { return i.Gen }
func (i *InodeInfo) Size() uint64               { return i.ByteSize }
func (i *InodeInfo) SetSize(size uint64)        { i.ByteSize = size }
func (i *InodeInfo) UUID() [16]byte             { return i.FSUUID }
func (i *InodeInfo) HashSeed() *[4]uint32       { return i.Seed }
func (i *InodeInfo) DefaultHashVersion() uint8  { return i.HashVersion }
func (i *InodeInfo) Features() Features         { return i.Flags }
