package store

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/joshuapare/htreekit/internal/buf"
	"github.com/joshuapare/htreekit/pkg/types"
)

// Image file container for a single directory's blocks. The header occupies
// one page ahead of the block area:
//
//	Offset  Size  Field
//	0x00    8     Magic "htreeimg"
//	0x08    4     Container format version (1)
//	0x0C    4     Block size
//	0x10    4     Block count
//	0x14    4     Directory inode number
//	0x18    4     Inode generation
//	0x1C    8     Directory size in bytes
//	0x24    16    Filesystem UUID
//	0x34    16    Hash seed (4 x u32 little-endian), all zero = none
//	0x44    1     Default hash version code
//	0x45    1     Feature bits
//
// The container exists so images round-trip through tooling and tests; a
// real filesystem embedding supplies its own storage.
const (
	imageMagic         = "htreeimg"
	imageVersion       = 1
	imageHeaderSize    = 4096
	imageBlockSizeOff  = 0x0C
	imageBlockCountOff = 0x10
	imageInodeOff      = 0x14
	imageGenOff        = 0x18
	imageDirSizeOff    = 0x1C
	imageUUIDOff       = 0x24
	imageSeedOff       = 0x34
	imageHashVerOff    = 0x44
	imageFeaturesOff   = 0x45
)

// Feature bits stored in the image header.
const (
	featDirIndex = 1 << iota
	featFileType
	featUnsignedHash
	featMetadataCsum
	featCasefold
)

func packFeatures(f types.Features) uint8 {
	var b uint8
	if f.DirIndex {
		b |= featDirIndex
	}
	if f.FileType {
		b |= featFileType
	}
	if f.UnsignedHash {
		b |= featUnsignedHash
	}
	if f.MetadataCsum {
		b |= featMetadataCsum
	}
	if f.Casefold {
		b |= featCasefold
	}
	return b
}

func unpackFeatures(b uint8) types.Features {
	return types.Features{
		DirIndex:     b&featDirIndex != 0,
		FileType:     b&featFileType != 0,
		UnsignedHash: b&featUnsignedHash != 0,
		MetadataCsum: b&featMetadataCsum != 0,
		Casefold:     b&featCasefold != 0,
	}
}

// encodeHeader serializes info into a header page.
func encodeHeader(blockSize, blockCount uint32, info *types.InodeInfo) []byte {
	h := make([]byte, imageHeaderSize)
	copy(h, imageMagic)
	buf.PutU32LE(h[8:], imageVersion)
	buf.PutU32LE(h[imageBlockSizeOff:], blockSize)
	buf.PutU32LE(h[imageBlockCountOff:], blockCount)
	buf.PutU32LE(h[imageInodeOff:], info.Ino)
	buf.PutU32LE(h[imageGenOff:], info.Gen)
	buf.PutU32LE(h[imageDirSizeOff:], uint32(info.ByteSize))
	buf.PutU32LE(h[imageDirSizeOff+4:], uint32(info.ByteSize>>32))
	copy(h[imageUUIDOff:], info.FSUUID[:])
	if info.Seed != nil {
		for i, w := range info.Seed {
			buf.PutU32LE(h[imageSeedOff+4*i:], w)
		}
	}
	h[imageHashVerOff] = info.HashVersion
	h[imageFeaturesOff] = packFeatures(info.Flags)
	return h
}

// decodeHeader parses a header page.
func decodeHeader(h []byte) (blockSize, blockCount uint32, info *types.InodeInfo, err error) {
	if len(h) < imageHeaderSize || string(h[:len(imageMagic)]) != imageMagic {
		return 0, 0, nil, fmt.Errorf("image: bad magic")
	}
	if v := buf.U32LE(h[8:]); v != imageVersion {
		return 0, 0, nil, fmt.Errorf("image: unsupported container version %d", v)
	}
	blockSize = buf.U32LE(h[imageBlockSizeOff:])
	if blockSize < types.MinBlockSize || blockSize > types.MaxBlockSize {
		return 0, 0, nil, fmt.Errorf("image: block size %d out of range", blockSize)
	}
	blockCount = buf.U32LE(h[imageBlockCountOff:])
	info = &types.InodeInfo{
		Ino: buf.U32LE(h[imageInodeOff:]),
		Gen: buf.U32LE(h[imageGenOff:]),
		ByteSize: uint64(buf.U32LE(h[imageDirSizeOff:])) |
			uint64(buf.U32LE(h[imageDirSizeOff+4:]))<<32,
		HashVersion: h[imageHashVerOff],
		Flags:       unpackFeatures(h[imageFeaturesOff]),
	}
	copy(info.FSUUID[:], h[imageUUIDOff:imageUUIDOff+16])
	var seed [4]uint32
	zero := true
	for i := range seed {
		seed[i] = buf.U32LE(h[imageSeedOff+4*i:])
		if seed[i] != 0 {
			zero = false
		}
	}
	if !zero {
		info.Seed = &seed
	}
	return blockSize, blockCount, info, nil
}

// NewImageUUID fills info.FSUUID with a fresh random UUID when it is zero.
func NewImageUUID(info *types.InodeInfo) {
	if info.FSUUID == ([16]byte{}) {
		info.FSUUID = [16]byte(uuid.New())
	}
}

// UUIDString formats an image UUID.
func UUIDString(u [16]byte) string {
	return uuid.UUID(u).String()
}
