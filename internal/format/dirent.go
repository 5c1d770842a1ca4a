package format

import (
	"fmt"

	"github.com/joshuapare/htreekit/internal/buf"
)

// Dirent captures one directory entry. The on-disk structure is:
//
//	Offset  Size  Field
//	0x00    4     Inode number (0 marks a free/filler entry)
//	0x04    2     Entry length (multiple of 4, covers header+name+padding;
//	              the value 0xFFFF encodes a record spanning a full 64 KiB
//	              block, which a 16-bit field cannot hold)
//	0x06    1     Name length (low byte)
//	0x07    1     File type tag, or high byte of the name length on
//	              filesystem revisions predating the filetype feature
//	0x08    n     Name bytes, not NUL-terminated
//
// RecLen carries the decoded entry length, so it reads 65536 for a
// block-spanning record in a 64 KiB block.
//
// Name aliases the source buffer; callers that retain a Dirent across block
// mutation must copy it.
type Dirent struct {
	Inode   uint32
	RecLen  int
	NameLen uint8
	Aux     uint8
	Name    []byte
}

const (
	// maxRecLenCode is the stored entry length standing in for a record
	// that spans an entire 64 KiB block.
	maxRecLenCode = 0xFFFF

	// fullBlockRecLen is the decoded length maxRecLenCode stands for.
	fullBlockRecLen = 1 << 16
)

// recLenFromDisk decodes a stored entry length against the containing
// block's size.
func recLenFromDisk(raw uint16, blockSize int) int {
	if raw == maxRecLenCode && blockSize == fullBlockRecLen {
		return fullBlockRecLen
	}
	return int(raw)
}

// recLenToDisk encodes an entry length for storage. Only a record spanning
// a full 64 KiB block needs the escape value; anything else above the
// 16-bit range is unrepresentable.
func recLenToDisk(rec, blockSize int) (uint16, error) {
	if rec == fullBlockRecLen && blockSize == fullBlockRecLen {
		return maxRecLenCode, nil
	}
	if rec >= maxRecLenCode {
		return 0, fmt.Errorf("entry length %d in %d-byte block: %w", rec, blockSize, ErrBadDirent)
	}
	return uint16(rec), nil
}

// Free reports whether the entry is a free/filler entry.
func (d Dirent) Free() bool { return d.Inode == 0 }

// FileType returns the entry's file type tag. Only meaningful when the
// filetype feature is enabled; returns 0 otherwise.
func (d Dirent) FileType(filetype bool) uint8 {
	if filetype {
		return d.Aux
	}
	return 0
}

// fullNameLen resolves the dual-purpose fourth byte: with the filetype
// feature the name length is the single low byte, without it the fourth
// byte supplies the high bits of an extended name length.
func fullNameLen(nameLen, aux uint8, filetype bool) int {
	if filetype {
		return int(nameLen)
	}
	return int(nameLen) | int(aux)<<8
}

// DecodeDirent decodes the entry at off. The filetype flag selects the
// interpretation of the fourth header byte.
func DecodeDirent(b []byte, off int, filetype bool) (Dirent, error) {
	if !buf.Has(b, off, DirentHeaderSize) {
		return Dirent{}, fmt.Errorf("dirent at %d: %w", off, ErrTruncated)
	}
	d := Dirent{
		Inode:   buf.U32LE(b[off:]),
		RecLen:  recLenFromDisk(buf.U16LE(b[off+4:]), len(b)),
		NameLen: b[off+6],
		Aux:     b[off+7],
	}
	rec := d.RecLen
	if rec < DirentHeaderSize || rec%DirentAlign != 0 {
		return Dirent{}, fmt.Errorf("dirent at %d: entry length %d: %w", off, rec, ErrBadDirent)
	}
	if !buf.Has(b, off, rec) {
		return Dirent{}, fmt.Errorf("dirent at %d: entry length %d: %w", off, rec, ErrTruncated)
	}
	nameLen := fullNameLen(d.NameLen, d.Aux, filetype)
	if !d.Free() {
		if nameLen == 0 || DirentHeaderSize+nameLen > rec {
			return Dirent{}, fmt.Errorf("dirent at %d: name length %d in entry of %d: %w",
				off, nameLen, rec, ErrBadDirent)
		}
		d.Name = b[off+DirentHeaderSize : off+DirentHeaderSize+nameLen]
	}
	return d, nil
}

// NextDirent decodes the entry at off and returns it along with the offset
// of the following entry.
func NextDirent(b []byte, off int, filetype bool) (Dirent, int, error) {
	d, err := DecodeDirent(b, off, filetype)
	if err != nil {
		return Dirent{}, 0, err
	}
	return d, off + d.RecLen, nil
}

// PutDirent serializes d at off. The name is written from d.Name and the
// remainder of the record is zeroed. d.RecLen must already be valid.
func PutDirent(b []byte, off int, d Dirent) error {
	rec := d.RecLen
	if rec < DirentHeaderSize+len(d.Name) || rec%DirentAlign != 0 {
		return fmt.Errorf("dirent at %d: entry length %d for %d-byte name: %w",
			off, rec, len(d.Name), ErrBadDirent)
	}
	if !buf.Has(b, off, rec) {
		return fmt.Errorf("dirent at %d: entry length %d: %w", off, rec, ErrTruncated)
	}
	raw, err := recLenToDisk(rec, len(b))
	if err != nil {
		return fmt.Errorf("dirent at %d: %w", off, err)
	}
	buf.PutU32LE(b[off:], d.Inode)
	buf.PutU16LE(b[off+4:], raw)
	b[off+6] = d.NameLen
	b[off+7] = d.Aux
	n := copy(b[off+DirentHeaderSize:off+rec], d.Name)
	for i := off + DirentHeaderSize + n; i < off+rec; i++ {
		b[i] = 0
	}
	return nil
}

// PutFreeDirent writes a filler entry with inode 0 spanning rec bytes.
func PutFreeDirent(b []byte, off, rec int) error {
	if rec < DirentHeaderSize || rec%DirentAlign != 0 {
		return fmt.Errorf("free dirent at %d: entry length %d: %w", off, rec, ErrBadDirent)
	}
	return PutDirent(b, off, Dirent{RecLen: rec})
}

// NewDirent builds an entry for name with the minimal aligned record length.
// The caller may widen RecLen afterwards to absorb trailing free space.
func NewDirent(ino uint32, name []byte, ftype uint8, filetype bool) (Dirent, error) {
	if len(name) == 0 || len(name) > 0xFF {
		return Dirent{}, fmt.Errorf("dirent name of %d bytes: %w", len(name), ErrBadName)
	}
	d := Dirent{
		Inode:   ino,
		RecLen:  DirentSize(len(name)),
		NameLen: uint8(len(name)),
		Name:    name,
	}
	if filetype {
		d.Aux = ftype
	}
	return d, nil
}
