package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrBadDirent indicates a directory entry with an invalid length field.
	ErrBadDirent = errors.New("format: invalid directory entry")
	// ErrBadDots indicates the root block's fixed "." / ".." entries are malformed.
	ErrBadDots = errors.New("format: malformed dot entries")
	// ErrBadTail indicates the checksum tail pseudo-entry has the wrong shape.
	ErrBadTail = errors.New("format: malformed checksum tail")
	// ErrBadName indicates a name length outside the representable range.
	ErrBadName = errors.New("format: invalid name length")
)
