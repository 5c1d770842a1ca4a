//go:build unix

package mmfile

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// MapFile maps size bytes of f into memory. Writable mappings are shared,
// so stores land in the page cache and reach the file on Sync.
func MapFile(f *os.File, size int, readonly bool) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	prot := unix.PROT_READ
	if !readonly {
		prot |= unix.PROT_WRITE
	}
	return unix.Mmap(int(f.Fd()), 0, size, prot, unix.MAP_SHARED)
}

// Unmap releases a mapping returned by MapFile. Double-unmap is a no-op.
func Unmap(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	err := unix.Munmap(data)
	if errors.Is(err, unix.EINVAL) {
		return nil
	}
	return err
}

// Sync flushes the mapped pages to the file.
func Sync(f *os.File, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return unix.Msync(data, unix.MS_SYNC)
}

// Grow extends the file to size bytes.
func Grow(f *os.File, size int64) error {
	return unix.Ftruncate(int(f.Fd()), size)
}

// Datasync flushes file data without forcing a metadata sync where the
// platform distinguishes the two.
func Datasync(f *os.File) error {
	err := unix.Fdatasync(int(f.Fd()))
	if errors.Is(err, unix.ENOSYS) {
		return f.Sync()
	}
	return err
}
