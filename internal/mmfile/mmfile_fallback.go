//go:build !unix

package mmfile

import "os"

// Fallback for platforms without a usable mmap: MapFile reads the file
// into a heap slice and Sync writes it back wholesale. Correct but not
// cheap; every supported target in practice takes the unix path.

func MapFile(f *os.File, size int, readonly bool) ([]byte, error) {
	data := make([]byte, size)
	if size > 0 {
		if _, err := f.ReadAt(data, 0); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func Unmap(data []byte) error { return nil }

func Sync(f *os.File, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if _, err := f.WriteAt(data, 0); err != nil {
		return err
	}
	return nil
}

func Grow(f *os.File, size int64) error {
	return f.Truncate(size)
}

func Datasync(f *os.File) error { return f.Sync() }
