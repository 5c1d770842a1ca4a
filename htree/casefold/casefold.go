// Package casefold implements the case-insensitive name handling used when
// a directory has the casefold feature enabled. Names are Unicode
// case-folded before hashing and comparison, so "README" and "readme" land
// on the same index key and match each other.
package casefold

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Fold returns the case-folded form of name. Input that is not valid UTF-8
// is returned unchanged, matching the on-disk behavior of treating such
// names as opaque bytes.
func Fold(name []byte) []byte {
	if !utf8.Valid(name) {
		return name
	}
	return []byte(cases.Fold().String(string(name)))
}

// Equal reports whether two names match under case folding.
func Equal(a, b []byte) bool {
	return bytes.Equal(Fold(a), Fold(b))
}
