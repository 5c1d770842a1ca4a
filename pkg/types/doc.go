// Package types defines the collaborator contracts and core types for the
// hashed directory index engine: the BlockStore and InodeContext interfaces
// the engine consumes, the feature flags that parameterize it, and the
// typed error taxonomy it reports.
//
// Design goals:
//   - Small interfaces: the engine sees storage and inode metadata only
//     through BlockStore and InodeContext, so any filesystem embedding can
//     supply its own.
//   - Paranoid bounds checking downstream; never panic on malformed input.
//   - Typed errors with stable categories (corrupt/checksum/nospace/...).
//
// This package has no dependencies beyond the standard library.
package types
