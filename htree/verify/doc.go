// Package verify provides validation functions for hashed directory index
// structures. These helpers are used in tests and by the verify command to
// ensure index invariants are maintained.
package verify
