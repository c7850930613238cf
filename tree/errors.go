package tree

import "fmt"

var (
	// ErrNotFound is returned when the referenced node id does not exist in
	// the store. Under normal operation this indicates a strategy bug, not a
	// recoverable condition.
	ErrNotFound = fmt.Errorf("tree: node not found")

	// ErrInvalidParent is returned by CreateNode when a non-empty parent id
	// is unknown to the store.
	ErrInvalidParent = fmt.Errorf("tree: invalid parent")

	// ErrDuplicateRoot is returned by CreateNode when a second root is
	// requested for a tree that already has one.
	ErrDuplicateRoot = fmt.Errorf("tree: root already exists")
)
