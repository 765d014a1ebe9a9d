package catalog

import "time"

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces candidate and attempt IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}

// Previewer allocates and revokes local display references for files that
// have not been uploaded yet. Revoke must be synchronous and idempotent so
// it can run on teardown paths without orphaning resources.
type Previewer interface {
	Allocate(name string, data []byte) (string, error)
	Revoke(handle string)
}

// Store is the local cache contract. GetAll never fails: when the backing
// storage is unavailable or corrupted it degrades to the seed set.
type Store interface {
	GetAll() []Entity
	Put(e Entity) error
	Remove(id string) error
}
