package persist

import (
	"fmt"
	"sync"
	"time"
)

// DBID represents a database ID assigned to an entity at creation time
type DBID int64

var (
	idMu   = &sync.Mutex{}
	lastID DBID
)

// GenerateID returns a new process-unique DBID. Ids are seeded from the clock
// but strictly increase, so two calls within the same tick can never collide.
func GenerateID() DBID {
	idMu.Lock()
	defer idMu.Unlock()

	id := DBID(time.Now().UnixMicro())
	if id <= lastID {
		id = lastID + 1
	}
	lastID = id
	return id
}

// ErrNotFound is returned when no entity with the given id exists in the named
// collection
type ErrNotFound struct {
	Collection string
	ID         DBID
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s item not found", e.Collection)
}

// ErrStoreUnavailable is returned when the key-value backend itself failed
type ErrStoreUnavailable struct {
	Err error
}

func (e ErrStoreUnavailable) Error() string {
	return fmt.Sprintf("key-value store unavailable: %s", e.Err)
}

func (e ErrStoreUnavailable) Unwrap() error {
	return e.Err
}

// ErrIDAlreadySet is returned when an entity passed to Add carries a
// caller-supplied id. Ids are assigned by the repository, never by the caller.
type ErrIDAlreadySet struct {
	Collection string
	ID         DBID
}

func (e ErrIDAlreadySet) Error() string {
	return fmt.Sprintf("cannot add %s item with an already assigned id %d", e.Collection, e.ID)
}
