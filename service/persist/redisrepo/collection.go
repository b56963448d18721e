package redisrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mikeydub/go-portfolio/service/persist"
	"github.com/mikeydub/go-portfolio/service/redis"
)

// KeyValueStore is the contract the repositories require from the backing
// key-value service. redis.Cache satisfies it; tests substitute an in-memory
// fake.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
}

// ObjectDeleter removes a stored object by the locator persisted on an entity
type ObjectDeleter interface {
	Delete(ctx context.Context, locator string) error
}

// collection implements the generic CRUD core over one key: every mutation is
// a full read-modify-write of the entire collection blob, run under the
// store's per-key lock. Intentionally simple; the data volumes are tens to
// low-hundreds of entities.
type collection[T any] struct {
	store  KeyValueStore
	key    string
	name   string
	idOf   func(T) persist.DBID
	withID func(T, persist.DBID) T
}

func (c collection[T]) decode(raw []byte) ([]T, error) {
	if len(raw) == 0 {
		return []T{}, nil
	}
	var all []T
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("could not decode %s collection: %s", c.name, err)
	}
	if all == nil {
		all = []T{}
	}
	return all, nil
}

// getAll returns every entity in the collection. An absent key decodes to an
// empty slice, never an error.
func (c collection[T]) getAll(ctx context.Context) ([]T, error) {
	raw, err := c.store.Get(ctx, c.key)
	if err != nil {
		if _, ok := err.(redis.ErrKeyNotFound); ok {
			return []T{}, nil
		}
		return nil, persist.ErrStoreUnavailable{Err: err}
	}
	return c.decode(raw)
}

func (c collection[T]) getByID(ctx context.Context, id persist.DBID) (T, error) {
	var zero T
	all, err := c.getAll(ctx)
	if err != nil {
		return zero, err
	}
	for _, it := range all {
		if c.idOf(it) == id {
			return it, nil
		}
	}
	return zero, persist.ErrNotFound{Collection: c.name, ID: id}
}

// add assigns a fresh id, appends the entity and rewrites the collection.
// Entities arriving with an id already set are rejected.
func (c collection[T]) add(ctx context.Context, entity T) (T, error) {
	var zero T
	if id := c.idOf(entity); id != 0 {
		return zero, persist.ErrIDAlreadySet{Collection: c.name, ID: id}
	}

	entity = c.withID(entity, persist.GenerateID())
	err := c.mutate(ctx, func(all []T) ([]T, error) {
		return append(all, entity), nil
	})
	if err != nil {
		return zero, err
	}
	return entity, nil
}

// update replaces the entity with the matching id in place, preserving its
// position in the collection.
func (c collection[T]) update(ctx context.Context, entity T) error {
	id := c.idOf(entity)
	return c.mutate(ctx, func(all []T) ([]T, error) {
		for i := range all {
			if c.idOf(all[i]) == id {
				all[i] = entity
				return all, nil
			}
		}
		return nil, persist.ErrNotFound{Collection: c.name, ID: id}
	})
}

// delete removes exactly one entity by id, preserving the order of the rest,
// and returns the removed entity so callers can cascade cleanup of resources
// it owns.
func (c collection[T]) delete(ctx context.Context, id persist.DBID) (T, error) {
	var removed T
	err := c.mutate(ctx, func(all []T) ([]T, error) {
		for i := range all {
			if c.idOf(all[i]) == id {
				removed = all[i]
				return append(all[:i], all[i+1:]...), nil
			}
		}
		return nil, persist.ErrNotFound{Collection: c.name, ID: id}
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return removed, nil
}

// callbackErr marks errors originating from our own decode/mutation logic so
// they are not misreported as transport failures.
type callbackErr struct {
	err error
}

func (e callbackErr) Error() string {
	return e.err.Error()
}

func (c collection[T]) mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	err := c.store.Update(ctx, c.key, func(current []byte) ([]byte, error) {
		all, err := c.decode(current)
		if err != nil {
			return nil, callbackErr{err: err}
		}
		next, err := fn(all)
		if err != nil {
			return nil, callbackErr{err: err}
		}
		encoded, err := json.Marshal(next)
		if err != nil {
			return nil, callbackErr{err: err}
		}
		return encoded, nil
	})
	if err != nil {
		if ce, ok := err.(callbackErr); ok {
			return ce.err
		}
		return persist.ErrStoreUnavailable{Err: err}
	}
	return nil
}
