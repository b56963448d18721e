package redisrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mikeydub/go-portfolio/service/persist"
	"github.com/mikeydub/go-portfolio/service/redis"
)

// ProfileRepository is the redis-backed implementation of
// persist.ProfileRepository. The profile is a single document under a fixed
// key; it is not built on the generic collection core.
type ProfileRepository struct {
	store KeyValueStore
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(store KeyValueStore) *ProfileRepository {
	return &ProfileRepository{store: store}
}

// Get returns the profile document, or ErrProfileNotFound when it has never
// been created
func (r *ProfileRepository) Get(ctx context.Context) (persist.Profile, error) {
	raw, err := r.store.Get(ctx, persist.ProfileKey)
	if err != nil {
		if _, ok := err.(redis.ErrKeyNotFound); ok {
			return persist.Profile{}, persist.ErrProfileNotFound{}
		}
		return persist.Profile{}, persist.ErrStoreUnavailable{Err: err}
	}

	var profile persist.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return persist.Profile{}, fmt.Errorf("could not decode profile: %s", err)
	}
	return profile, nil
}

// Create writes the profile document only if it does not exist yet
func (r *ProfileRepository) Create(ctx context.Context, profile persist.Profile) error {
	err := r.store.Update(ctx, persist.ProfileKey, func(current []byte) ([]byte, error) {
		if current != nil {
			return nil, callbackErr{err: persist.ErrProfileExists{}}
		}
		encoded, err := json.Marshal(profile)
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

// Upsert unconditionally replaces the profile document
func (r *ProfileRepository) Upsert(ctx context.Context, profile persist.Profile) error {
	encoded, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, persist.ProfileKey, encoded); err != nil {
		return persist.ErrStoreUnavailable{Err: err}
	}
	return nil
}
