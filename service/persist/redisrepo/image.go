package redisrepo

import (
	"context"
	"fmt"

	"github.com/mikeydub/go-portfolio/service/logger"
	"github.com/mikeydub/go-portfolio/service/persist"
)

// ImageRepository is the redis-backed implementation of
// persist.ImageRepository. The hero and carousel collections share the same
// generic machinery under two different keys.
type ImageRepository struct {
	store   KeyValueStore
	objects ObjectDeleter
}

// NewImageRepository creates a new ImageRepository
func NewImageRepository(store KeyValueStore, objects ObjectDeleter) *ImageRepository {
	return &ImageRepository{store: store, objects: objects}
}

func (r *ImageRepository) coll(name persist.ImageCollection) collection[persist.Image] {
	return collection[persist.Image]{
		store:  r.store,
		key:    name.Key(),
		name:   string(name),
		idOf:   func(i persist.Image) persist.DBID { return i.ID },
		withID: func(i persist.Image, id persist.DBID) persist.Image { i.ID = id; return i },
	}
}

// GetAll returns every image in the named collection
func (r *ImageRepository) GetAll(ctx context.Context, name persist.ImageCollection) ([]persist.Image, error) {
	if err := name.Validate(); err != nil {
		return nil, err
	}
	return r.coll(name).getAll(ctx)
}

// GetByID returns the image with the given id from the named collection
func (r *ImageRepository) GetByID(ctx context.Context, name persist.ImageCollection, id persist.DBID) (persist.Image, error) {
	if err := name.Validate(); err != nil {
		return persist.Image{}, err
	}
	return r.coll(name).getByID(ctx, id)
}

// Add appends an image to the named collection, assigning its id
func (r *ImageRepository) Add(ctx context.Context, name persist.ImageCollection, image persist.Image) (persist.Image, error) {
	if err := name.Validate(); err != nil {
		return persist.Image{}, err
	}
	return r.coll(name).add(ctx, image)
}

// Update replaces the image with the matching id in the named collection
func (r *ImageRepository) Update(ctx context.Context, name persist.ImageCollection, image persist.Image) error {
	if err := name.Validate(); err != nil {
		return err
	}
	return r.coll(name).update(ctx, image)
}

// Delete removes the image record and then best-effort deletes the underlying
// stored object. When object deletion fails the record stays removed: the
// removed image is returned alongside the error so callers can report the
// locator that still needs cleanup.
func (r *ImageRepository) Delete(ctx context.Context, name persist.ImageCollection, id persist.DBID) (persist.Image, error) {
	if err := name.Validate(); err != nil {
		return persist.Image{}, err
	}

	removed, err := r.coll(name).delete(ctx, id)
	if err != nil {
		return persist.Image{}, err
	}

	if removed.URL != "" {
		if err := r.objects.Delete(ctx, removed.URL); err != nil {
			logger.For(ctx).Errorf("could not delete stored object for %s image %d: %s", name, id, err)
			return removed, fmt.Errorf("image record removed but stored object %s could not be deleted: %s", removed.URL, err)
		}
	}

	return removed, nil
}
