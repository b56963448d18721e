package persist

import (
	"context"
	"fmt"
)

// ImageCollection names one of the recognized image collections. The set is
// closed so that a typo cannot silently create a new, empty collection in the
// store.
type ImageCollection string

const (
	// CollectionHero backs the full-width hero section of the site
	CollectionHero ImageCollection = "hero"
	// CollectionCarousel backs the scrolling image carousel
	CollectionCarousel ImageCollection = "carousel"
)

// Key returns the store key the collection is persisted under
func (c ImageCollection) Key() string {
	return string(c)
}

// Validate returns ErrUnknownCollection unless c is a recognized collection
func (c ImageCollection) Validate() error {
	switch c {
	case CollectionHero, CollectionCarousel:
		return nil
	}
	return ErrUnknownCollection{Collection: string(c)}
}

// ErrUnknownCollection is returned when a collection name outside the
// recognized set is used
type ErrUnknownCollection struct {
	Collection string
}

func (e ErrUnknownCollection) Error() string {
	return fmt.Sprintf("unknown image collection %s", e.Collection)
}

// Image represents a stored image referenced by a collection or a parent
// entity. Images have no independent lifecycle: they are created when attached
// and deleted when their owner is deleted or removed from a collection.
type Image struct {
	ID  DBID   `json:"id"`
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// ImageRepository represents the interface for interacting with the persisted
// image collections
type ImageRepository interface {
	GetAll(context.Context, ImageCollection) ([]Image, error)
	GetByID(context.Context, ImageCollection, DBID) (Image, error)
	Add(context.Context, ImageCollection, Image) (Image, error)
	Update(context.Context, ImageCollection, Image) error
	Delete(context.Context, ImageCollection, DBID) (Image, error)
}
