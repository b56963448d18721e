package upload

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/mikeydub/go-portfolio/service/logger"
	"github.com/mikeydub/go-portfolio/service/mediaconvert"
	"github.com/mikeydub/go-portfolio/service/persist"
)

// ObjectStore is what the pipeline needs from object storage
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	URLFor(key string) string
}

// ErrUploadFailed is returned when the object storage call itself failed.
// The pipeline does not retry; that is a caller concern.
type ErrUploadFailed struct {
	Err error
}

func (e ErrUploadFailed) Error() string {
	return "Failed to upload image"
}

func (e ErrUploadFailed) Unwrap() error {
	return e.Err
}

// File is a raw upload: bytes plus the name and type the client declared
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Pipeline converts, compresses and stores uploaded images
type Pipeline struct {
	objects    ObjectStore
	converters []mediaconvert.Converter
}

// NewPipeline creates a new Pipeline. With no explicit converters the default
// conversion chain is used.
func NewPipeline(objects ObjectStore, converters ...mediaconvert.Converter) *Pipeline {
	if len(converters) == 0 {
		converters = mediaconvert.DefaultConverters()
	}
	return &Pipeline{objects: objects, converters: converters}
}

// Upload runs the full pipeline on one file: HEIC detection and conversion,
// compression, key derivation, storage. Returns the stored image record; the
// original filename becomes its alt text.
func (p *Pipeline) Upload(ctx context.Context, file File) (persist.Image, error) {
	data := file.Data
	contentType := file.ContentType
	ext := extension(file.Name)

	if mediaconvert.IsHEIC(file.Name, file.ContentType) {
		converted, err := mediaconvert.ToJPEG(ctx, data, p.converters...)
		if err != nil {
			return persist.Image{}, err
		}
		data = converted
		ext = "jpg"
		contentType = "image/jpeg"
	}

	if contentType == "image/jpeg" {
		compressed, err := mediaconvert.Compress(data)
		if err == nil {
			data = compressed
		} else {
			logger.For(ctx).Warnf("could not compress %s: %s", file.Name, err)
		}
	}

	key := objectKey(ext)
	if err := p.objects.Put(ctx, key, data, contentType); err != nil {
		logger.For(ctx).Errorf("could not upload %s as %s: %s", file.Name, key, err)
		return persist.Image{}, ErrUploadFailed{Err: err}
	}

	return persist.Image{
		ID:  persist.GenerateID(),
		URL: p.objects.URLFor(key),
		Alt: file.Name,
	}, nil
}

func extension(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return "bin"
	}
	return ext
}

// objectKey derives a storage key: the upload timestamp with separators
// stripped plus a ksuid, so uploads within the same tick cannot collide.
func objectKey(ext string) string {
	return fmt.Sprintf("%s-%s.%s", time.Now().UTC().Format("20060102T150405"), ksuid.New().String(), ext)
}
