package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/mikeydub/go-portfolio/env"
)

// proxyPrefix is the local reverse-proxy route images were historically served
// from. Locators carrying it are rebased onto the public storage URL.
const proxyPrefix = "/api/images/"

// Store wraps an S3-compatible object storage API. One Store is constructed at
// startup from required configuration and shared by the whole process.
type Store struct {
	svc      *s3.S3
	bucket   string
	endpoint string
}

// NewStore creates a new Store. All five connection parameters must be
// present; a missing one is a configuration error raised here, never at call
// time.
func NewStore() (*Store, error) {
	endpoint, err := env.StringRequired("OBJECT_STORAGE_ENDPOINT")
	if err != nil {
		return nil, err
	}
	region, err := env.StringRequired("OBJECT_STORAGE_REGION")
	if err != nil {
		return nil, err
	}
	accessKey, err := env.StringRequired("OBJECT_STORAGE_ACCESS_KEY")
	if err != nil {
		return nil, err
	}
	secretKey, err := env.StringRequired("OBJECT_STORAGE_SECRET_KEY")
	if err != nil {
		return nil, err
	}
	bucket, err := env.StringRequired("OBJECT_STORAGE_BUCKET")
	if err != nil {
		return nil, err
	}

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Endpoint:    aws.String(endpoint),
		Credentials: credentials.NewStaticCredentials(accessKey, secretKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create object storage session: %s", err)
	}

	return &Store{svc: s3.New(sess), bucket: bucket, endpoint: endpoint}, nil
}

// Put uploads an object with public-read visibility
func (s *Store) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	return err
}

// Delete removes the object referenced by the locator stored on an entity
func (s *Store) Delete(ctx context.Context, locator string) error {
	_, err := s.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(KeyFromLocator(locator)),
	})
	return err
}

// URLFor returns the externally resolvable URL of an object
func (s *Store) URLFor(key string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(s.endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.bucket, host, key)
}

// KeyFromLocator returns the final path segment of whatever locator is stored
// on an entity. Real keys never contain a slash.
func KeyFromLocator(locator string) string {
	if i := strings.LastIndex(locator, "/"); i >= 0 {
		return locator[i+1:]
	}
	return locator
}

// ImageURL resolves a stored locator against the public image base URL. It
// handles an already-absolute URL (pass through), the local proxy prefix
// (strip and rebase) and a bare relative key (rebase directly).
func ImageURL(base, stored string) string {
	if strings.HasPrefix(stored, "http://") || strings.HasPrefix(stored, "https://") {
		return stored
	}
	stored = strings.TrimPrefix(stored, proxyPrefix)
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(stored, "/")
}
