// Package storage uploads item images to the object-storage bucket and
// resolves their public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// ImageStore abstracts the object-storage layer for item images.
type ImageStore interface {
	// Upload stores data under a generated object name and returns its
	// publicly readable URL.
	Upload(ctx context.Context, filename, contentType string, data []byte) (string, error)
	// Delete removes the object a previous Upload returned the URL for.
	Delete(ctx context.Context, imageURL string) error
}

type gcsImageStore struct {
	client *gcs.Client
	bucket string
}

func NewGCSImageStore(client *gcs.Client, bucket string) ImageStore {
	return &gcsImageStore{client: client, bucket: bucket}
}

func (s *gcsImageStore) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	object := fmt.Sprintf("items/%s-%s", uuid.NewString(), filename)

	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	// Objects are served directly from the public bucket URL.
	acl := s.client.Bucket(s.bucket).Object(object).ACL()
	if err := acl.Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		return "", fmt.Errorf("failed to publish image: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, object), nil
}

func (s *gcsImageStore) Delete(ctx context.Context, imageURL string) error {
	marker := s.bucket + "/"
	idx := strings.Index(imageURL, marker)
	if idx < 0 {
		return errors.New("image url does not belong to this bucket")
	}
	object := imageURL[idx+len(marker):]
	if object == "" {
		return errors.New("image url has no object name")
	}

	if err := s.client.Bucket(s.bucket).Object(object).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
