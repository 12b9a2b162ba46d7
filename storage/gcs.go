package storage

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore uploads selfies to a Google Cloud Storage bucket and returns the
// public object URL.
type GCSStore struct {
	client *gcs.Client
	bucket string
	folder string
}

func NewGCSStore(ctx context.Context, bucket string, credentialsJSON []byte) (*GCSStore, error) {
	var opts []option.ClientOption
	if len(credentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(credentialsJSON))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket, folder: "visitors"}, nil
}

func (s *GCSStore) Save(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	object := s.folder + "/" + sanitizeFilename(filename)

	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("uploading selfie: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("uploading selfie: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, object), nil
}
