package services

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/kurin/blazer/b2"
	"github.com/rs/zerolog"
)

// B2ObjectStore stores attachments in a Backblaze B2 bucket.
type B2ObjectStore struct {
	logger zerolog.Logger
	bucket *b2.Bucket
}

func NewB2ObjectStore(ctx context.Context, logger zerolog.Logger, accountID, appKey, bucketName string) (*B2ObjectStore, error) {
	client, err := b2.NewClient(ctx, accountID, appKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create b2 client: %w", err)
	}

	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &B2ObjectStore{logger: logger, bucket: bucket}, nil
}

func (s *B2ObjectStore) Upload(ctx context.Context, key, contentType string, data []byte) (*StoredObject, error) {
	obj := s.bucket.Object(key)
	w := obj.NewWriter(ctx).WithAttrs(&b2.Attrs{ContentType: contentType})

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}

	s.logger.Debug().
		Str("key", key).
		Int("size", len(data)).
		Msg("uploaded object")

	return &StoredObject{URL: obj.URL(), PublicID: key}, nil
}

func (s *B2ObjectStore) Delete(ctx context.Context, publicID string, kind AttachmentKind) error {
	if err := s.bucket.Object(publicID).Delete(ctx); err != nil && !b2.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s object %s: %w", kind, publicID, err)
	}
	return nil
}
