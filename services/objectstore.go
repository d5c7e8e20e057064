package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AttachmentKind string

const (
	AttachmentImage AttachmentKind = "image"
	AttachmentFile  AttachmentKind = "file"
)

// StoredObject is the result of a confirmed upload.
type StoredObject struct {
	URL      string
	PublicID string
}

// ObjectStore holds attachment bytes. Delete receives the attachment kind
// as a hint for backends that keep images and raw files apart.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (*StoredObject, error)
	Delete(ctx context.Context, publicID string, kind AttachmentKind) error
}

// BucketObjectStore stores attachments in a Cloud Storage bucket, usually
// the default bucket of the Firebase project.
type BucketObjectStore struct {
	logger     zerolog.Logger
	bucket     *storage.BucketHandle
	bucketName string
}

func NewBucketObjectStore(logger zerolog.Logger, bucket *storage.BucketHandle, bucketName string) *BucketObjectStore {
	return &BucketObjectStore{
		logger:     logger,
		bucket:     bucket,
		bucketName: bucketName,
	}
}

func (s *BucketObjectStore) Upload(ctx context.Context, key, contentType string, data []byte) (*StoredObject, error) {
	// cancelling the context is how a storage.Writer is aborted
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	token := uuid.New().String()
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{downloadTokenMetadata: token}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close object %s: %w", key, err)
	}

	s.logger.Debug().
		Str("key", key).
		Int("size", len(data)).
		Msg("uploaded object")

	return &StoredObject{
		URL:      downloadURL(s.bucketName, key, token),
		PublicID: key,
	}, nil
}

// Firebase Storage serves a private object to anyone holding one of the
// tokens listed under this metadata key.
const downloadTokenMetadata = "firebaseStorageDownloadTokens"

func downloadURL(bucketName, key, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucketName, url.PathEscape(key), url.QueryEscape(token))
}

func (s *BucketObjectStore) Delete(ctx context.Context, publicID string, kind AttachmentKind) error {
	err := s.bucket.Object(publicID).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete %s object %s: %w", kind, publicID, err)
	}
	return nil
}
