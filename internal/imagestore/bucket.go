package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/2beens/gymlog/internal/telemetry/tracing"

	"cloud.google.com/go/storage"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// BucketStore keeps images in a Google Cloud Storage bucket.
type BucketStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

func NewBucketStore(ctx context.Context, bucketName string, opts ...option.ClientOption) (*BucketStore, error) {
	if bucketName == "" {
		return nil, errors.New("images bucket name not set")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	log.Debugf("using gcs image store, bucket: %s", bucketName)
	return &BucketStore{
		client: client,
		bucket: client.Bucket(bucketName),
	}, nil
}

func (s *BucketStore) Save(ctx context.Context, key string, r io.Reader) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "imagestore.gcs.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = "image/jpeg"
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload image [%s]: %w", key, err)
	}
	// object becomes visible only after a successful close
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize image [%s]: %w", key, err)
	}
	return nil
}

func (s *BucketStore) Open(ctx context.Context, key string) (_ io.ReadCloser, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "imagestore.gcs.open")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rc, err := s.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read image [%s]: %w", key, err)
	}
	return rc, nil
}

func (s *BucketStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.bucket.Object(key).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("image attrs [%s]: %w", key, err)
	}
	return true, nil
}

func (s *BucketStore) Close() error {
	return s.client.Close()
}
