package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/formaplus/elearning-backend/internal/platform/ctxutil"
	"github.com/formaplus/elearning-backend/internal/platform/logger"
)

type gcsStore struct {
	log    *logger.Logger
	client *gcs.Client
	bucket string
}

// NewGCSStore keeps objects in a Google Cloud Storage bucket. When
// emulatorHost is non-empty the client talks to a fake-gcs-server style
// emulator instead of the real API.
func NewGCSStore(ctx context.Context, log *logger.Logger, bucket, emulatorHost string) (ObjectStore, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("gcs bucket name is empty")
	}
	ctx = ctxutil.Default(ctx)
	var opts []option.ClientOption
	if strings.TrimSpace(emulatorHost) != "" {
		opts = append(opts,
			option.WithEndpoint("http://"+emulatorHost+"/storage/v1/"),
			option.WithoutAuthentication(),
		)
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &gcsStore{
		log:    log.With("store", "gcs", "bucket", bucket),
		client: client,
		bucket: bucket,
	}, nil
}

func (s *gcsStore) Save(ctx context.Context, key string, r io.Reader) error {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	w := s.client.Bucket(s.bucket).Object(SanitizeKey(key)).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs close %s: %w", key, err)
	}
	return nil
}

func (s *gcsStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	ctx = ctxutil.Default(ctx)
	rc, err := s.client.Bucket(s.bucket).Object(SanitizeKey(key)).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs open %s: %w", key, err)
	}
	return rc, nil
}

func (s *gcsStore) Delete(ctx context.Context, key string) error {
	ctx = ctxutil.Default(ctx)
	err := s.client.Bucket(s.bucket).Object(SanitizeKey(key)).Delete(ctx)
	if err != nil && err != gcs.ErrObjectNotExist {
		return fmt.Errorf("gcs delete %s: %w", key, err)
	}
	return nil
}

func (s *gcsStore) PublicURL(key string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, SanitizeKey(key))
}
