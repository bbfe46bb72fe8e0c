package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/noah-isme/fyp-manager-api/pkg/config"
)

// Backend stores uploaded objects under slash separated keys.
type Backend interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, Object, error)
	Delete(ctx context.Context, key string) error
}

// New selects the backend named by cfg.Driver. The MinIO bucket is created if missing.
func New(ctx context.Context, cfg config.UploadsConfig) (Backend, error) {
	switch cfg.Driver {
	case "", config.StorageDriverLocal:
		return NewLocalStorage(cfg.Dir)
	case config.StorageDriverMinio:
		s, err := NewMinioStorage(cfg.Minio)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
