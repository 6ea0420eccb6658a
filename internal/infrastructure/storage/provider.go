package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"edu-resources/internal/config"
	domain "edu-resources/internal/domain/resource"
)

// New creates the storage backend selected by STORAGE_BACKEND.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.Storage, error) {
	switch {
	case cfg.IsS3Storage():
		return NewS3Storage(ctx, cfg, log)
	case cfg.IsLocalStorage():
		return NewLocalStorage(cfg, log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
