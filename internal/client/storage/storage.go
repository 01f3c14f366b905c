// Package storage puts user media into the shared bucket and resolves the
// public URL each object is served from.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tellbrandz/tbz/internal/client/config"
)

// ObjectStore is the bucket contract used by uploads.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PublicURL(key string) string
}

// New builds the driver selected by cfg.Driver.
func New(ctx context.Context, cfg config.Storage) (ObjectStore, error) {
	switch cfg.Driver {
	case config.StorageS3, "":
		return NewS3(ctx, cfg)
	case config.StorageMinio:
		return OpenMinio(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func joinURL(prefix, key string) string {
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(key, "/")
}
