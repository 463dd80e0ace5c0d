// Package storage saves uploaded images and returns the path clients use to
// fetch them.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/marketplace-service/internal/config"
)

// URLPrefix is the public path under which locally stored files are served.
const URLPrefix = "/uploads/"

type Storage interface {
	// Put stores r under name and returns the path or URL to persist.
	Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
}

func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "local":
		return NewLocal(cfg.LocalRoot)
	case "s3":
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}

var allowedExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// ObjectName builds a collision-free file name keeping the original
// extension, e.g. "avatar_7_<uuid>.png".
func ObjectName(prefix, original string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	if !allowedExt[ext] {
		ext = ".jpg"
	}

	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("storage: failed to generate file name: %w", err)
	}

	if prefix == "" {
		return id.String() + ext, nil
	}
	return prefix + "_" + id.String() + ext, nil
}
