package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	if !filepath.IsAbs(root) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("storage/local: getwd: %w", err)
		}
		root = filepath.Join(cwd, root)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage/local: mkdir %s: %w", root, err)
	}
	return &Local{root: root}, nil
}

func (l *Local) Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("storage/local: invalid file name %q", name)
	}

	f, err := os.Create(filepath.Join(l.root, name))
	if err != nil {
		return "", fmt.Errorf("storage/local: create %s: %w", name, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("storage/local: write %s: %w", name, err)
	}
	return URLPrefix + name, nil
}

// Handler serves the stored files; mount it under URLPrefix.
func (l *Local) Handler() http.Handler {
	return http.StripPrefix(URLPrefix, http.FileServer(http.Dir(l.root)))
}
