package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/formaplus/elearning-backend/internal/platform/ctxutil"
	"github.com/formaplus/elearning-backend/internal/platform/logger"
)

// ObjectStore persists uploaded course material (videos, PDFs, avatars)
// under a flat key space. Keys are sanitized before they reach any
// implementation.
type ObjectStore interface {
	Save(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// SanitizeKey flattens path traversal and whitespace out of a filename so
// it is safe to use as an object key.
func SanitizeKey(name string) string {
	name = strings.TrimSpace(name)
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" || out == "." || out == ".." {
		return "unnamed"
	}
	return out
}

type localStore struct {
	log     *logger.Logger
	root    string
	baseURL string
}

// NewLocalStore keeps objects on the local filesystem under root.
func NewLocalStore(log *logger.Logger, root, baseURL string) (ObjectStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("local storage root is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &localStore{
		log:     log.With("store", "local"),
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *localStore) path(key string) string {
	return filepath.Join(s.root, SanitizeKey(key))
}

func (s *localStore) Save(ctx context.Context, key string, r io.Reader) error {
	ctx = ctxutil.Default(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	dst := s.path(key)
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}

func (s *localStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	ctx = ctxutil.Default(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(key))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return f, nil
}

func (s *localStore) Delete(ctx context.Context, key string) error {
	ctx = ctxutil.Default(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *localStore) PublicURL(key string) string {
	return s.baseURL + "/" + SanitizeKey(key)
}

// LocalPath exposes the on-disk location of a key for callers that need to
// hand a real file path to external tools (ffprobe).
func LocalPath(store ObjectStore, key string) (string, bool) {
	ls, ok := store.(*localStore)
	if !ok {
		return "", false
	}
	return ls.path(key), true
}
