package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// ErrObjectNotFound is returned when a stored upload does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Object describes a stored upload.
type Object struct {
	Key         string
	Size        int64
	ContentType string
}

// LocalStorage persists uploads on disk under a base directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Save copies from reader into the file named by key.
func (s *LocalStorage) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (Object, error) {
	path, err := s.resolve(key)
	if err != nil {
		return Object{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Object{}, fmt.Errorf("prepare upload directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return Object{}, fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck

	written, err := io.Copy(file, readerWithContext(ctx, r))
	if err != nil {
		_ = os.Remove(path)
		return Object{}, fmt.Errorf("write upload stream: %w", err)
	}
	return Object{Key: key, Size: written, ContentType: contentType}, nil
}

// Open returns a read-only handle for the stored file.
func (s *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, Object, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, Object{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Object{}, ErrObjectNotFound
		}
		return nil, Object{}, fmt.Errorf("open upload file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, Object{}, fmt.Errorf("stat upload file: %w", err)
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, Object{}, ErrObjectNotFound
	}
	return file, Object{Key: key, Size: info.Size(), ContentType: contentTypeFor(key)}, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

func (s *LocalStorage) resolve(key string) (string, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(cleaned)), nil
}

// CleanKey normalises an object key and rejects keys escaping the storage root.
func CleanKey(key string) (string, error) {
	key = strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(key)), "/")
	if key == "" {
		return "", fmt.Errorf("empty object key")
	}
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return cleaned, nil
}

func contentTypeFor(key string) string {
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	if ctx == nil {
		return r
	}
	return ctxReader{ctx: ctx, r: r}
}
