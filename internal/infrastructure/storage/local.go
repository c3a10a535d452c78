package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

const tempPrefix = ".upload-"

// LocalStore keeps objects as flat files in one directory.
type LocalStore struct {
	dir    string
	logger logger.Interface
}

func NewLocalStore(dir string, log logger.Interface) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve uploads directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	return &LocalStore{
		dir:    abs,
		logger: log,
	}, nil
}

func (s *LocalStore) Backend() string { return "local" }

// Dir returns the absolute directory holding the objects.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) path(storageName string) (string, error) {
	if !ValidName(storageName) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, storageName)
	}
	return filepath.Join(s.dir, storageName), nil
}

// Save streams into a temporary file and renames it into place, so a failed
// write never leaves a partially written object under a real name.
func (s *LocalStore) Save(ctx context.Context, originalName string, r io.Reader, contentType string) (StoredFile, error) {
	storageName := NewStorageName(originalName)
	final, err := s.path(storageName)
	if err != nil {
		return StoredFile{}, err
	}

	tmp, err := os.CreateTemp(s.dir, tempPrefix+"*")
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	cr := newChecksumReader(&ctxReader{ctx: ctx, r: r})
	if _, err := io.Copy(tmp, cr); err != nil {
		cleanup()
		return StoredFile{}, fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return StoredFile{}, fmt.Errorf("failed to sync object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return StoredFile{}, fmt.Errorf("failed to close object: %w", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		_ = os.Remove(tmpName)
		return StoredFile{}, fmt.Errorf("failed to move object into place: %w", err)
	}

	stored := cr.result(storageName)
	s.logger.Debugw("object stored",
		"storage_name", storageName,
		"size_bytes", stored.SizeBytes,
		"content_type", contentType)
	return stored, nil
}

func (s *LocalStore) Open(ctx context.Context, storageName string) (io.ReadCloser, Object, error) {
	p, err := s.path(storageName)
	if err != nil {
		return nil, Object{}, err
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Object{}, ErrNotExist
		}
		return nil, Object{}, fmt.Errorf("failed to open object: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, Object{}, fmt.Errorf("failed to stat object: %w", err)
	}

	return f, Object{
		Name:        storageName,
		SizeBytes:   info.Size(),
		ContentType: mime.TypeByExtension(filepath.Ext(storageName)),
		ModTime:     info.ModTime().UTC(),
	}, nil
}

func (s *LocalStore) Delete(ctx context.Context, storageName string) error {
	p, err := s.path(storageName)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotExist
		}
		return fmt.Errorf("failed to delete object: %w", err)
	}

	s.logger.Debugw("object deleted", "storage_name", storageName)
	return nil
}

func (s *LocalStore) List(ctx context.Context) ([]Object, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploads directory: %w", err)
	}

	objects := make([]Object, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to stat %s: %w", e.Name(), err)
		}
		objects = append(objects, Object{
			Name:        e.Name(),
			SizeBytes:   info.Size(),
			ContentType: mime.TypeByExtension(filepath.Ext(e.Name())),
			ModTime:     info.ModTime().UTC(),
		})
	}
	return objects, nil
}

func (s *LocalStore) Check(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("uploads directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("uploads path %s is not a directory", s.dir)
	}
	return nil
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
