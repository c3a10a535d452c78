// Package storage holds the attachment store: the backing place for the
// physical bytes behind attachment metadata. Two backends are provided, a
// local directory and an S3-compatible bucket via MinIO.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/orris-inc/ticketdesk/internal/shared/config"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

// ErrNotExist is returned when a storage name has no stored object.
var ErrNotExist = errors.New("stored object does not exist")

// ErrInvalidName is returned for storage names that could escape the store.
var ErrInvalidName = errors.New("invalid storage name")

const maxExtLen = 16

var extRe = regexp.MustCompile(`^[a-z0-9]+$`)

// StoredFile describes bytes that were written successfully.
type StoredFile struct {
	StorageName string
	SizeBytes   int64
	Checksum    string
}

// Object is one stored object as seen by a listing or an open.
type Object struct {
	Name        string
	SizeBytes   int64
	ContentType string
	ModTime     time.Time
}

// Store is the attachment store.
type Store interface {
	// Save writes r under a freshly generated storage name derived from
	// originalName's extension. Nothing is left behind when it fails.
	Save(ctx context.Context, originalName string, r io.Reader, contentType string) (StoredFile, error)
	// Open returns the object's bytes. The caller closes the reader.
	Open(ctx context.Context, storageName string) (io.ReadCloser, Object, error)
	// Delete removes the object, returning ErrNotExist if it was already gone.
	Delete(ctx context.Context, storageName string) error
	// List returns every stored object.
	List(ctx context.Context) ([]Object, error)
	// Check reports whether the backend is reachable.
	Check(ctx context.Context) error
	// Backend names the implementation.
	Backend() string
}

// New builds the store selected by cfg.
func New(ctx context.Context, cfg *config.StorageConfig, log logger.Interface) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case config.StorageLocal:
		return NewLocalStore(cfg.Local.Dir, log)
	case config.StorageMinIO:
		return NewMinIOStore(ctx, cfg.MinIO, log)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

// NewStorageName returns a collision-free name that keeps the sanitized
// extension of originalName, so served files still get a sensible type.
func NewStorageName(originalName string) string {
	return uuid.Must(uuid.NewV7()).String() + sanitizeExt(originalName)
}

func sanitizeExt(originalName string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(strings.TrimSpace(originalName)), "."))
	if ext == "" || len(ext) > maxExtLen || !extRe.MatchString(ext) {
		return ""
	}
	return "." + ext
}

// ValidName reports whether name is safe to resolve inside a store.
func ValidName(name string) bool {
	if name == "" || len(name) > 255 {
		return false
	}
	if strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return false
	}
	return true
}

// checksumReader hashes and counts everything read through it.
type checksumReader struct {
	r      io.Reader
	hasher *blake3.Hasher
	n      int64
}

func newChecksumReader(r io.Reader) *checksumReader {
	h := blake3.New()
	return &checksumReader{r: io.TeeReader(r, h), hasher: h}
}

func (c *checksumReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *checksumReader) result(storageName string) StoredFile {
	return StoredFile{
		StorageName: storageName,
		SizeBytes:   c.n,
		Checksum:    fmt.Sprintf("%x", c.hasher.Sum(nil)),
	}
}
