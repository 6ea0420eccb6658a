package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"edu-resources/internal/config"
	domain "edu-resources/internal/domain/resource"
	"edu-resources/internal/infrastructure/metrics"
	"edu-resources/internal/infrastructure/observability"
)

var errInvalidName = errors.New("storage name must be a plain file name")

// LocalStorage writes resources under a single uploads directory and serves
// them from a fixed public path prefix.
type LocalStorage struct {
	basePath    string
	stagingPath string
	baseURL     string
	pathPrefix  string
	log         zerolog.Logger
}

// NewLocalStorage creates the uploads directory and its staging sibling if
// needed. In-progress writes live in the staging directory, which is never
// served.
func NewLocalStorage(cfg *config.Config, log zerolog.Logger) (*LocalStorage, error) {
	logger := log.With().Str("component", "local-storage").Logger()

	basePath := strings.TrimSpace(cfg.LocalUploadDir)
	if basePath == "" {
		basePath = "public/uploads"
	}
	basePath = filepath.Clean(basePath)
	stagingPath := stagingDir(basePath)
	for _, dir := range []string{basePath, stagingPath} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create local storage directory: %w", err)
		}
	}

	storage := &LocalStorage{
		basePath:    basePath,
		stagingPath: stagingPath,
		baseURL:     strings.TrimSuffix(strings.TrimSpace(cfg.PublicBaseURL), "/"),
		pathPrefix:  "/" + strings.Trim(cfg.PublicPathPrefix, "/"),
		log:         logger,
	}

	logger.Info().
		Str("path", basePath).
		Str("public_prefix", storage.pathPrefix).
		Str("base_url", storage.baseURL).
		Msg("local storage initialized")

	return storage, nil
}

// stagingDir is a hidden sibling of the uploads directory on the same
// filesystem, so a finished file can be renamed into place.
func stagingDir(basePath string) string {
	return filepath.Join(filepath.Dir(basePath), "."+filepath.Base(basePath)+"-staging")
}

// Provider identifies the backend in registry records.
func (l *LocalStorage) Provider() string {
	return domain.ProviderLocal
}

// Dir is the directory served under the public prefix.
func (l *LocalStorage) Dir() string {
	return l.basePath
}

// PathPrefix is the public URL path the uploads directory is mounted on.
func (l *LocalStorage) PathPrefix() string {
	return l.pathPrefix
}

func (l *LocalStorage) resolve(ref string) (string, error) {
	if ref == "" || ref != filepath.Base(ref) || ref == "." || ref == ".." || strings.ContainsAny(ref, `/\`) {
		return "", fmt.Errorf("%w: %q", errInvalidName, ref)
	}
	return filepath.Join(l.basePath, ref), nil
}

// Put writes body to a temporary file in the staging directory and renames
// it into place. Nothing is visible under the public prefix until the write
// has completed.
func (l *LocalStorage) Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) (ref string, err error) {
	start := time.Now()
	_, span := observability.StartStorageSpan(ctx, l.Provider(), "put", name)
	defer func() {
		metrics.RecordStorageOperation(l.Provider(), "put", err, time.Since(start).Seconds())
		observability.RecordError(span, err)
		span.End()
	}()

	fullPath, err := l.resolve(name)
	if err != nil {
		return "", err
	}
	for _, dir := range []string{l.basePath, l.stagingPath} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(l.stagingPath, "upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	written, err := io.Copy(tmp, body)
	if err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	if size >= 0 && written != size {
		err = fmt.Errorf("short write: wrote %d of %d bytes", written, size)
		return "", err
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("failed to set file mode: %w", err)
	}
	if err = os.Rename(tmpName, fullPath); err != nil {
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	l.log.Debug().
		Str("key", name).
		Str("content_type", contentType).
		Int64("bytes", written).
		Msg("file written to local storage")

	return name, nil
}

// URL returns the static public path for ref. It does not expire.
func (l *LocalStorage) URL(ctx context.Context, ref string) (string, error) {
	fullPath, err := l.resolve(ref)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", ref)
		}
		return "", err
	}
	return l.baseURL + l.pathPrefix + "/" + url.PathEscape(ref), nil
}

// Open reads a file from the uploads directory.
func (l *LocalStorage) Open(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	fullPath, err := l.resolve(ref)
	if err != nil {
		return nil, "", err
	}

	contentType := ""
	if m, err := mimetype.DetectFile(fullPath); err == nil {
		contentType = m.String()
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("file not found: %s", ref)
		}
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	return file, contentType, nil
}

// Delete removes ref. A missing file is not an error.
func (l *LocalStorage) Delete(ctx context.Context, ref string) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordStorageOperation(l.Provider(), "delete", err, time.Since(start).Seconds())
	}()

	fullPath, err := l.resolve(ref)
	if err != nil {
		return err
	}
	if err = os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Health checks that both directories exist and that staging is writable.
func (l *LocalStorage) Health(ctx context.Context) error {
	info, err := os.Stat(l.basePath)
	if err != nil {
		return fmt.Errorf("storage directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage path %s is not a directory", l.basePath)
	}
	check, err := os.CreateTemp(l.stagingPath, "health-*")
	if err != nil {
		return fmt.Errorf("storage directory not writable: %w", err)
	}
	_ = check.Close()
	_ = os.Remove(check.Name())
	return nil
}
