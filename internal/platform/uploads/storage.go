package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/findmypet-api/internal/config"
	"github.com/phrazzld/findmypet-api/internal/domain"
	"github.com/phrazzld/findmypet-api/internal/platform/logger"
)

// AllowedExtensions lists the accepted image extensions.
var AllowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
}

// storedPrefixLength is the length of the "<uuid-hex>_" prefix of stored names.
const storedPrefixLength = 33

// maxFileNameBytes is the common file system limit for a single path element.
const maxFileNameBytes = 255

// minNameBudget leaves room for at least "image.jpeg".
const minNameBudget = len("image.jpeg")

// ErrForeignReference is returned by Remove for references outside the prefix.
var ErrForeignReference = errors.New("reference does not belong to upload storage")

// LocalStorage writes attachments into a directory served at URLPrefix.
type LocalStorage struct {
	dir        string
	urlPrefix  string
	nameBudget int
	logger     *slog.Logger
}

// NewLocalStorage creates the upload directory if needed.
// If logger is nil, a default logger will be used.
func NewLocalStorage(cfg config.UploadsConfig, logger *slog.Logger) (*LocalStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	urlPrefix := strings.TrimSuffix(cfg.URLPrefix, "/")

	// References are stored in a column of domain.MaxImageURLLength characters.
	budget := min(domain.MaxImageURLLength-len(urlPrefix)-1, maxFileNameBytes) - storedPrefixLength
	if budget < minNameBudget {
		return nil, fmt.Errorf("upload url prefix %q is too long", cfg.URLPrefix)
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", cfg.Dir, err)
	}

	return &LocalStorage{
		dir:        cfg.Dir,
		urlPrefix:  urlPrefix,
		nameBudget: budget,
		logger:     logger.With(slog.String("component", "upload_storage")),
	}, nil
}

// Dir returns the directory files are written to.
func (s *LocalStorage) Dir() string {
	return s.dir
}

// URLPrefix returns the URL path under which stored files are served.
func (s *LocalStorage) URLPrefix() string {
	return s.urlPrefix
}

// Accept stores content if filename has an allowed extension and returns
// its reference. Disallowed or extension-less files yield (nil, nil).
func (s *LocalStorage) Accept(ctx context.Context, filename string, content io.Reader) (*string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	ext := Extension(filename)
	if _, ok := AllowedExtensions[ext]; !ok || filename == "" {
		log.Debug("dropping upload with disallowed extension", slog.String("extension", ext))
		return nil, nil
	}

	safe := SanitizeFilename(filename)
	if !strings.HasSuffix(strings.ToLower(safe), "."+ext) {
		safe = "image." + ext
	}
	safe = truncateStem(safe, ext, s.nameBudget)
	name := strings.ReplaceAll(uuid.NewString(), "-", "") + "_" + safe

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}
	if _, err := io.Copy(f, content); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("failed to write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("failed to close upload file: %w", err)
	}

	ref := s.urlPrefix + "/" + name
	log.Info("stored upload", slog.String("image_url", ref))
	return &ref, nil
}

// Remove deletes the file behind ref. A missing file is not an error.
func (s *LocalStorage) Remove(ctx context.Context, ref string) error {
	name, ok := strings.CutPrefix(ref, s.urlPrefix+"/")
	if !ok || name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %s", ErrForeignReference, ref)
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove upload: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("removed upload", slog.String("image_url", ref))
	return nil
}
