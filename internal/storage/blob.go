package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teamhub/team-service/internal/config"
)

// ErrNotImage is returned when uploaded content is not a supported image.
var ErrNotImage = errors.New("only image files are allowed")

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// BlobStore persists uploaded files and hands back a public URL.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, folder string) (string, error)
	Delete(ctx context.Context, url string) error
}

// DetectImage sniffs data and returns its MIME type, or ErrNotImage.
func DetectImage(data []byte) (*mimetype.MIME, error) {
	mime := mimetype.Detect(data)
	for _, allowed := range allowedImageTypes {
		if mime.Is(allowed) {
			return mime, nil
		}
	}
	return nil, ErrNotImage
}

// FSStore writes blobs below a root directory served under baseURL.
type FSStore struct {
	root    string
	baseURL string
	logger  *zap.Logger
}

// NewFSStore creates the root directory when missing.
func NewFSStore(cfg config.StorageConfig, logger *zap.Logger) (*FSStore, error) {
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &FSStore{
		root:    cfg.Root,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		logger:  logger,
	}, nil
}

// Root returns the directory blobs are written to.
func (s *FSStore) Root() string {
	return s.root
}

func (s *FSStore) Upload(ctx context.Context, data []byte, folder string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	mime, err := DetectImage(data)
	if err != nil {
		return "", err
	}

	folder = sanitizeFolder(folder)
	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create folder %s: %w", folder, err)
	}

	name := uuid.NewString() + mime.Extension()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}

	s.logger.Debug("blob stored", zap.String("folder", folder), zap.String("name", name), zap.String("mime", mime.String()))
	return s.baseURL + "/" + folder + "/" + name, nil
}

func (s *FSStore) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rel, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || rel == "" || strings.Contains(rel, "..") {
		return fmt.Errorf("url %q is not managed by this store", url)
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

func sanitizeFolder(folder string) string {
	folder = strings.ReplaceAll(filepath.ToSlash(folder), "..", "")
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return "misc"
	}
	return folder
}
