// Package storage persists attachment payloads and hands back references.
// The rest of the system only ever stores the reference, never the bytes.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/config"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/domain"
)

// FileStore accepts an attachment payload and returns a retrievable reference.
type FileStore interface {
	Save(payload io.Reader, originalName string) (domain.FileRef, error)
}

// LocalStore writes attachments to a directory on disk.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(cfg config.StorageConfig) (*LocalStore, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: cfg.UploadDir, baseURL: strings.TrimRight(cfg.PublicBaseURL, "/")}, nil
}

// Save streams the payload to disk under a fresh key.
func (s *LocalStore) Save(payload io.Reader, originalName string) (domain.FileRef, error) {
	key := uuid.NewString() + sanitizedExt(originalName)
	path := filepath.Join(s.dir, key)

	out, err := os.Create(path)
	if err != nil {
		return domain.FileRef{}, fmt.Errorf("create attachment file: %w", err)
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, payload); err != nil {
		os.Remove(path) //nolint:errcheck
		return domain.FileRef{}, fmt.Errorf("write attachment: %w", err)
	}

	return domain.FileRef{
		Key:      key,
		FileName: filepath.Base(originalName),
		URL:      s.baseURL + "/" + key,
	}, nil
}

func sanitizedExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
