package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"raffle-tool-backend/internal/common/logger"
)

// ProofStore persists transfer-proof images and hands back a stable,
// fetchable URL. The engine only ever sees the opaque reference.
type ProofStore interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// LocalStore writes proof files to a dedicated directory on disk,
// served by the HTTP layer under a public base URL. The directory is
// exclusively for transfer proofs; voucher images live elsewhere.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create proof directory: %w", err)
	}
	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Dir returns the backing directory, for static-file serving.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Upload stores the bytes under a fresh name and returns the public URL.
func (s *LocalStore) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty proof payload")
	}

	name := uuid.New().String() + extensionFor(contentType)
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write proof file: %w", err)
	}

	ref := s.baseURL + "/" + name
	logger.Debug().Str("ref", ref).Int("bytes", len(data)).Msg("Proof asset stored")
	return ref, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	default:
		return ".bin"
	}
}
