// services/collection-service/internal/proofstore/local.go
package proofstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/deposit"
)

// ErrBadKey is returned for keys that would escape the storage root.
var ErrBadKey = errors.New("invalid object key")

// LocalStore writes proofs under a directory. It backs development setups
// and tests; production uses OSSStore.
type LocalStore struct {
	dir      string
	baseURL  string
	maxBytes int64
}

// NewLocalStore stores under dir and returns URLs prefixed with baseURL
// (e.g. "/uploads").
func NewLocalStore(dir, baseURL string, maxBytes int64) *LocalStore {
	if maxBytes <= 0 {
		maxBytes = deposit.DefaultMaxProofBytes
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), maxBytes: maxBytes}
}

// Put streams the attachment to disk. A partial file is never left behind.
func (s *LocalStore) Put(ctx context.Context, key string, a deposit.Attachment) (string, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := filepath.Join(s.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create proof dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	// read one byte past the limit to detect oversized streams
	n, err := io.Copy(tmp, io.LimitReader(a.Body, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to write proof: %w", err)
	}
	if n > s.maxBytes {
		return "", &deposit.AttachmentError{Field: "size", Reason: fmt.Sprintf("stream exceeds %d bytes", s.maxBytes)}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to flush proof: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("failed to move proof into place: %w", err)
	}
	committed = true
	return s.baseURL + "/" + clean, nil
}

func cleanKey(key string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrBadKey, key)
	}
	return clean, nil
}
