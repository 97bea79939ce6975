// services/collection-service/internal/deposit/attachment.go
package deposit

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// DefaultMaxProofBytes is the proof size cap (10 MiB).
const DefaultMaxProofBytes int64 = 10 << 20

// raster images and PDF, with the extensions each may carry
var allowedProofTypes = map[string][]string{
	"image/jpeg":      {".jpg", ".jpeg"},
	"image/png":       {".png"},
	"image/webp":      {".webp"},
	"application/pdf": {".pdf"},
}

type AttachmentPolicy struct {
	MaxBytes int64
}

func DefaultAttachmentPolicy() AttachmentPolicy {
	return AttachmentPolicy{MaxBytes: DefaultMaxProofBytes}
}

// Validate checks a proof before it goes anywhere near storage.
func (p AttachmentPolicy) Validate(a *Attachment) error {
	if a == nil {
		return ErrMissingProof
	}
	if a.Body == nil {
		return &AttachmentError{Field: "body", Reason: "is empty"}
	}
	if a.Size <= 0 {
		return &AttachmentError{Field: "size", Reason: "must be positive"}
	}
	maxBytes := p.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxProofBytes
	}
	if a.Size > maxBytes {
		return &AttachmentError{Field: "size", Reason: fmt.Sprintf("%d exceeds limit of %d bytes", a.Size, maxBytes)}
	}

	mediaType, _, err := mime.ParseMediaType(a.ContentType)
	if err != nil {
		return &AttachmentError{Field: "content_type", Reason: fmt.Sprintf("%q is malformed", a.ContentType)}
	}
	exts, ok := allowedProofTypes[mediaType]
	if !ok {
		return &AttachmentError{Field: "content_type", Reason: fmt.Sprintf("%q is not allowed", mediaType)}
	}

	if ext := strings.ToLower(filepath.Ext(a.Filename)); ext != "" && !contains(exts, ext) {
		return &AttachmentError{Field: "filename", Reason: fmt.Sprintf("extension %q does not match %s", ext, mediaType)}
	}
	return nil
}

// ExtensionFor returns the canonical file extension for an allowed type.
func ExtensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	if exts := allowedProofTypes[mediaType]; len(exts) > 0 {
		return exts[0]
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
