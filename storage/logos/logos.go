// Package logos stores business logo images in blob storage under a
// per-business key, satisfying the loyalty service's LogoStorage dependency.
package logos

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/stampkit/pkg/blob"
)

// allowedTypes maps accepted logo MIME types to the stored file extension.
var allowedTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// maxLogoSize bounds uploads; logos render at card size, anything bigger is
// a mistake.
const maxLogoSize = 2 << 20 // 2 MiB

// Storage stores logos in a blob store.
type Storage struct {
	blobs *blob.Storage
}

// New creates a logo storage. Panics on nil to fail fast during
// initialization.
func New(blobs *blob.Storage) *Storage {
	if blobs == nil {
		panic("logos: blob storage is required")
	}
	return &Storage{blobs: blobs}
}

// SaveLogo validates and uploads a business logo, returning its public URL.
// Re-uploading replaces the previous logo under the same key.
func (s *Storage) SaveLogo(ctx context.Context, businessID string, data []byte, contentType string) (string, error) {
	ext, ok := allowedTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", blob.ErrUnsupportedMIMEType, contentType)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty logo", blob.ErrInvalidKey)
	}
	if len(data) > maxLogoSize {
		return "", fmt.Errorf("logo exceeds %d bytes", maxLogoSize)
	}

	return s.blobs.Put(ctx, "logos/"+businessID+ext, data, contentType)
}
