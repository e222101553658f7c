// File: tripbot/services/storage/storage.go
package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ArtifactStore hosts ticket artifacts and returns a public download URL
// that can be sent over chat.
type ArtifactStore interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// CloudinaryStore keeps artifacts in a Cloudinary folder.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStore initializes the store from a CLOUDINARY_URL style DSN.
func NewCloudinaryStore(cloudinaryURL, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld, folder: folder}, nil
}

// Upload stores the artifact under its name and returns the delivery URL.
func (s *CloudinaryStore) Upload(ctx context.Context, name string, data []byte) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:   s.folder,
		PublicID: name,
	})
	if err != nil {
		return "", fmt.Errorf("storage: failed to upload artifact: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("storage: no URL returned for %s", name)
	}
	return result.SecureURL, nil
}
