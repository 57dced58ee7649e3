// Package upload stores proof images in Cloudinary and hands back the
// secure URL kept on the registration record.
package upload

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary.NewFromParams -> %w", err)
	}

	return &CloudinaryStore{
		cld:    cld,
		folder: folder,
	}, nil
}

// Upload pushes the image bytes and returns the hosted secure URL.
func (s *CloudinaryStore) Upload(ctx context.Context, data []byte) (string, error) {
	resp, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder: s.folder,
	})
	if err != nil {
		return "", fmt.Errorf("cld.Upload.Upload -> %w", err)
	}

	return resp.SecureURL, nil
}
