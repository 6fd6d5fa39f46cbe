package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStorage implements StorageService on Cloudinary.
type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStorage creates a CloudinaryStorage from credential params.
func NewCloudinaryStorage(cloudName, apiKey, apiSecret string) (*CloudinaryStorage, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryStorage{cld: cld}, nil
}

// UploadProof uploads a proof-of-payment image into the booking's folder and
// returns the secure URL.
func (s *CloudinaryStorage) UploadProof(ctx context.Context, bookingID string, file io.Reader) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: "payment-proofs/" + bookingID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload proof of payment: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("no URL returned for uploaded proof")
	}
	return result.SecureURL, nil
}

// DeleteProof removes an uploaded proof by its public ID.
func (s *CloudinaryStorage) DeleteProof(ctx context.Context, publicID string) error {
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("failed to delete proof of payment: %w", err)
	}
	return nil
}
