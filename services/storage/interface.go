package storage

import (
	"context"
	"io"
)

// StorageService stores proof-of-payment images. The payment core only
// validates upload metadata; blob storage lives behind this interface.
type StorageService interface {
	// UploadProof stores the image under the booking's folder and returns its
	// public URL.
	UploadProof(ctx context.Context, bookingID string, file io.Reader) (string, error)
	DeleteProof(ctx context.Context, publicID string) error
}
