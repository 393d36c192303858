package services

import (
	"context"
	"time"

	"relief-backend/internal/storage"
)

// Image is an uploaded image part. A nil *Image means none was sent.
type Image struct {
	Filename string
	Data     []byte
}

// ImageUploader persists image bytes remotely and returns a public URL
type ImageUploader interface {
	Upload(ctx context.Context, data []byte, key string) (string, error)
}

// LocalImages stores images on the local filesystem. Update paths use it
// while create paths upload remotely.
type LocalImages interface {
	Save(filename string, data []byte) (string, error)
	Remove(path string) error
}

// requireImage validates a mandatory image and uploads it under prefix.
// It runs before any write so a failed upload leaves no record behind.
func requireImage(ctx context.Context, uploader ImageUploader, prefix string, img *Image, now time.Time) (string, error) {
	if img == nil {
		return "", badRequest("Image is required.")
	}
	if len(img.Data) == 0 {
		return "", badRequest("Empty image file.")
	}

	url, err := uploader.Upload(ctx, img.Data, storage.ObjectKey(prefix, img.Filename, now))
	if err != nil {
		return "", serverError("Failed to upload image.")
	}
	return url, nil
}
