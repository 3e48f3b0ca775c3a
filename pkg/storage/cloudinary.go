package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ImageStorage is the media collaborator: it turns an inline payload into a
// stable URL and destroys a stored image again given that URL.
type ImageStorage interface {
	// UploadInline uploads an inline payload (base64 or data URI, as sent by
	// the client) and returns the secure URL.
	UploadInline(ctx context.Context, payload, folder string) (string, error)
	// DeleteImage deletes an image from storage using its URL.
	DeleteImage(ctx context.Context, fileURL string) error
}

type cloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStorage creates a Cloudinary-backed ImageStorage from explicit
// credentials. With empty credentials it falls back to CLOUDINARY_URL, which
// the cloudinary client reads itself.
func NewCloudinaryStorage(cloudName, apiKey, apiSecret, folder string) (ImageStorage, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	if cloudName != "" && apiKey != "" && apiSecret != "" {
		cld, err = cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	} else {
		cld, err = cloudinary.New()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	cld.Config.URL.Secure = true

	if folder == "" {
		folder = "chirpnet"
	}

	return &cloudinaryStorage{cld: cld, folder: folder}, nil
}

func (s *cloudinaryStorage) UploadInline(ctx context.Context, payload, folder string) (string, error) {
	if s == nil || s.cld == nil {
		return "", fmt.Errorf("cloudinary storage is not initialized")
	}
	if payload == "" {
		return "", fmt.Errorf("empty image payload")
	}

	if folder == "" {
		folder = s.folder
	}

	resp, err := s.cld.Upload.Upload(ctx, payload, uploader.UploadParams{
		Folder:         folder,
		UniqueFilename: api.Bool(true),
		Overwrite:      api.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to cloudinary: %w", err)
	}

	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload succeeded but secure URL is empty")
	}

	return resp.SecureURL, nil
}

func (s *cloudinaryStorage) DeleteImage(ctx context.Context, fileURL string) error {
	if s == nil || s.cld == nil {
		return fmt.Errorf("cloudinary storage is not initialized")
	}

	publicID := ExtractPublicID(fileURL)
	if publicID == "" {
		return fmt.Errorf("could not extract public ID from URL: %s", fileURL)
	}

	// Invalidate clears the CDN cache as well.
	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:   publicID,
		Invalidate: api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image from cloudinary: %w", err)
	}

	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy api returned result: %s", resp.Result)
	}

	return nil
}

// ExtractPublicID derives the storage public ID from a delivery URL:
// the last path segment minus its extension.
// https://res.cloudinary.com/demo/image/upload/v1712997552/zmxorcxexpdbh8r0bkjb.png -> zmxorcxexpdbh8r0bkjb
func ExtractPublicID(fileURL string) string {
	segment := fileURL
	if idx := strings.LastIndex(segment, "/"); idx != -1 {
		segment = segment[idx+1:]
	}
	if segment == "" {
		return ""
	}
	return strings.TrimSuffix(segment, path.Ext(segment))
}
