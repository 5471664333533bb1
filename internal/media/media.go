// Package media stores printer photos in S3. Objects live under
// printers/<id>/ with a thumbnail alongside every original so listings
// never decode full-size images.
package media

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/printdesk/pd-backend/internal/aws"
	"github.com/printdesk/pd-backend/internal/image"
)

const (
	photoPrefix   = "printers"
	thumbSuffix   = "_thumb"
	presignExpiry = 15 * time.Minute
)

type Photo struct {
	Key          string `json:"key"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

type Service struct {
	s3 *aws.S3Service
}

func NewService(s3 *aws.S3Service) *Service {
	return &Service{s3: s3}
}

func (s *Service) UploadPrinterPhoto(ctx context.Context, printerID uuid.UUID, file multipart.File, header *multipart.FileHeader) (*Photo, error) {
	processed, err := image.ValidateAndProcess(file, header)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(path.Ext(header.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	name := uuid.New().String()
	key := fmt.Sprintf("%s/%s/%s%s", photoPrefix, printerID, name, ext)
	thumbKey := fmt.Sprintf("%s/%s/%s%s%s", photoPrefix, printerID, name, thumbSuffix, ext)

	if err := s.s3.PutObject(ctx, key, bytes.NewReader(processed.Original), processed.ContentType); err != nil {
		return nil, err
	}
	if err := s.s3.PutObject(ctx, thumbKey, bytes.NewReader(processed.Thumbnail), processed.ContentType); err != nil {
		// The original landed; surface the thumbnail failure rather than
		// leave the pair half-described.
		return nil, fmt.Errorf("upload thumbnail: %w", err)
	}

	return s.presignPhoto(ctx, key, thumbKey)
}

func (s *Service) ListPrinterPhotos(ctx context.Context, printerID uuid.UUID) ([]Photo, error) {
	prefix := fmt.Sprintf("%s/%s/", photoPrefix, printerID)
	objects, err := s.s3.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}

	photos := make([]Photo, 0, len(objects))
	for _, obj := range objects {
		key := *obj.Key
		if isThumbKey(key) {
			continue
		}
		photo, err := s.presignPhoto(ctx, key, thumbKeyFor(key))
		if err != nil {
			return nil, err
		}
		photos = append(photos, *photo)
	}
	return photos, nil
}

func (s *Service) DeletePrinterPhoto(ctx context.Context, printerID uuid.UUID, key string) error {
	prefix := fmt.Sprintf("%s/%s/", photoPrefix, printerID)
	if !strings.HasPrefix(key, prefix) {
		return fmt.Errorf("key %q does not belong to printer %s", key, printerID)
	}
	if err := s.s3.DeleteObject(ctx, key); err != nil {
		return err
	}
	return s.s3.DeleteObject(ctx, thumbKeyFor(key))
}

func (s *Service) presignPhoto(ctx context.Context, key, thumbKey string) (*Photo, error) {
	url, err := s.s3.GeneratePresignedURL(ctx, "GET", key, presignExpiry)
	if err != nil {
		return nil, err
	}
	thumbURL, err := s.s3.GeneratePresignedURL(ctx, "GET", thumbKey, presignExpiry)
	if err != nil {
		return nil, err
	}
	return &Photo{Key: key, URL: url, ThumbnailURL: thumbURL}, nil
}

func thumbKeyFor(key string) string {
	ext := path.Ext(key)
	return strings.TrimSuffix(key, ext) + thumbSuffix + ext
}

func isThumbKey(key string) bool {
	ext := path.Ext(key)
	return strings.HasSuffix(strings.TrimSuffix(key, ext), thumbSuffix)
}
