// Package image validates uploaded photos and prepares the renditions
// the media layer stores: the (possibly downscaled) original plus a
// square thumbnail for listings.
package image

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/disintegration/imaging"
)

const (
	MaxFileSize   = 10 * 1024 * 1024 // 10MB
	MaxDimension  = 2048
	ThumbnailSize = 300
)

type ProcessedImage struct {
	Original    []byte
	Thumbnail   []byte
	ContentType string
	Width       int
	Height      int
}

// ValidateAndProcess checks the upload is a jpeg or png under the size
// cap, downscales anything larger than MaxDimension on its long edge,
// and renders a center-cropped square thumbnail. Width and Height report
// the stored rendition, not the upload.
func ValidateAndProcess(file io.Reader, header *multipart.FileHeader) (*ProcessedImage, error) {
	if header.Size > MaxFileSize {
		return nil, fmt.Errorf("file size %d exceeds maximum %d bytes", header.Size, MaxFileSize)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	contentType := http.DetectContentType(data)
	if contentType != "image/jpeg" && contentType != "image/png" {
		return nil, fmt.Errorf("invalid file type %q: only jpeg and png are allowed", contentType)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > MaxDimension || h > MaxDimension {
		// Phone cameras routinely exceed the cap; scale down rather
		// than bounce the upload.
		img = imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)
		resized := img.Bounds()
		w, h = resized.Dx(), resized.Dy()

		var buf bytes.Buffer
		if err := encode(&buf, img, format); err != nil {
			return nil, fmt.Errorf("encode resized image: %w", err)
		}
		data = buf.Bytes()
	}

	thumb := imaging.Fill(img, ThumbnailSize, ThumbnailSize, imaging.Center, imaging.Lanczos)
	var thumbBuf bytes.Buffer
	if err := encode(&thumbBuf, thumb, format); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	return &ProcessedImage{
		Original:    data,
		Thumbnail:   thumbBuf.Bytes(),
		ContentType: contentType,
		Width:       w,
		Height:      h,
	}, nil
}

func encode(w io.Writer, img image.Image, format string) error {
	if format == "png" {
		return imaging.Encode(w, img, imaging.PNG)
	}
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(85))
}
