package image_test

import (
	"bytes"
	stdimage "image"
	"image/color"
	imgdraw "image/draw"
	"image/jpeg"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdimage "github.com/printdesk/pd-backend/internal/image"
)

func makeJPEG(t *testing.T, w, h int) ([]byte, *multipart.FileHeader) {
	t.Helper()
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, w, h))
	imgdraw.Draw(img, img.Bounds(), &stdimage.Uniform{color.RGBA{R: 255, A: 255}}, stdimage.Point{}, imgdraw.Src)
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes(), &multipart.FileHeader{Size: int64(buf.Len())}
}

func TestValidateAndProcess_AcceptsJPEG(t *testing.T) {
	data, header := makeJPEG(t, 500, 500)
	result, err := pdimage.ValidateAndProcess(bytes.NewReader(data), header)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", result.ContentType)
	assert.Equal(t, 500, result.Width)
	assert.Equal(t, 500, result.Height)
	assert.NotEmpty(t, result.Original)
	assert.NotEmpty(t, result.Thumbnail)
}

func TestValidateAndProcess_KeepsAspectRatio(t *testing.T) {
	data, header := makeJPEG(t, 800, 400)
	result, err := pdimage.ValidateAndProcess(bytes.NewReader(data), header)
	require.NoError(t, err)
	assert.Equal(t, 800, result.Width)
	assert.Equal(t, 400, result.Height)
}

func TestValidateAndProcess_RejectsOversizedFile(t *testing.T) {
	data, _ := makeJPEG(t, 100, 100)
	header := &multipart.FileHeader{Size: 11 * 1024 * 1024}
	_, err := pdimage.ValidateAndProcess(bytes.NewReader(data), header)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file size")
}

func TestValidateAndProcess_DownscalesLargePhotos(t *testing.T) {
	data, header := makeJPEG(t, 4000, 3000)
	result, err := pdimage.ValidateAndProcess(bytes.NewReader(data), header)
	require.NoError(t, err)

	assert.Equal(t, pdimage.MaxDimension, result.Width)
	assert.Equal(t, 1536, result.Height)

	img, _, err := stdimage.Decode(bytes.NewReader(result.Original))
	require.NoError(t, err)
	assert.Equal(t, pdimage.MaxDimension, img.Bounds().Dx())
}

func TestValidateAndProcess_RejectsNonImage(t *testing.T) {
	data := []byte("%PDF-1.7 definitely not a photo")
	header := &multipart.FileHeader{Size: int64(len(data))}
	_, err := pdimage.ValidateAndProcess(bytes.NewReader(data), header)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid file type")
}

func TestValidateAndProcess_ThumbnailIsSquare(t *testing.T) {
	data, header := makeJPEG(t, 800, 400)
	result, err := pdimage.ValidateAndProcess(bytes.NewReader(data), header)
	require.NoError(t, err)

	img, _, err := stdimage.Decode(bytes.NewReader(result.Thumbnail))
	require.NoError(t, err)
	assert.Equal(t, pdimage.ThumbnailSize, img.Bounds().Dx())
	assert.Equal(t, pdimage.ThumbnailSize, img.Bounds().Dy())
}
