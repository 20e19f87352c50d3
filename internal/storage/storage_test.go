package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		f.body, _ = io.ReadAll(params.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestThumbnail(t *testing.T) {
	t.Run("Shrinks Large Image", func(t *testing.T) {
		data, err := Thumbnail(bytes.NewReader(pngImage(t, 800, 400)), 200)
		require.NoError(t, err)

		img, err := imaging.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 200, img.Bounds().Dx())
		assert.Equal(t, 100, img.Bounds().Dy())
	})

	t.Run("Keeps Small Image", func(t *testing.T) {
		data, err := Thumbnail(bytes.NewReader(pngImage(t, 60, 40)), 200)
		require.NoError(t, err)

		img, err := imaging.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 60, img.Bounds().Dx())
	})

	t.Run("Rejects Non Image", func(t *testing.T) {
		_, err := Thumbnail(strings.NewReader("not an image"), 200)
		assert.True(t, errors.Is(err, ErrInvalidImage))
	})
}

func TestPhotoStore_UploadMemberPhoto(t *testing.T) {
	memberID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		putter := &fakePutter{}
		store := NewPhotoStore(putter, "gym-photos", "https://cdn.example.com/", 128, nil)

		url, err := store.UploadMemberPhoto(context.Background(), memberID, bytes.NewReader(pngImage(t, 300, 300)))
		require.NoError(t, err)

		require.NotNil(t, putter.input)
		key := aws.ToString(putter.input.Key)
		assert.True(t, strings.HasPrefix(key, "members/"+memberID.String()+"/"))
		assert.True(t, strings.HasSuffix(key, ".jpg"))
		assert.Equal(t, "gym-photos", aws.ToString(putter.input.Bucket))
		assert.Equal(t, "image/jpeg", aws.ToString(putter.input.ContentType))
		assert.Equal(t, "https://cdn.example.com/"+key, url)

		img, err := imaging.Decode(bytes.NewReader(putter.body))
		require.NoError(t, err)
		assert.Equal(t, 128, img.Bounds().Dx())
	})

	t.Run("Invalid Image Is Not Uploaded", func(t *testing.T) {
		putter := &fakePutter{}
		store := NewPhotoStore(putter, "gym-photos", "https://cdn.example.com", 128, nil)

		_, err := store.UploadMemberPhoto(context.Background(), memberID, strings.NewReader("garbage"))
		assert.ErrorIs(t, err, ErrInvalidImage)
		assert.Nil(t, putter.input)
	})

	t.Run("Upload Failure", func(t *testing.T) {
		putter := &fakePutter{err: errors.New("access denied")}
		store := NewPhotoStore(putter, "gym-photos", "https://cdn.example.com", 128, nil)

		_, err := store.UploadMemberPhoto(context.Background(), memberID, bytes.NewReader(pngImage(t, 50, 50)))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to upload photo")
	})
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com",
		publicBaseURL(config.StorageConfig{PublicBaseURL: "https://cdn.example.com", Bucket: "b"}))
	assert.Equal(t, "http://minio:9000/photos",
		publicBaseURL(config.StorageConfig{Endpoint: "http://minio:9000/", Bucket: "photos"}))
	assert.Equal(t, "https://photos.s3.eu-west-1.amazonaws.com",
		publicBaseURL(config.StorageConfig{Bucket: "photos", Region: "eu-west-1"}))
}
