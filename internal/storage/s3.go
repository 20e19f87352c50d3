package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/config"
	"github.com/sirupsen/logrus"
)

// ObjectPutter is the subset of the S3 client used for uploads
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// PhotoStore keeps member photos in an S3-compatible bucket
type PhotoStore struct {
	client  ObjectPutter
	bucket  string
	baseURL string
	maxDim  int
	logger  *logrus.Logger
}

// NewPhotoStore creates a photo store on top of an existing client.
// Stored objects are served from baseURL + "/" + key.
func NewPhotoStore(client ObjectPutter, bucket, baseURL string, maxDim int, logger *logrus.Logger) *PhotoStore {
	if maxDim <= 0 {
		maxDim = DefaultPhotoMaxDimension
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PhotoStore{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxDim:  maxDim,
		logger:  logger,
	}
}

// NewS3PhotoStore builds an S3 client from cfg. A custom endpoint (MinIO, R2, Spaces)
// switches the client to path-style addressing.
func NewS3PhotoStore(ctx context.Context, cfg config.StorageConfig, logger *logrus.Logger) (*PhotoStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewPhotoStore(client, cfg.Bucket, publicBaseURL(cfg), cfg.PhotoMaxSize, logger), nil
}

func publicBaseURL(cfg config.StorageConfig) string {
	switch {
	case cfg.PublicBaseURL != "":
		return cfg.PublicBaseURL
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

// UploadMemberPhoto resizes the image read from r and stores it under a fresh key.
// It returns the public URL of the stored object.
func (s *PhotoStore) UploadMemberPhoto(ctx context.Context, memberID uuid.UUID, r io.Reader) (string, error) {
	data, err := Thumbnail(r, s.maxDim)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("members/%s/%s.jpg", memberID, uuid.NewString())
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("image/jpeg"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"bucket": s.bucket,
			"key":    key,
		}).WithError(err).Error("Failed to upload member photo")
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"member_id": memberID,
		"key":       key,
		"bytes":     len(data),
	}).Info("Member photo stored")

	return s.baseURL + "/" + key, nil
}
