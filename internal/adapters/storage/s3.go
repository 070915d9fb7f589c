package storage

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"eventplatform/internal/domain"
)

// Accepted image content types for event uploads.
var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// MaxImageSize caps event image uploads at 10 MiB.
const MaxImageSize = 10 << 20

// S3Config holds configuration for the S3 image store.
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// PublicBaseURL overrides the default https://<bucket>.s3.<region>.amazonaws.com
	// prefix for the stored object's public URL (e.g. a CDN host).
	PublicBaseURL string
	KeyPrefix     string
}

// StoreConfig holds configuration for creating an image store.
type StoreConfig struct {
	Provider string
	S3       S3Config
}

// NewImageStore creates an image store from config. Provider "s3" uses AWS S3;
// "noop" or unknown disables image storage (uploads are rejected).
func NewImageStore(config StoreConfig) (domain.ImageStore, error) {
	switch config.Provider {
	case "s3":
		s3Config := config.S3
		if s3Config.Bucket == "" {
			return nil, fmt.Errorf("s3 image store requires a bucket")
		}
		awsCfg := aws.Config{
			Region: s3Config.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					s3Config.AccessKeyID,
					s3Config.SecretAccessKey,
					"",
				),
			),
		}
		baseURL := s3Config.PublicBaseURL
		if baseURL == "" {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s3Config.Bucket, s3Config.Region)
		}
		prefix := s3Config.KeyPrefix
		if prefix == "" {
			prefix = "events"
		}
		return &s3Store{
			client:  s3.NewFromConfig(awsCfg),
			bucket:  s3Config.Bucket,
			baseURL: strings.TrimSuffix(baseURL, "/"),
			prefix:  prefix,
		}, nil
	case "noop":
		return &noopStore{}, nil
	default:
		log.Printf("[STORAGE] Unknown storage provider %q, image uploads disabled", config.Provider)
		return &noopStore{}, nil
	}
}

type s3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
	prefix  string
}

func (s *s3Store) Upload(ctx context.Context, upload *domain.ImageUpload) (*domain.EventImage, error) {
	ext, ok := allowedContentTypes[upload.ContentType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported image type %q", domain.ErrInvalidInput, upload.ContentType)
	}
	if upload.Size > MaxImageSize {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrInvalidInput, MaxImageSize)
	}

	key := path.Join(s.prefix, uuid.NewString()+ext)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          upload.Data,
		ContentType:   aws.String(upload.ContentType),
		ContentLength: aws.Int64(upload.Size),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload image to S3: %w", err)
	}
	return &domain.EventImage{
		URL: s.baseURL + "/" + key,
		Key: key,
	}, nil
}

func (s *s3Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image from S3: %w", err)
	}
	return nil
}

type noopStore struct{}

func (n *noopStore) Upload(ctx context.Context, upload *domain.ImageUpload) (*domain.EventImage, error) {
	return nil, fmt.Errorf("%w: image storage is not configured", domain.ErrInvalidInput)
}

func (n *noopStore) Delete(ctx context.Context, key string) error {
	return nil
}
