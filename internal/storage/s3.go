package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/hotelstock/hotel-stock-api/internal/config"
)

const presignTTL = 15 * time.Minute

// S3PhotoStore keeps hotel photos in an S3-compatible bucket and hands
// out opaque storage keys.
type S3PhotoStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

func NewS3PhotoStore(ctx context.Context, cfg config.S3Config) (*S3PhotoStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			// MinIO-compatible stores use a custom endpoint.
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3PhotoStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

// Upload stores the photo under a fresh dated key and returns the key.
func (s *S3PhotoStore) Upload(ctx context.Context, body io.Reader, contentType string) (string, error) {
	key := newPhotoKey()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        body,
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	return key, nil
}

// URL returns a presigned GET URL for the stored photo.
func (s *S3PhotoStore) URL(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign photo URL: %w", err)
	}

	return req.URL, nil
}

// Delete removes the stored photo.
func (s *S3PhotoStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	return nil
}

func newPhotoKey() string {
	d := time.Now()
	return fmt.Sprintf("hotels/%d/%02d/%02d/%s", d.Year(), d.Month(), d.Day(), uuid.New())
}
