package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/quickpad-app/quickpad/internal/logging"
)

// Uploader ships a finished archive to remote storage.
type Uploader interface {
	Upload(ctx context.Context, path string) error
}

// S3Uploader uploads archives to an S3-compatible bucket. A non-empty base
// endpoint points it at MinIO or another self-hosted store.
type S3Uploader struct {
	accessKey    string
	secretKey    string
	bucket       string
	region       string
	baseEndpoint string
	logger       logging.Logger
}

func NewS3Uploader(cfg *Config, logger logging.Logger) *S3Uploader {
	return &S3Uploader{
		accessKey:    cfg.S3AccessKey,
		secretKey:    cfg.S3SecretKey,
		bucket:       cfg.S3Bucket,
		region:       cfg.S3Region,
		baseEndpoint: cfg.S3BaseEndpoint,
		logger:       logger.With("module", "s3_uploader"),
	}
}

func (u *S3Uploader) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(u.region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			u.accessKey,
			u.secretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if u.baseEndpoint != "" {
			o.BaseEndpoint = aws.String(u.baseEndpoint)
		}
	})

	return client, nil
}

func (u *S3Uploader) Upload(ctx context.Context, path string) error {
	client, err := u.client(ctx)
	if err != nil {
		return fmt.Errorf("building s3 client: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	key := filepath.Base(path)

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/zip"),
	})
	if err != nil {
		return fmt.Errorf("uploading archive: %w", err)
	}

	u.logger.Info(ctx, "archive uploaded", "bucket", u.bucket, "key", key)
	return nil
}
