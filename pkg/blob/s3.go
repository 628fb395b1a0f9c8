// Package blob stores binary objects in S3 or any S3-compatible service and
// serves them back through public URLs.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Client is the slice of the S3 API the storage uses. Narrowed to an
// interface so tests can substitute a mock.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Config contains S3 storage configuration.
type Config struct {
	Bucket         string `env:"S3_BUCKET,required"`
	Region         string `env:"S3_REGION,required"`
	AccessKeyID    string `env:"S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"S3_SECRET_KEY"`
	Endpoint       string `env:"S3_ENDPOINT"`         // for S3-compatible services
	BaseURL        string `env:"S3_BASE_URL"`         // public URL base for serving objects
	ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE"` // for services like MinIO
}

// Storage is an S3-backed object store. Safe for concurrent use.
type Storage struct {
	client        S3Client
	bucket        string
	baseURL       string
	uploadTimeout time.Duration
}

// Option configures optional Storage settings.
type Option func(*Storage)

// WithClient sets a pre-configured S3 client, bypassing AWS config loading.
func WithClient(client S3Client) Option {
	return func(s *Storage) { s.client = client }
}

// WithUploadTimeout bounds each upload; zero leaves the caller's context
// deadline in charge.
func WithUploadTimeout(timeout time.Duration) Option {
	return func(s *Storage) { s.uploadTimeout = timeout }
}

// New creates an S3 storage instance.
func New(ctx context.Context, cfg Config, opts ...Option) (*Storage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrInvalidConfig
	}

	storage := &Storage{
		bucket:  cfg.Bucket,
		baseURL: publicBaseURL(cfg),
	}
	for _, opt := range opts {
		opt(storage)
	}

	if storage.client == nil {
		awsOptions := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions,
				awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID, cfg.SecretKey, "",
				)),
			)
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
		}

		storage.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			o.UsePathStyle = cfg.ForcePathStyle
		})
	}

	return storage, nil
}

func publicBaseURL(cfg Config) string {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.Endpoint != "" {
			baseURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.Endpoint, "/"), cfg.Bucket)
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return strings.TrimSuffix(baseURL, "/") + "/"
}

// Put uploads an object and returns its public URL.
func (s *Storage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if s.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.uploadTimeout)
		defer cancel()
	}

	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", classifyError(err, "upload object")
	}

	return s.URL(key), nil
}

// Delete removes an object. Deleting a missing object is not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return classifyError(err, "delete object")
	}
	return nil
}

// Exists reports whether an object is present.
func (s *Storage) Exists(ctx context.Context, key string) bool {
	key, err := cleanKey(key)
	if err != nil {
		return false
	}
	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err == nil
}

// URL returns the public URL for a key.
func (s *Storage) URL(key string) string {
	return s.baseURL + strings.TrimPrefix(key, "/")
}

func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return key, nil
}

// classifyError converts S3 errors to package sentinels.
func classifyError(err error, operation string) error {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%w: %w", ErrObjectNotFound, err)
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return ErrBucketNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied":
			return fmt.Errorf("%w: %s", ErrAccessDenied, operation)
		case "NoSuchKey":
			return fmt.Errorf("%w: %w", ErrObjectNotFound, err)
		case "NoSuchBucket":
			return ErrBucketNotFound
		}
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}
