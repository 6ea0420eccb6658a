package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"edu-resources/internal/config"
	domain "edu-resources/internal/domain/resource"
	"edu-resources/internal/infrastructure/metrics"
	"edu-resources/internal/infrastructure/observability"
)

var errStorageDisabled = errors.New("bucket storage is not configured; set BUCKET_* to enable uploads")

// S3Storage writes resources to an S3-compatible bucket and hands out
// presigned GET URLs.
type S3Storage struct {
	bucket         string
	keyPrefix      string
	publicEndpoint string
	presignTTL     time.Duration
	client         *s3.Client
	presigner      *s3.PresignClient
	log            zerolog.Logger
	disabled       bool
}

// NewS3Storage builds the bucket client. Missing bucket or credentials leave
// the backend disabled instead of failing start-up.
func NewS3Storage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*S3Storage, error) {
	logger := log.With().Str("component", "s3-storage").Logger()
	storage := &S3Storage{
		bucket:         strings.TrimSpace(cfg.BucketName),
		keyPrefix:      strings.Trim(cfg.BucketKeyPrefix, "/"),
		publicEndpoint: strings.TrimSpace(cfg.BucketPublicEndpoint),
		presignTTL:     cfg.BucketPresignTTL,
		log:            logger,
	}

	accessKey := strings.TrimSpace(cfg.BucketAccessKeyID)
	secretKey := strings.TrimSpace(cfg.BucketSecretKey)
	if storage.bucket == "" || accessKey == "" || secretKey == "" {
		logger.Warn().Msg("BUCKET_NAME or credentials are not set; uploads will fail until configured")
		storage.disabled = true
		return storage, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.BucketRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BucketEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BucketEndpoint)
		}
		o.UsePathStyle = cfg.BucketUsePathStyle
	})

	storage.client = client
	storage.presigner = s3.NewPresignClient(client)

	logger.Info().
		Str("bucket", storage.bucket).
		Str("endpoint", cfg.BucketEndpoint).
		Str("region", cfg.BucketRegion).
		Msg("bucket storage initialized")

	return storage, nil
}

func (s *S3Storage) ensureEnabled() error {
	if s.disabled {
		return errStorageDisabled
	}
	return nil
}

// Provider identifies the backend in registry records.
func (s *S3Storage) Provider() string {
	return domain.ProviderS3
}

func (s *S3Storage) objectKey(name string) string {
	if s.keyPrefix == "" {
		return name
	}
	return s.keyPrefix + "/" + name
}

// Put uploads body under the key prefix and returns the object key.
func (s *S3Storage) Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) (key string, err error) {
	key = s.objectKey(name)
	start := time.Now()
	ctx, span := observability.StartStorageSpan(ctx, s.Provider(), "put", key)
	defer func() {
		metrics.RecordStorageOperation(s.Provider(), "put", err, time.Since(start).Seconds())
		observability.RecordError(span, err)
		span.End()
	}()

	if err = s.ensureEnabled(); err != nil {
		return "", err
	}
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	}
	if _, err = s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	s.log.Debug().
		Str("key", key).
		Int64("bytes", size).
		Msg("object uploaded")

	return key, nil
}

// URL presigns a GET for key valid for the configured TTL.
func (s *S3Storage) URL(ctx context.Context, key string) (string, error) {
	return s.PresignGet(ctx, key, s.presignTTL)
}

// PresignGet presigns a GET for key valid for ttl.
func (s *S3Storage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := s.ensureEnabled(); err != nil {
		return "", err
	}
	start := time.Now()
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	metrics.RecordPresign(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return externalizeURL(req.URL, s.publicEndpoint), nil
}

// Open fetches object contents for proxying.
func (s *S3Storage) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if err := s.ensureEnabled(); err != nil {
		return nil, "", err
	}
	start := time.Now()
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	metrics.RecordStorageOperation(s.Provider(), "get", err, time.Since(start).Seconds())
	if err != nil {
		return nil, "", err
	}
	mime := ""
	if out.ContentType != nil {
		mime = *out.ContentType
	}
	return out.Body, mime, nil
}

// Delete removes key from the bucket.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if err := s.ensureEnabled(); err != nil {
		return err
	}
	start := time.Now()
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	metrics.RecordStorageOperation(s.Provider(), "delete", err, time.Since(start).Seconds())
	return err
}

// Health performs a HeadBucket request.
func (s *S3Storage) Health(ctx context.Context) error {
	if err := s.ensureEnabled(); err != nil {
		return err
	}
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}

// externalizeURL rewrites the scheme and host of a presigned URL to the
// public endpoint, keeping the signed path and query.
func externalizeURL(raw, publicEndpoint string) string {
	if publicEndpoint == "" || strings.TrimSpace(raw) == "" {
		return raw
	}

	target, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	external, err := url.Parse(publicEndpoint)
	if err != nil || external.Scheme == "" || external.Host == "" {
		return raw
	}

	target.Scheme = external.Scheme
	target.Host = external.Host

	if path := strings.TrimSpace(external.Path); path != "" && path != "/" {
		target.Path = joinPublicPath(path, target.Path)
		target.RawPath = ""
	}

	return target.String()
}

func joinPublicPath(basePath, objectPath string) string {
	base := strings.TrimSuffix(basePath, "/")
	if base == "" {
		return ensureLeadingSlash(objectPath)
	}

	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}

	relative := strings.TrimPrefix(objectPath, "/")
	if relative == "" {
		return base
	}
	return base + "/" + relative
}

func ensureLeadingSlash(path string) string {
	if path == "" {
		return "/"
	}
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}
