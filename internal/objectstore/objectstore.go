// Package objectstore mirrors end-of-day archive bundles to an off-site
// S3-compatible bucket once the local archive write has landed, the
// off-site backup leg of the EndDay pipeline.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Config names the bucket and, for MinIO/LocalStack, the endpoint override.
type Config struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// Store uploads and retrieves archive bundles from an S3-compatible backend.
type Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

// New connects a Store and ensures its bucket exists.
func New(ctx context.Context, cfg Config) (*Store, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	store := &Store{client: client, presigner: s3.NewPresignClient(client), bucket: cfg.Bucket}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("check archive bucket (may be permission denied): %w", err)
	}

	if _, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("create archive bucket: %w", err)
	}
	return nil
}

// archiveKey lays bundles out by business date so a restore can list a
// single day without paging the whole bucket.
func archiveKey(businessDate, archiveID string) string {
	return fmt.Sprintf("archives/%s/%s.tar.gz", businessDate, archiveID)
}

// UploadArchive mirrors one archive bundle off-site, returning its key.
func (s *Store) UploadArchive(ctx context.Context, businessDate, archiveID string, data io.Reader, size int64) (string, error) {
	var body io.Reader = data
	if size < 0 {
		buf, err := io.ReadAll(data)
		if err != nil {
			return "", fmt.Errorf("read archive bundle: %w", err)
		}
		size = int64(len(buf))
		body = bytes.NewReader(buf)
	}

	key := archiveKey(businessDate, archiveID)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String("application/gzip"),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("upload archive %s: %w", archiveID, err)
	}
	return key, nil
}

// DownloadArchive fetches a previously uploaded bundle for restore.
func (s *Store) DownloadArchive(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		return nil, fmt.Errorf("download archive %s: %w", key, err)
	}
	return out.Body, nil
}

// PresignedRestoreURL generates a temporary GET URL a manager can hand to
// support staff without sharing bucket credentials.
func (s *Store) PresignedRestoreURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign restore url for %s: %w", key, err)
	}
	return req.URL, nil
}
