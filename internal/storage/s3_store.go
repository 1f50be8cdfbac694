// Package storage uploads catalog media to an S3-compatible bucket (Tencent COS).
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config selects the bucket and how public URLs are built.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicDomain    string
}

// ObjectPutter is the subset of the S3 client the store needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3MediaStore writes objects and returns their public URL.
type S3MediaStore struct {
	client ObjectPutter
	bucket string
	region string
	domain string
}

// NewS3MediaStore builds an S3 client for the COS endpoint of cfg.Region unless cfg.Endpoint overrides it.
func NewS3MediaStore(ctx context.Context, cfg Config) (*S3MediaStore, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://cos.%s.myqcloud.com", cfg.Region)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	return NewS3MediaStoreWithClient(client, cfg), nil
}

// NewS3MediaStoreWithClient wraps an existing client.
func NewS3MediaStoreWithClient(client ObjectPutter, cfg Config) *S3MediaStore {
	return &S3MediaStore{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		domain: strings.TrimRight(cfg.PublicDomain, "/"),
	}
}

// Put uploads body under key and returns the object's public URL.
func (s *S3MediaStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return s.PublicURL(key), nil
}

// PublicURL returns the custom-domain URL when configured, else the default COS URL.
func (s *S3MediaStore) PublicURL(key string) string {
	if s.domain != "" {
		return s.domain + "/" + key
	}
	return fmt.Sprintf("https://%s.cos.%s.myqcloud.com/%s", s.bucket, s.region, key)
}
