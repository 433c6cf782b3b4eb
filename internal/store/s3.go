package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"complib/internal/config"
	"complib/internal/library"
)

// s3API is the subset of *s3.Client used by S3Store.
type s3API interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Store keeps each key as the object <prefix><key>.json in a bucket.
type S3Store struct {
	client   s3API
	uploader *manager.Uploader
	bucket   string
	prefix   string
	ctx      context.Context
}

var _ library.Store = (*S3Store)(nil)

// NewS3Store creates a store using client.
func NewS3Store(client s3API, bucket, prefix string) *S3Store {
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
		ctx:      context.Background(),
	}
}

// NewS3StoreFromConfig loads AWS configuration (static credentials when
// given, the default chain otherwise) and creates an S3Store.
func NewS3StoreFromConfig(ctx context.Context, cfg config.StoreConfig) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3Store(client, cfg.S3Bucket, cfg.S3Prefix), nil
}

func (s *S3Store) objectKey(key string) string {
	return s.prefix + key + ".json"
}

func (s *S3Store) Get(key string) ([]byte, error) {
	out, err := s.client.GetObject(s.ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting s3://%s/%s: %w", s.bucket, s.objectKey(key), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading s3://%s/%s: %w", s.bucket, s.objectKey(key), err)
	}
	return data, nil
}

func (s *S3Store) Put(key string, value []byte) error {
	_, err := s.uploader.Upload(s.ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(value),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("uploading s3://%s/%s: %w", s.bucket, s.objectKey(key), err)
	}
	return nil
}

func (s *S3Store) Delete(key string) error {
	_, err := s.client.DeleteObject(s.ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("deleting s3://%s/%s: %w", s.bucket, s.objectKey(key), err)
	}
	return nil
}

// ValidateSetup checks that the bucket exists and is reachable.
func (s *S3Store) ValidateSetup() error {
	if _, err := s.client.HeadBucket(s.ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", s.bucket, err)
	}
	return nil
}

func (s *S3Store) Close() error { return nil }
