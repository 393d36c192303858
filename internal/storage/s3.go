// Package storage persists uploaded images, remotely on S3 and locally on disk.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"relief-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const (
	imageContentType   = "image/jpeg"
	contentDisposition = "inline"
)

// putObjectAPI is the subset of the S3 client used for uploads
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader uploads images to a bucket and returns their public URL
type S3Uploader struct {
	client  putObjectAPI
	bucket  string
	baseURL string
}

// NewS3Uploader builds the S3 client once from configuration. Static
// credentials are used when both keys are set, otherwise the default AWS
// credential chain applies.
func NewS3Uploader(ctx context.Context, cfg config.AWSConfig) (*S3Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Uploader(client, cfg.S3Bucket, cfg.PublicBaseURL), nil
}

func newS3Uploader(client putObjectAPI, bucket, publicBaseURL string) *S3Uploader {
	baseURL := strings.TrimRight(publicBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}
	return &S3Uploader{client: client, bucket: bucket, baseURL: baseURL}
}

// Upload stores data under key and returns the object's public URL.
// There is no retry: any error is final for the calling request.
func (u *S3Uploader) Upload(ctx context.Context, data []byte, key string) (string, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(u.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(data),
		ContentType:        aws.String(imageContentType),
		ContentDisposition: aws.String(contentDisposition),
	})
	if err != nil {
		log.Error().Err(err).Str("bucket", u.bucket).Str("key", key).Msg("Failed to upload image")
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return u.baseURL + "/" + key, nil
}
