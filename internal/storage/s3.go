package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/xerrors"
)

type s3Storage struct {
	client *s3.Client
	config S3Config
}

type S3Config struct {
	Bucket string
	// EndpointURL points the client at an S3 compatible service such as MinIO.
	// S3_ENDPOINT_URL is used when empty.
	EndpointURL string
}

func NewS3Storage(ctx context.Context, s S3Config) (Storage, error) {
	if s.Bucket == "" {
		return nil, xerrors.New("S3 bucket is not specified")
	}
	if s.EndpointURL == "" {
		s.EndpointURL = os.Getenv("S3_ENDPOINT_URL")
	}

	c, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, xerrors.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(c, func(o *s3.Options) {
		if s.EndpointURL != "" {
			o.BaseEndpoint = aws.String(s.EndpointURL)
		}
		o.UsePathStyle = true
	})

	return &s3Storage{
		client: client,
		config: s,
	}, nil
}

func (s *s3Storage) Put(ctx context.Context, key string, data []byte) (string, error) {
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(http.DetectContentType(data)),
	}); err != nil {
		return "", xerrors.Errorf("failed to upload s3://%s/%s: %w", s.config.Bucket, key, err)
	}

	return fmt.Sprintf("s3://%s/%s", s.config.Bucket, key), nil
}

// Get accepts s3://bucket/key URLs for any bucket, or a bare key in the configured bucket.
func (s *s3Storage) Get(ctx context.Context, url string) ([]byte, error) {
	bucket, key := s.config.Bucket, url
	if rest, ok := strings.CutPrefix(url, "s3://"); ok {
		b, k, found := strings.Cut(rest, "/")
		if !found || k == "" {
			return nil, xerrors.Errorf("invalid S3 URL %q", url)
		}
		bucket, key = b, k
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to download s3://%s/%s: %w", bucket, key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, xerrors.Errorf("failed to read S3 object: %w", err)
	}

	return data, nil
}
