// Package s3 stores book covers in an S3-compatible bucket (Cloudflare R2 in
// production). Clients upload and download through presigned URLs, so cover
// bytes never pass through the API.
package s3

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrDisabled is returned by NewFromEnv when no bucket is configured.
var ErrDisabled = errors.New("s3: AWS_BUCKET not set")

const presignTTL = 15 * time.Minute

type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

func ConfigFromEnv() Config {
	return Config{
		Endpoint:        os.Getenv("AWS_ENDPOINT"),
		Region:          envOr("AWS_REGION", "auto"),
		Bucket:          os.Getenv("AWS_BUCKET"),
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		PathStyle:       os.Getenv("AWS_PATH_STYLE") == "1",
	}
}

type CoverStore struct {
	Client    *s3.Client
	Presigner *s3.PresignClient
	Bucket    string
}

// Upload is a presigned PUT the client performs itself.
type Upload struct {
	URL       string            `json:"uploadUrl"`
	Key       string            `json:"key"`
	Method    string            `json:"method"`
	ExpiresIn time.Duration     `json:"-"`
	Headers   map[string]string `json:"headers"`
}

// NewFromEnv builds a CoverStore from AWS_* variables.
func NewFromEnv(ctx context.Context) (*CoverStore, error) {
	cfg := ConfigFromEnv()
	if cfg.Bucket == "" {
		return nil, ErrDisabled
	}
	return New(ctx, cfg)
}

func New(ctx context.Context, c Config) (*CoverStore, error) {
	creds := credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, "")
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
		o.UsePathStyle = c.PathStyle
	})

	return &CoverStore{
		Client:    client,
		Presigner: s3.NewPresignClient(client),
		Bucket:    c.Bucket,
	}, nil
}

// PresignUpload reserves a fresh key under the book's cover prefix and
// returns a PUT URL for it.
func (s *CoverStore) PresignUpload(ctx context.Context, bookID, contentType string) (Upload, error) {
	key, err := NewCoverKey(bookID, contentType)
	if err != nil {
		return Upload{}, err
	}
	req, err := s.Presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = presignTTL
	})
	if err != nil {
		return Upload{}, fmt.Errorf("failed to presign upload: %w", err)
	}
	return Upload{
		URL:       req.URL,
		Key:       key,
		Method:    req.Method,
		ExpiresIn: presignTTL,
		Headers:   map[string]string{"Content-Type": contentType},
	}, nil
}

// PresignDownload returns a GET URL for key.
func (s *CoverStore) PresignDownload(ctx context.Context, key string) (string, error) {
	req, err := s.Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = presignTTL
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}
	return req.URL, nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
