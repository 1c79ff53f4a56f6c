package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Leewodls/ko-analysis/internal/config"
	"github.com/Leewodls/ko-analysis/internal/services"
)

const (
	// DefaultRegion is used when the configuration leaves the region blank.
	DefaultRegion = "ap-northeast-2"

	defaultRequestTimeout = 60 * time.Second
)

// objectGetter is the subset of the AWS S3 API the client depends on.
type objectGetter interface {
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
}

// Client downloads interview recordings from S3-compatible storage.
type Client struct {
	api            objectGetter
	bucket         string
	requestTimeout time.Duration
}

// NewClient builds a client from the storage configuration. Static
// credentials take precedence when both key fields are set, otherwise the
// default AWS credential chain applies.
func NewClient(ctx context.Context, cfg config.S3) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, services.Wrap(services.ErrConfiguration, "fetch", "client", "s3 bucket is required", nil)
	}
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "fetch", "client", "load aws configuration", err)
	}

	api := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	timeout := defaultRequestTimeout
	if cfg.RequestTimeout > 0 {
		timeout = time.Duration(cfg.RequestTimeout) * time.Second
	}
	return &Client{api: api, bucket: cfg.Bucket, requestTimeout: timeout}, nil
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

// Download fetches an object into destDir and returns the local file path.
// objectKey may be a bare key or a full s3:// URL; URLs may address a bucket
// other than the configured one.
func (c *Client) Download(ctx context.Context, objectKey, destDir string) (string, error) {
	bucket := c.bucket
	key := objectKey
	if parsedBucket, parsedKey, err := ParseURL(objectKey); err == nil {
		bucket = parsedBucket
		key = parsedKey
	}
	if key == "" {
		return "", services.Wrap(services.ErrValidation, "fetch", "download", "object key is required", nil)
	}
	if destDir == "" {
		return "", services.Wrap(services.ErrValidation, "fetch", "download", "destination directory is required", nil)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrTransient, "fetch", "download", "ensure destination directory", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	out, err := c.api.GetObject(reqCtx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", classifyGetError(bucket, key, err)
	}
	defer out.Body.Close()

	localPath := filepath.Join(destDir, path.Base(key))
	file, err := os.Create(localPath)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "fetch", "download", "create local file", err)
	}
	if _, err := io.Copy(file, out.Body); err != nil {
		file.Close()
		os.Remove(localPath)
		return "", services.Wrap(services.ErrTransient, "fetch", "download", "copy object body", err)
	}
	if err := file.Close(); err != nil {
		return "", services.Wrap(services.ErrTransient, "fetch", "download", "close local file", err)
	}
	return localPath, nil
}

func classifyGetError(bucket, key string, err error) error {
	detail := fmt.Sprintf("get s3://%s/%s", bucket, key)
	var noSuchKey *types.NoSuchKey
	var noSuchBucket *types.NoSuchBucket
	switch {
	case errors.As(err, &noSuchKey), errors.As(err, &noSuchBucket):
		return services.Wrap(services.ErrNotFound, "fetch", "download", detail, err)
	case errors.Is(err, context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, "fetch", "download", detail, err)
	default:
		return services.Wrap(services.ErrTransient, "fetch", "download", detail, err)
	}
}
