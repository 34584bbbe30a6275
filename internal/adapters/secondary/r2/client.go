package r2

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"reimbursement-predictor/internal/core/domain"
	"reimbursement-predictor/internal/core/ports/output"
)

// R2 accepts any region string; "auto" is what Cloudflare documents.
const defaultRegion = "auto"

type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Namespace       string
	UsePathStyle    bool
	// MaxAttempts overrides the SDK retryer when > 0.
	MaxAttempts int
}

type client struct {
	s3        *s3.Client
	bucket    string
	namespace string
}

// NewClient creates an S3-compatible blob store backed by a Cloudflare R2 bucket.
func NewClient(cfg Config) (ports.BlobStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket name is required", domain.ErrBlobStoreNotAvailable)
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is required", domain.ErrBlobStoreNotAvailable)
	}

	opts := s3.Options{
		Region:       defaultRegion,
		BaseEndpoint: aws.String(cfg.Endpoint),
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
		UsePathStyle: cfg.UsePathStyle,
		// R2 rejects the SDK's default trailing checksums on uploads.
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
	}
	if cfg.MaxAttempts > 0 {
		opts.RetryMaxAttempts = cfg.MaxAttempts
	}

	return &client{
		s3:        s3.New(opts),
		bucket:    cfg.Bucket,
		namespace: cfg.Namespace,
	}, nil
}

func (c *client) objectKey(key string) string {
	if c.namespace == "" {
		return key
	}
	return path.Join(c.namespace, key)
}

func (c *client) Put(ctx context.Context, data []byte) (string, error) {
	id := uuid.New().String()
	if err := c.PutObject(ctx, id+domain.ArtifactSuffix, data); err != nil {
		return "", err
	}
	return id, nil
}

func (c *client) PutObject(ctx context.Context, key string, data []byte) error {
	objectKey := c.objectKey(key)
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("upload %s to r2: %w", objectKey, err)
	}

	log.WithFields(log.Fields{
		"bucket": c.bucket,
		"key":    objectKey,
		"bytes":  len(data),
	}).Debug("Uploaded object to R2")
	return nil
}

func (c *client) GetObject(ctx context.Context, key string) ([]byte, error) {
	objectKey := c.objectKey(key)
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s not found in bucket %s", domain.ErrBlobNotFound, objectKey, c.bucket)
		}
		return nil, fmt.Errorf("download %s from r2: %w", objectKey, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s body: %w", objectKey, err)
	}
	return data, nil
}

func (c *client) HeadObject(ctx context.Context, key string) (bool, error) {
	_, err := c.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.objectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("head %s: %w", c.objectKey(key), err)
	}
	return true, nil
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}
