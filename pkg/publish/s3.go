package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/Ryan-Ardito/raytracer/pkg/config"
	"github.com/Ryan-Ardito/raytracer/pkg/core"
)

// ErrNotConfigured is returned when uploads are requested without S3 settings
var ErrNotConfigured = errors.New("S3 publishing is not configured")

// Publisher stores encoded renders and returns where they can be fetched
type Publisher interface {
	Upload(ctx context.Context, data []byte, key, contentType string) (string, error)
}

// S3Publisher uploads renders to an S3-compatible bucket
type S3Publisher struct {
	client        s3iface.S3API
	bucket        string
	keyPrefix     string
	cdnURL        string
	uploadTimeout time.Duration
	logger        core.Logger
}

// NewS3Publisher creates a session from the S3 settings in cfg
func NewS3Publisher(cfg *config.Config, logger core.Logger) (*S3Publisher, error) {
	if !cfg.S3Enabled() {
		return nil, ErrNotConfigured
	}

	s3Config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Region:           aws.String(cfg.S3Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.S3Endpoint != "" {
		s3Config.Endpoint = aws.String(cfg.S3Endpoint)
	}

	sess, err := session.NewSession(s3Config)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return NewS3PublisherWithClient(s3.New(sess), cfg, logger), nil
}

// NewS3PublisherWithClient wraps an existing S3 client
func NewS3PublisherWithClient(client s3iface.S3API, cfg *config.Config, logger core.Logger) *S3Publisher {
	if logger == nil {
		logger = core.NopLogger{}
	}
	timeout := cfg.UploadTimeout
	if timeout <= 0 {
		timeout = config.DefaultUploadTimeout
	}
	return &S3Publisher{
		client:        client,
		bucket:        cfg.S3Bucket,
		keyPrefix:     cfg.S3KeyPrefix,
		cdnURL:        strings.TrimSuffix(cfg.CDNURL, "/"),
		uploadTimeout: timeout,
		logger:        logger,
	}
}

// ObjectKey builds the bucket key for a render: "<prefix>/<scene>-<seed><ext>"
func (p *S3Publisher) ObjectKey(sceneName string, seed int64, extension string) string {
	return path.Join(p.keyPrefix, fmt.Sprintf("%s-%d%s", sceneName, seed, extension))
}

// URL returns the public address of key, through the CDN when one is configured
func (p *S3Publisher) URL(key string) string {
	if p.cdnURL != "" {
		return p.cdnURL + "/" + key
	}
	return fmt.Sprintf("s3://%s/%s", p.bucket, key)
}

// Upload stores data under key with a public-read ACL and returns its URL
func (p *S3Publisher) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.uploadTimeout)
	defer cancel()

	size := int64(len(data))
	_, err := p.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	p.logger.Printf("Uploaded %s to S3 (%d bytes)\n", key, size)
	return p.URL(key), nil
}
