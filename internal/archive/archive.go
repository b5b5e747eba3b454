// Package archive copies rendered label artifacts to an S3 bucket.
//
// Archiving is optional. When disabled, New returns a no-op archiver so the
// session never branches on configuration. Keys have the form
// <prefix>/<YYYY-MM-DD>/<file name>.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"labelprint/internal/config"
	"labelprint/internal/logging"
)

// Archiver stores a copy of a rendered artifact.
type Archiver interface {
	Store(ctx context.Context, name string, data []byte, at time.Time) (string, error)
}

// PutObjectAPI is the subset of the S3 client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// New returns an S3 archiver when archiving is enabled, otherwise a no-op.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Archiver, error) {
	if cfg == nil || !cfg.Archive.Enabled {
		return Noop{}, nil
	}
	var opts []func(*awsconfig.LoadOptions) error
	if region := strings.TrimSpace(cfg.Archive.Region); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3(s3.NewFromConfig(awsCfg), cfg.Archive.Bucket, cfg.Archive.Prefix, logger), nil
}

// Noop discards every artifact.
type Noop struct{}

// Store implements Archiver.
func (Noop) Store(context.Context, string, []byte, time.Time) (string, error) { return "", nil }

// S3 uploads artifacts with PutObject.
type S3 struct {
	client PutObjectAPI
	bucket string
	prefix string
	logger *slog.Logger
}

// NewS3 constructs an S3 archiver around client.
func NewS3(client PutObjectAPI, bucket, prefix string, logger *slog.Logger) *S3 {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &S3{
		client: client,
		bucket: strings.TrimSpace(bucket),
		prefix: strings.Trim(strings.TrimSpace(prefix), "/"),
		logger: logging.NewComponentLogger(logger, "archive"),
	}
}

// Key returns the object key used for name at time at.
func (a *S3) Key(name string, at time.Time) string {
	parts := []string{at.UTC().Format("2006-01-02"), filepath.Base(name)}
	if a.prefix != "" {
		parts = append([]string{a.prefix}, parts...)
	}
	return path.Join(parts...)
}

// Store uploads data and returns the s3:// URI of the object.
func (a *S3) Store(ctx context.Context, name string, data []byte, at time.Time) (string, error) {
	key := a.Key(name, at)
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", a.bucket, key, err)
	}
	uri := fmt.Sprintf("s3://%s/%s", a.bucket, key)
	a.logger.Debug("label archived",
		logging.String(logging.FieldEventType, "label_archived"),
		logging.String("uri", uri),
		logging.Int("bytes", len(data)))
	return uri, nil
}
