// Package snapshot uploads encrypted copies of the catalogs to S3-compatible
// storage after each successful sync.
package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds uploader configuration. Prefix is prepended to object keys.
type Config struct {
	S3         S3Config
	Passphrase string
	Prefix     string
}

// Uploader writes encrypted snapshots. A zero-value or unconfigured Uploader
// is disabled and every Upload is a no-op.
type Uploader struct {
	cfg    Config
	client s3Client
	logger *slog.Logger
	now    func() time.Time
}

func NewUploader(cfg Config, logger *slog.Logger) *Uploader {
	u := &Uploader{
		cfg:    cfg,
		logger: logger.With("component", "snapshot"),
		now:    time.Now,
	}
	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" && cfg.Passphrase != "" {
		u.client = newS3Client(cfg.S3)
	}
	return u
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether storage credentials and a passphrase are set.
func (u *Uploader) Enabled() bool {
	return u != nil && u.client != nil
}

// Upload encrypts data and stores it as <prefix>/<name>/<timestamp>.json.enc.
// It returns the object key, or "" when the uploader is disabled.
func (u *Uploader) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if !u.Enabled() {
		return "", nil
	}

	enc, err := Encrypt(data, u.cfg.Passphrase)
	if err != nil {
		return "", fmt.Errorf("encrypt snapshot: %w", err)
	}

	key := ObjectKey(u.cfg.Prefix, name, u.now())
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.S3.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(enc),
		ContentLength: aws.Int64(int64(len(enc))),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}

	u.logger.Info("snapshot uploaded", "key", key, "bytes", len(enc))
	return key, nil
}

// ObjectKey builds the storage key for a snapshot taken at t.
func ObjectKey(prefix, name string, t time.Time) string {
	file := fmt.Sprintf("%s.json.enc", t.UTC().Format("2006-01-02T150405Z"))
	return path.Join(prefix, name, file)
}
