package output

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config configures an S3Publisher.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// S3Publisher uploads documents to an S3-compatible bucket under an optional prefix.
type S3Publisher struct {
	client   *minio.Client
	bucket   string
	region   string
	prefix   string

	mu    sync.Mutex
	ready bool
}

// NewS3Publisher validates cfg and creates the client. No request is made until Publish.
func NewS3Publisher(cfg S3Config) (*S3Publisher, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3Publisher{
		client: client,
		bucket: bucket,
		region: region,
		prefix: strings.Trim(strings.TrimSpace(cfg.Prefix), "/"),
	}, nil
}

// ensureBucket checks for the bucket, creating it when missing. Only success is
// remembered; a failed check is retried on the next Publish.
func (p *S3Publisher) ensureBucket(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ready {
		return nil
	}

	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return err
	}
	if !exists {
		if err := p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{Region: p.region}); err != nil {
			return err
		}
	}
	p.ready = true
	return nil
}

// ObjectKey returns the key a document named name is stored under.
func (p *S3Publisher) ObjectKey(name string) string {
	if p.prefix == "" {
		return name
	}
	return path.Join(p.prefix, name)
}

// Publish uploads every document, replacing existing objects.
func (p *S3Publisher) Publish(ctx context.Context, docs []Document) error {
	if err := p.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}

	for _, d := range docs {
		key := p.ObjectKey(d.Name)
		_, err := p.client.PutObject(ctx, p.bucket, key, bytes.NewReader(d.Data), int64(len(d.Data)), minio.PutObjectOptions{
			ContentType: "application/json; charset=utf-8",
		})
		if err != nil {
			return fmt.Errorf("upload %s: %w", key, err)
		}
		slog.Info("document uploaded",
			slog.String("bucket", p.bucket),
			slog.String("key", key),
			slog.Int("bytes", len(d.Data)))
	}
	return nil
}
