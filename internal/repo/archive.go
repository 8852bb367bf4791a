package repo

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config configures the S3-compatible archive bucket.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Archive publishes ingested batches and their diffs to an S3-compatible
// bucket under <source>/<timestamp>/.
type S3Archive struct {
	client   *minio.Client
	bucket   string
	region   string
	initOnce sync.Once
	initErr  error
}

// NewS3Archive validates cfg and builds a minio client. No request is made
// until the first Archive call.
func NewS3Archive(cfg S3Config) (*S3Archive, error) {
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
	return &S3Archive{client: client, bucket: bucket, region: region}, nil
}

func (a *S3Archive) ensureBucket(ctx context.Context) error {
	a.initOnce.Do(func() {
		exists, err := a.client.BucketExists(ctx, a.bucket)
		if err != nil {
			a.initErr = err
			return
		}
		if exists {
			return
		}
		a.initErr = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region})
	})
	return a.initErr
}

// Archive uploads the batch and its diff. diff may be nil.
func (a *S3Archive) Archive(ctx context.Context, source string, at time.Time, batch, diff []byte) error {
	if a == nil || a.client == nil {
		return fmt.Errorf("archive is nil")
	}
	if err := a.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}

	prefix := ArchivePrefix(source, at)
	if err := a.put(ctx, prefix+"discounts.json", batch); err != nil {
		return fmt.Errorf("put batch: %w", err)
	}
	if diff != nil {
		if err := a.put(ctx, prefix+"diff.json", diff); err != nil {
			return fmt.Errorf("put diff: %w", err)
		}
	}
	return nil
}

func (a *S3Archive) put(ctx context.Context, key string, content []byte) error {
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

// ArchivePrefix is the object prefix of one ingest, e.g.
// "coto/20250426T101500Z/".
func ArchivePrefix(source string, at time.Time) string {
	return strings.Trim(strings.TrimSpace(source), "/") + "/" + at.UTC().Format("20060102T150405Z") + "/"
}
