package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Archiver stores finished reports outside the results database.
type Archiver interface {
	Archive(ctx context.Context, id string, report interface{}, timestamp time.Time) error
}

// NopArchiver drops every report.
type NopArchiver struct{}

func (NopArchiver) Archive(context.Context, string, interface{}, time.Time) error { return nil }

// MinIOArchiver uploads reports as JSON objects to a MinIO or S3 bucket.
type MinIOArchiver struct {
	client *minio.Client
	bucket string
}

// NewMinIOArchiver creates an archiver for bucket on the given endpoint.
func NewMinIOArchiver(endpoint, accessKey, secretKey, bucket, region string, secure bool) (*MinIOArchiver, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinIOArchiver{
		client: client,
		bucket: bucket,
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (m *MinIOArchiver) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", m.bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", m.bucket, err)
	}
	return nil
}

// Archive marshals report to JSON and stores it under ObjectPath(id, timestamp).
func (m *MinIOArchiver) Archive(ctx context.Context, id string, report interface{}, timestamp time.Time) error {
	jsonData, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	objectPath := ObjectPath(id, timestamp)

	_, err = m.client.PutObject(ctx, m.bucket, objectPath, bytes.NewReader(jsonData), int64(len(jsonData)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("upload to minio: %w", err)
	}

	return nil
}

// ObjectPath returns year/month/day/<id>.json for the UTC date of timestamp.
func ObjectPath(id string, timestamp time.Time) string {
	ts := timestamp.UTC()
	return fmt.Sprintf("%d/%02d/%02d/%s.json", ts.Year(), ts.Month(), ts.Day(), id)
}
