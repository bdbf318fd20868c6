package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Uploader archives generated reports to S3-compatible object storage.
type Uploader struct {
	client *minio.Client
	bucket string
}

// NewUploader connects to object storage and ensures the bucket exists.
func NewUploader(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Uploader, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}

	return &Uploader{client: client, bucket: bucket}, nil
}

// Upload stores a report under a timestamped key and returns the object name.
func (u *Uploader) Upload(ctx context.Context, result *Result) (string, error) {
	objectName := fmt.Sprintf("reports/%s/%s", time.Now().UTC().Format("2006/01"), result.Filename)
	_, err := u.client.PutObject(ctx, u.bucket, objectName,
		bytes.NewReader(result.Data), int64(len(result.Data)),
		minio.PutObjectOptions{ContentType: result.MimeType},
	)
	if err != nil {
		return "", fmt.Errorf("upload report %s: %w", objectName, err)
	}
	return objectName, nil
}
