package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"faceindex/internal/config"
)

// minioReader implements ObjectReader using an S3-compatible backend (AWS S3, MinIO, etc.).
// It is safe for concurrent use by multiple goroutines.
type minioReader struct {
	client *minio.Client
}

// NewMinIO creates a new S3-compatible object reader backed by minio-go.
// Static keys are used when both are set; otherwise credentials come from the
// AWS environment variables and then the instance or task role.
func NewMinIO(cfg config.ObjectStoreConfig) (ObjectReader, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("object store endpoint is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  objectStoreCredentials(cfg),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &minioReader{client: cli}, nil
}

func objectStoreCredentials(cfg config.ObjectStoreConfig) *credentials.Credentials {
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		return credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}
	return credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.IAM{Client: &http.Client{Transport: http.DefaultTransport}},
	})
}

// Get downloads an object content as a ReadCloser along with basic info.
func (m *minioReader) Get(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	// Stat performs the request, so a missing object surfaces here rather than on first read.
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, ObjectInfo{}, err
	}
	info := ObjectInfo{
		Bucket:       bucket,
		Key:          key,
		Size:         st.Size,
		ETag:         st.ETag,
		ContentType:  st.ContentType,
		LastModified: st.LastModified,
	}
	return obj, info, nil
}
