// Package storage keeps question images in an S3 compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/ntwari02/proviQuiz/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var ErrUnsupportedImage = errors.New("unsupported image type")

var allowedImageTypes = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

type ImageStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewImageStore connects to the bucket, creating it if needed.
func NewImageStore(ctx context.Context, cfg config.StorageConfig) (*ImageStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		log.Printf("Created bucket: %s", cfg.Bucket)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = strings.TrimRight(client.EndpointURL().String(), "/")
	}

	return &ImageStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
	}, nil
}

// ObjectName builds the key for a question image; the extension follows the content type.
func ObjectName(questionID int, contentType string) (string, error) {
	ext, ok := allowedImageTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", ErrUnsupportedImage
	}
	return path.Join("questions", fmt.Sprint(questionID), uuid.NewString()+ext), nil
}

// Upload stores the image and returns the URL clients should load it from.
func (s *ImageStore) Upload(ctx context.Context, questionID int, contentType string, reader io.Reader, size int64) (string, error) {
	objectName, err := ObjectName(questionID, contentType)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return s.URL(objectName), nil
}

func (s *ImageStore) URL(objectName string) string {
	return s.publicURL + "/" + s.bucket + "/" + objectName
}

// Remove deletes an image previously returned by Upload. URLs that do not
// belong to this store are ignored.
func (s *ImageStore) Remove(ctx context.Context, imageURL string) error {
	prefix := s.publicURL + "/" + s.bucket + "/"
	if !strings.HasPrefix(imageURL, prefix) {
		return nil
	}
	objectName := strings.TrimPrefix(imageURL, prefix)
	if objectName == "" || strings.Contains(objectName, "..") {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}
