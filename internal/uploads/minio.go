package uploads

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/magabrotheeeer/user-accounts/internal/config"
)

// minioAPI позволяет подменять клиент MinIO в тестах.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

type minioClientWrapper struct{ c *minio.Client }

func (w minioClientWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return w.c.BucketExists(ctx, bucketName)
}

func (w minioClientWrapper) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return w.c.MakeBucket(ctx, bucketName, opts)
}

func (w minioClientWrapper) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return w.c.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
}

func (w minioClientWrapper) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := w.c.GetObject(ctx, bucketName, objectName, opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (w minioClientWrapper) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return w.c.RemoveObject(ctx, bucketName, objectName, opts)
}

func (w minioClientWrapper) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	return w.c.StatObject(ctx, bucketName, objectName, opts)
}

// Minio хранит файлы в бакете S3-совместимого хранилища.
type Minio struct {
	api    minioAPI
	bucket string
}

// NewMinio подключается к MinIO по настройкам и создаёт бакет при необходимости.
func NewMinio(ctx context.Context, cfg config.Minio) (*Minio, error) {
	const op = "uploads.NewMinio"
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return newMinioWithAPI(ctx, minioClientWrapper{c: client}, cfg.Bucket)
}

func newMinioWithAPI(ctx context.Context, api minioAPI, bucket string) (*Minio, error) {
	const op = "uploads.NewMinio"
	m := &Minio{api: api, bucket: bucket}

	exists, err := api.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: check bucket: %w", op, err)
	}
	if !exists {
		if err := api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%s: create bucket: %w", op, err)
		}
	}
	return m, nil
}

// Save загружает объект и возвращает его имя.
func (m *Minio) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	const op = "uploads.Minio.Save"
	name := storedName(originalName)
	if _, err := m.api.PutObject(ctx, m.bucket, name, r, -1, minio.PutObjectOptions{}); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return name, nil
}

// Open возвращает содержимое объекта.
func (m *Minio) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	const op = "uploads.Minio.Open"
	if err := checkName(name); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := m.api.StatObject(ctx, m.bucket, name, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%s: %w", op, ErrFileNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	obj, err := m.api.GetObject(ctx, m.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return obj, nil
}

// Delete удаляет объект.
func (m *Minio) Delete(ctx context.Context, name string) error {
	const op = "uploads.Minio.Delete"
	if err := checkName(name); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := m.api.RemoveObject(ctx, m.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
