package uploads

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type minioMock struct {
	mock.Mock
}

func (m *minioMock) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *minioMock) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	args := m.Called(ctx, bucketName, opts)
	return args.Error(0)
}

func (m *minioMock) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *minioMock) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *minioMock) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	args := m.Called(ctx, bucketName, objectName, opts)
	return args.Error(0)
}

func (m *minioMock) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func TestNewMinio_CreatesBucket(t *testing.T) {
	api := new(minioMock)
	api.On("BucketExists", mock.Anything, "files").Return(false, nil).Once()
	api.On("MakeBucket", mock.Anything, "files", minio.MakeBucketOptions{}).Return(nil).Once()

	_, err := newMinioWithAPI(context.Background(), api, "files")
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestNewMinio_BucketCheckFails(t *testing.T) {
	api := new(minioMock)
	api.On("BucketExists", mock.Anything, "files").Return(false, errors.New("unreachable")).Once()

	_, err := newMinioWithAPI(context.Background(), api, "files")
	assert.Error(t, err)
}

func TestMinio_SaveOpenDelete(t *testing.T) {
	api := new(minioMock)
	api.On("BucketExists", mock.Anything, "files").Return(true, nil).Once()
	store, err := newMinioWithAPI(context.Background(), api, "files")
	require.NoError(t, err)
	ctx := context.Background()

	var saved string
	api.On("PutObject", mock.Anything, "files", mock.MatchedBy(func(name string) bool {
		saved = name
		return strings.HasSuffix(name, ".pdf")
	}), mock.Anything, int64(-1), minio.PutObjectOptions{}).Return(minio.UploadInfo{}, nil).Once()

	name, err := store.Save(ctx, "doc.pdf", strings.NewReader("content"))
	require.NoError(t, err)
	assert.Equal(t, saved, name)

	api.On("StatObject", mock.Anything, "files", name, minio.StatObjectOptions{}).Return(minio.ObjectInfo{}, nil).Once()
	api.On("GetObject", mock.Anything, "files", name, minio.GetObjectOptions{}).
		Return(io.NopCloser(strings.NewReader("content")), nil).Once()

	rc, err := store.Open(ctx, name)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	api.On("RemoveObject", mock.Anything, "files", name, minio.RemoveObjectOptions{}).Return(nil).Once()
	require.NoError(t, store.Delete(ctx, name))

	api.AssertExpectations(t)
}

func TestMinio_OpenMissing(t *testing.T) {
	api := new(minioMock)
	api.On("BucketExists", mock.Anything, "files").Return(true, nil).Once()
	store, err := newMinioWithAPI(context.Background(), api, "files")
	require.NoError(t, err)

	api.On("StatObject", mock.Anything, "files", "missing.png", minio.StatObjectOptions{}).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"}).Once()

	_, err = store.Open(context.Background(), "missing.png")
	assert.ErrorIs(t, err, ErrFileNotFound)
}
