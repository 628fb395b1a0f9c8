package logos_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/stampkit/pkg/blob"
	"github.com/dmitrymomot/stampkit/storage/logos"
)

type recordingS3 struct {
	keys []string
}

func (m *recordingS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.keys = append(m.keys, *params.Key)
	return &s3.PutObjectOutput{}, nil
}

func (m *recordingS3) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return &s3.HeadObjectOutput{}, nil
}

func (m *recordingS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	return &s3.DeleteObjectOutput{}, nil
}

func newStorage(t *testing.T) (*logos.Storage, *recordingS3) {
	t.Helper()
	mock := &recordingS3{}
	blobs, err := blob.New(context.Background(),
		blob.Config{Bucket: "assets", Region: "us-east-1", BaseURL: "https://cdn.example.com"},
		blob.WithClient(mock))
	require.NoError(t, err)
	return logos.New(blobs), mock
}

func TestSaveLogo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("stores under a per-business key", func(t *testing.T) {
		t.Parallel()
		storage, mock := newStorage(t)

		url, err := storage.SaveLogo(ctx, "biz-1", []byte("png-bytes"), "image/png")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/logos/biz-1.png", url)
		assert.Equal(t, []string{"logos/biz-1.png"}, mock.keys)
	})

	t.Run("rejects unsupported types", func(t *testing.T) {
		t.Parallel()
		storage, _ := newStorage(t)
		_, err := storage.SaveLogo(ctx, "biz-1", []byte("gif"), "image/gif")
		assert.ErrorIs(t, err, blob.ErrUnsupportedMIMEType)
	})

	t.Run("rejects empty and oversized uploads", func(t *testing.T) {
		t.Parallel()
		storage, _ := newStorage(t)

		_, err := storage.SaveLogo(ctx, "biz-1", nil, "image/png")
		assert.Error(t, err)

		_, err = storage.SaveLogo(ctx, "biz-1", bytes.Repeat([]byte("a"), 3<<20), "image/png")
		assert.Error(t, err)
	})
}
