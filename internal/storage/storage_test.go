package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	name, err := ObjectName("avatar_7", "Me.PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "avatar_7_"))
	assert.True(t, strings.HasSuffix(name, ".png"))

	name, err = ObjectName("", "../../etc/passwd")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".jpg"), "unknown extensions fall back to .jpg")
	assert.NotContains(t, name, "/")
}

func TestLocal_PutAndServe(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocal(dir)
	require.NoError(t, err)

	path, err := local.Put(context.Background(), "photo.jpg", strings.NewReader("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/photo.jpg", path)

	data, err := os.ReadFile(filepath.Join(dir, "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	rr := httptest.NewRecorder()
	local.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads/photo.jpg", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "jpeg-bytes", rr.Body.String())
}

func TestLocal_PutStripsDirectories(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocal(dir)
	require.NoError(t, err)

	path, err := local.Put(context.Background(), "../escape.jpg", strings.NewReader("x"), "")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/escape.jpg", path)
	assert.FileExists(t, filepath.Join(dir, "escape.jpg"))
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	b, _ := io.ReadAll(params.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3_Put(t *testing.T) {
	putter := &fakePutter{}
	d := newS3WithClient(putter, "shop-assets", "https://cdn.example.com")

	url, err := d.Put(context.Background(), "a.png", strings.NewReader("png"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/uploads/a.png", url)
	assert.Equal(t, "shop-assets", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "uploads/a.png", aws.ToString(putter.input.Key))
	assert.Equal(t, "image/png", aws.ToString(putter.input.ContentType))
	assert.Equal(t, "png", putter.body)
}

func TestS3_PutError(t *testing.T) {
	d := newS3WithClient(&fakePutter{err: errors.New("denied")}, "b", "https://b")
	_, err := d.Put(context.Background(), "a.png", strings.NewReader(""), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}
