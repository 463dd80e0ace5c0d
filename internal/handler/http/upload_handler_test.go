package http_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	handler "github.com/vasiliy-maslov/marketplace-service/internal/handler/http"
)

func TestUploadHandler(t *testing.T) {
	t.Run("stored", func(t *testing.T) {
		f := newFixture(t)
		f.files.On("Put", mock.Anything, mock.MatchedBy(func(name string) bool {
			return strings.HasSuffix(name, ".png") && !strings.Contains(name, "/")
		}), "image/png").Return("/uploads/abc.png", nil).Once()

		body, contentType := multipartBody(t, nil, "image", "../../etc/photo.png", []byte("img"))
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()
		f.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "/uploads/abc.png", decode[handler.UploadResponse](t, rr).URL)
	})

	t.Run("missing image", func(t *testing.T) {
		f := newFixture(t)
		body, contentType := multipartBody(t, map[string]string{"note": "x"}, "", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()
		f.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "No image part", errorMessage(t, rr))
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newFixture(t)
		f.files.On("Put", mock.Anything, mock.AnythingOfType("string"), "image/png").
			Return("", errors.New("disk full")).Once()

		body, contentType := multipartBody(t, nil, "image", "photo.png", []byte("img"))
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()
		f.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "Failed to save image", errorMessage(t, rr))
	})

	t.Run("body over limit", func(t *testing.T) {
		f := newFixture(t)
		body, contentType := multipartBody(t, nil, "image", "huge.png", bytes.Repeat([]byte("x"), 11<<20))
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()
		f.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
		assert.Equal(t, "File too large", errorMessage(t, rr))
		f.files.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
	})
}
