package media_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"vehicle-catalog/core/storage"
	"vehicle-catalog/core/storage/mocks"
	"vehicle-catalog/feature/media"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMediaApp(client storage.Client) *fiber.App {
	cfg := storage.Config{
		Bucket:        "catalog-media",
		PublicBaseURL: "https://cdn.dealer.test",
	}
	app := fiber.New()
	h := media.NewHandler(client, cfg, zap.NewNop())
	h.RegisterRoutes(app.Group("/admin"))
	return app
}

func buildUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHandleUpload(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("PutObject",
		mock.Anything, "catalog-media", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
	).Return(minio.UploadInfo{}, nil)

	app := setupMediaApp(mockClient)
	body, contentType := buildUpload(t, "tucson-front.jpg", []byte("jpegdata"))

	req := httptest.NewRequest("POST", "/admin/media/", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var result map[string]string
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &result))

	assert.True(t, strings.HasSuffix(result["object"], ".jpg"))
	assert.Equal(t, "https://cdn.dealer.test/catalog-media/"+result["object"], result["url"])
	mockClient.AssertExpectations(t)
}

func TestHandleUpload_RejectsUnsupportedType(t *testing.T) {
	mockClient := new(mocks.Client)
	app := setupMediaApp(mockClient)

	body, contentType := buildUpload(t, "malware.exe", []byte("nope"))
	req := httptest.NewRequest("POST", "/admin/media/", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	mockClient.AssertNotCalled(t, "PutObject")
}

func TestHandleUpload_MissingFile(t *testing.T) {
	app := setupMediaApp(new(mocks.Client))

	resp, err := app.Test(httptest.NewRequest("POST", "/admin/media/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleUpload_StorageFailure(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("PutObject",
		mock.Anything, "catalog-media", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
	).Return(minio.UploadInfo{}, assert.AnError)

	app := setupMediaApp(mockClient)
	body, contentType := buildUpload(t, "logo.png", []byte("pngdata"))
	req := httptest.NewRequest("POST", "/admin/media/", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestFeatureLoad_CreatesMissingBucket(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "catalog-media").Return(false, nil)
	mockClient.On("MakeBucket", mock.Anything, "catalog-media", mock.Anything).Return(nil)

	app := fiber.New()
	f := media.NewFeature(mockClient, storage.Config{Bucket: "catalog-media"}, zap.NewNop(), app.Group("/admin"))
	require.True(t, f.IsEnabled())
	require.NoError(t, f.Load(app))
	mockClient.AssertExpectations(t)
}

func TestFeatureDisabledWithoutClient(t *testing.T) {
	app := fiber.New()
	f := media.NewFeature(nil, storage.Config{}, zap.NewNop(), app.Group("/admin"))
	assert.False(t, f.IsEnabled())
}

func TestHandleDelete(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("RemoveObject",
		mock.Anything, "catalog-media", "old-banner.jpg", mock.Anything,
	).Return(nil)

	app := setupMediaApp(mockClient)
	resp, err := app.Test(httptest.NewRequest("DELETE", "/admin/media/old-banner.jpg", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	mockClient.AssertExpectations(t)
}
