package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plotmarket/plot-service/internal/config"
	apperrors "github.com/plotmarket/plot-service/pkg/util/errorutil"
)

type fakeObjectStore struct {
	keys []string
	fail error
}

func (f *fakeObjectStore) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	f.keys = append(f.keys, key)
	return "https://cdn.example.com/" + key, nil
}

func newUploadFixture(store *fakeObjectStore) *UploadService {
	return NewUploadService(store, config.StorageConfig{
		MaxUploadBytes: 1024,
		MaxUploadFiles: 3,
	}, zap.NewNop())
}

func pngFile(name string) UploadFile {
	return UploadFile{Name: name, ContentType: "image/png", Data: []byte("png-bytes")}
}

func TestUploadListingImages(t *testing.T) {
	store := &fakeObjectStore{}
	svc := newUploadFixture(store)

	urls, err := svc.UploadListingImages(context.Background(), []UploadFile{
		pngFile("front.png"),
		pngFile("side view.png"),
	})
	require.NoError(t, err)
	require.Len(t, urls, 2)
	require.Len(t, store.keys, 2)

	for _, key := range store.keys {
		assert.True(t, strings.HasPrefix(key, "listings/"), "key %q", key)
		assert.NotContains(t, key, " ")
	}
	assert.True(t, strings.HasSuffix(store.keys[0], "-front.png"))
	assert.True(t, strings.HasSuffix(store.keys[1], "-side_view.png"))
}

func TestUploadRejectsEmptyBatch(t *testing.T) {
	svc := newUploadFixture(&fakeObjectStore{})

	_, err := svc.UploadListingImages(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestUploadRejectsTooManyFiles(t *testing.T) {
	svc := newUploadFixture(&fakeObjectStore{})

	files := []UploadFile{pngFile("1.png"), pngFile("2.png"), pngFile("3.png"), pngFile("4.png")}
	_, err := svc.UploadListingImages(context.Background(), files)
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestUploadRejectsNonImage(t *testing.T) {
	store := &fakeObjectStore{}
	svc := newUploadFixture(store)

	_, err := svc.UploadListingImages(context.Background(), []UploadFile{
		{Name: "deed.pdf", ContentType: "application/pdf", Data: []byte("%PDF")},
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
	assert.Empty(t, store.keys)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	store := &fakeObjectStore{}
	svc := newUploadFixture(store)

	big := UploadFile{Name: "big.png", ContentType: "image/png", Data: make([]byte, 2048)}
	_, err := svc.UploadListingImages(context.Background(), []UploadFile{big})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
	assert.Empty(t, store.keys)
}

func TestUploadStoreFailureIsInternal(t *testing.T) {
	svc := newUploadFixture(&fakeObjectStore{fail: errors.New("bucket gone")})

	_, err := svc.UploadListingImages(context.Background(), []UploadFile{pngFile("x.png")})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 500, domainErr.HTTPStatus)
	assert.Equal(t, "internal server error", domainErr.Message)
}
