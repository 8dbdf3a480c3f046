package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/akosenkov/url-shortener/internal/database"
	"github.com/akosenkov/url-shortener/internal/models"
	"github.com/akosenkov/url-shortener/internal/shortcode"
)

type MockURLRepository struct {
	mock.Mock
}

func (r *MockURLRepository) Create(ctx context.Context, shortCode, originalURL string) (*models.URL, error) {
	args := r.Called(ctx, shortCode, originalURL)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (r *MockURLRepository) Resolve(ctx context.Context, shortCode string) (*models.URL, error) {
	args := r.Called(ctx, shortCode)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (r *MockURLRepository) DeleteIdle(ctx context.Context, threshold time.Duration) (int64, error) {
	args := r.Called(ctx, threshold)
	return args.Get(0).(int64), args.Error(1)
}

func TestURLService_ShortenURL(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repoMock := new(MockURLRepository)
		svc := NewURLService(repoMock, shortcode.DefaultLength)

		repoMock.On("Create", mock.Anything, mock.AnythingOfType("string"), "https://example.com").
			Return(&models.URL{ShortCode: "code1", OriginalURL: "https://example.com"}, nil).
			Once()

		url, err := svc.ShortenURL(context.TODO(), "https://example.com")

		assert.NoError(t, err)
		assert.NotNil(t, url)
		assert.Equal(t, "https://example.com", url.OriginalURL)
		repoMock.AssertExpectations(t)
	})

	t.Run("retries on collision", func(t *testing.T) {
		repoMock := new(MockURLRepository)
		svc := NewURLService(repoMock, shortcode.DefaultLength)

		repoMock.On("Create", mock.Anything, mock.AnythingOfType("string"), "https://example.com").
			Return(nil, database.ErrShortCodeExists).
			Twice()
		repoMock.On("Create", mock.Anything, mock.AnythingOfType("string"), "https://example.com").
			Return(&models.URL{ShortCode: "code1", OriginalURL: "https://example.com"}, nil).
			Once()

		url, err := svc.ShortenURL(context.TODO(), "https://example.com")

		assert.NoError(t, err)
		assert.NotNil(t, url)
		repoMock.AssertExpectations(t)
		repoMock.AssertNumberOfCalls(t, "Create", 3)
	})

	t.Run("retries exhausted", func(t *testing.T) {
		repoMock := new(MockURLRepository)
		svc := NewURLService(repoMock, shortcode.DefaultLength)

		repoMock.On("Create", mock.Anything, mock.AnythingOfType("string"), "https://example.com").
			Return(nil, database.ErrShortCodeExists).
			Times(5)

		url, err := svc.ShortenURL(context.TODO(), "https://example.com")

		assert.Error(t, err)
		assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
		assert.Nil(t, url)
		repoMock.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		repoMock := new(MockURLRepository)
		svc := NewURLService(repoMock, shortcode.DefaultLength)

		repoMock.On("Create", mock.Anything, mock.AnythingOfType("string"), "https://example.com").
			Return(nil, assert.AnError).
			Once()

		url, err := svc.ShortenURL(context.TODO(), "https://example.com")

		assert.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, url)
		repoMock.AssertExpectations(t)
	})
}

func TestURLService_ResolveShortCode(t *testing.T) {
	t.Run("url not found", func(t *testing.T) {
		repoMock := new(MockURLRepository)
		svc := NewURLService(repoMock, shortcode.DefaultLength)

		repoMock.On("Resolve", mock.Anything, "code2").
			Return(nil, database.ErrURLNotFound).
			Once()

		url, err := svc.ResolveShortCode(context.TODO(), "code2")

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrURLNotFound)
		assert.Nil(t, url)
		repoMock.AssertExpectations(t)
	})

	t.Run("success", func(t *testing.T) {
		repoMock := new(MockURLRepository)
		svc := NewURLService(repoMock, shortcode.DefaultLength)

		repoMock.On("Resolve", mock.Anything, "code1").
			Return(&models.URL{ShortCode: "code1", OriginalURL: "https://example.com", AccessCount: 1}, nil).
			Once()

		url, err := svc.ResolveShortCode(context.TODO(), "code1")

		assert.NoError(t, err)
		assert.NotNil(t, url)
		assert.EqualValues(t, 1, url.AccessCount)
		repoMock.AssertExpectations(t)
	})
}

func TestURLService_EvictIdle(t *testing.T) {
	threshold := 7 * 24 * time.Hour

	t.Run("repository error", func(t *testing.T) {
		repoMock := new(MockURLRepository)
		svc := NewURLService(repoMock, shortcode.DefaultLength)

		repoMock.On("DeleteIdle", mock.Anything, threshold).
			Return(int64(0), assert.AnError).
			Once()

		count, err := svc.EvictIdle(context.TODO(), threshold)

		assert.Error(t, err)
		assert.Zero(t, count)
		repoMock.AssertExpectations(t)
	})

	t.Run("success", func(t *testing.T) {
		repoMock := new(MockURLRepository)
		svc := NewURLService(repoMock, shortcode.DefaultLength)

		repoMock.On("DeleteIdle", mock.Anything, threshold).
			Return(int64(2), nil).
			Once()

		count, err := svc.EvictIdle(context.TODO(), threshold)

		assert.NoError(t, err)
		assert.EqualValues(t, 2, count)
		repoMock.AssertExpectations(t)
	})
}
