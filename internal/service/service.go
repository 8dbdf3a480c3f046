package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akosenkov/url-shortener/internal/database"
	"github.com/akosenkov/url-shortener/internal/models"
	"github.com/akosenkov/url-shortener/internal/shortcode"
)

// ErrMaxRetriesExceeded is returned when the maximum number of retries for generating a short code is exceeded.
var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")

// URLRepository defines the interface for working with URL mappings at the business logic layer.
type URLRepository interface {
	// Create inserts a new mapping into the repository.
	// Returns the created URL model or an error if the operation fails.
	Create(ctx context.Context, shortCode, originalURL string) (*models.URL, error)

	// Resolve retrieves a URL by its short code, incrementing its access
	// counter and last access time as part of the same operation.
	Resolve(ctx context.Context, shortCode string) (*models.URL, error)

	// DeleteIdle removes mappings idle longer than the threshold.
	// Returns how many were removed.
	DeleteIdle(ctx context.Context, threshold time.Duration) (int64, error)
}

// URLService provides methods to manage URL shortening operations.
// The service uses a URLRepository interface to interact with the underlying database.
type URLService struct {
	repo            URLRepository
	shortCodeLength int
}

// NewURLService creates a new instance of URLService with the provided repository and short code length.
func NewURLService(repo URLRepository, shortCodeLength int) *URLService {
	if shortCodeLength <= 0 {
		shortCodeLength = shortcode.DefaultLength
	}

	return &URLService{
		repo:            repo,
		shortCodeLength: shortCodeLength,
	}
}

// ShortenURL generates a short code for the provided original URL and stores it in the repository.
// Codes are random and not globally unique; the repository's unique
// constraint rejects collisions, and the service retries with a fresh
// code up to a fixed cap. Exhausting the cap returns ErrMaxRetriesExceeded.
func (s *URLService) ShortenURL(ctx context.Context, originalURL string) (*models.URL, error) {
	const op = "service.URLService.ShortenURL"
	const maxRetries = 5

	for i := 0; i < maxRetries; i++ {
		code, err := shortcode.Generate(s.shortCodeLength)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		url, err := s.repo.Create(ctx, code, originalURL)
		if err != nil {
			if errors.Is(err, database.ErrShortCodeExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return url, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

// ResolveShortCode retrieves the original URL associated with the provided short code.
// Each successful resolve counts as one access.
func (s *URLService) ResolveShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "service.URLService.ResolveShortCode"

	url, err := s.repo.Resolve(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return url, nil
}

// EvictIdle removes every mapping whose last access is older than the
// threshold and returns how many were removed.
func (s *URLService) EvictIdle(ctx context.Context, threshold time.Duration) (int64, error) {
	const op = "service.URLService.EvictIdle"

	count, err := s.repo.DeleteIdle(ctx, threshold)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to evict idle urls: %w", op, err)
	}

	return count, nil
}
