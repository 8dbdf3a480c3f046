package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"

	"github.com/akosenkov/url-shortener/internal/models"
)

// topAccessedLimit is how many entries the top-accessed dashboard shows.
const topAccessedLimit = 3

// URLService defines the interface for the core URL shortening business logic.
type URLService interface {
	// ShortenURL creates a shortened version of the provided original URL.
	// It returns the generated short code and associated URL details, or an error if the operation fails.
	ShortenURL(ctx context.Context, originalURL string) (*models.URL, error)

	// ResolveShortCode retrieves the original URL for a given short code,
	// counting the access. It returns an error if the URL is not found.
	ResolveShortCode(ctx context.Context, shortCode string) (*models.URL, error)
}

// StatsService defines the interface for the dashboard analytics views.
type StatsService interface {
	NewURLsToday(ctx context.Context) (int64, error)
	TotalAccessesToday(ctx context.Context) (int64, error)
	TopAccessed(ctx context.Context, n int) ([]models.URLAccessCount, error)
	IdleRanking(ctx context.Context) ([]models.URLIdleStat, error)
	AccessesPerDay(ctx context.Context) ([]models.URLDayCount, error)
	RegisteredPerDay(ctx context.Context) ([]models.DayCount, error)
}

// getValidate initializes a new validator instance for validating incoming request payloads.
// It customizes tag name extraction from struct fields to match JSON tags.
func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// NewRouter initializes and returns a new HTTP router with all routes and middleware configured.
func NewRouter(logger *httplog.Logger, urlSvc URLService, statsSvc StatsService) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		validate := getValidate()

		r.Get("/ping", handlePing)

		r.Post("/shorten", handleShortenURL(urlSvc, validate))

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/new_urls_today", handleNewURLsToday(statsSvc))
			r.Get("/total_accesses_today", handleTotalAccessesToday(statsSvc))
			r.Get("/top_accessed_urls", handleTopAccessedURLs(statsSvc))
			r.Get("/urls_time_since_last_access", handleIdleRanking(statsSvc))
			r.Get("/accesses_per_day", handleAccessesPerDay(statsSvc))
			r.Get("/registered_urls_per_day", handleRegisteredPerDay(statsSvc))
		})

		r.Get("/{shortCode}", handleResolveShortCode(urlSvc))
	})

	return r
}
