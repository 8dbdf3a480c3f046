package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/akosenkov/url-shortener/internal/database"
	"github.com/akosenkov/url-shortener/pkg/response"
)

const dateFormat = "2006-01-02"

// handlePing handles health check requests to ensure the server is running.
func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "pong")
}

// urlRequest represents the request payload for shortening a URL.
type urlRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// shortenResponse represents the response payload for a successful shorten operation.
type shortenResponse struct {
	ShortenedURL string `json:"shortened_url"`
}

// redirectResponse carries the original URL a short code resolves to.
type redirectResponse struct {
	RedirectTo string `json:"redirect_to"`
}

// handleShortenURL handles POST requests to shorten a URL.
//
// The request must contain a valid URL. The handler validates the input, calls the URL shortening
// service, and returns the generated short code.
func handleShortenURL(svc URLService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleShortenURL"
	const successMsg = "The URL has been shortened successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req urlRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			if errors.Is(err, io.EOF) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.EmptyRequestBodyResponse)
				return
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationErrorResponse(err))
			return
		}

		url, err := svc.ShortenURL(r.Context(), req.URL)
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, shortenResponse{
			ShortenedURL: url.ShortCode,
		}))
	}
}

// handleResolveShortCode handles GET requests to resolve a short code into the original URL.
//
// Each successful resolve counts as an access. Returns the original URL
// or a 404 error if the code is unknown or already evicted.
func handleResolveShortCode(svc URLService) http.HandlerFunc {
	const op = "api.http.handleResolveShortCode"
	const successMsg = "The short code was successfully resolved."

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		url, err := svc.ResolveShortCode(r.Context(), shortCode)
		if err != nil {
			if errors.Is(err, database.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, redirectResponse{
			RedirectTo: url.OriginalURL,
		}))
	}
}

type newURLsTodayResponse struct {
	TotalNewURLs int64 `json:"total_new_urls"`
}

// handleNewURLsToday reports how many mappings were created today.
func handleNewURLsToday(svc StatsService) http.HandlerFunc {
	const op = "api.http.handleNewURLsToday"
	const successMsg = "New URLs counted successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		count, err := svc.NewURLsToday(r.Context())
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, newURLsTodayResponse{
			TotalNewURLs: count,
		}))
	}
}

type totalAccessesTodayResponse struct {
	TotalAccesses int64 `json:"total_accesses"`
}

// handleTotalAccessesToday reports how many resolves happened today.
func handleTotalAccessesToday(svc StatsService) http.HandlerFunc {
	const op = "api.http.handleTotalAccessesToday"
	const successMsg = "Accesses counted successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		count, err := svc.TotalAccessesToday(r.Context())
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, totalAccessesTodayResponse{
			TotalAccesses: count,
		}))
	}
}

type topAccessedURLResponse struct {
	ShortenedURL  string `json:"shortened_url"`
	AccessedCount int64  `json:"accessed_count"`
}

// handleTopAccessedURLs returns the most accessed mappings, busiest first.
func handleTopAccessedURLs(svc StatsService) http.HandlerFunc {
	const op = "api.http.handleTopAccessedURLs"
	const successMsg = "Top accessed URLs retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		urls, err := svc.TopAccessed(r.Context(), topAccessedLimit)
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		if len(urls) == 0 {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.ResourceNotFoundResponse)
			return
		}

		data := make([]topAccessedURLResponse, 0, len(urls))
		for _, url := range urls {
			data = append(data, topAccessedURLResponse{
				ShortenedURL:  url.ShortCode,
				AccessedCount: url.AccessCount,
			})
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, data))
	}
}

type idleURLResponse struct {
	ShortenedURL        string `json:"shortened_url"`
	AccessedCount       int64  `json:"accessed_count"`
	TimeSinceLastAccess string `json:"time_since_last_access"`
}

// handleIdleRanking returns every mapping with its idle duration, most idle first.
func handleIdleRanking(svc StatsService) http.HandlerFunc {
	const op = "api.http.handleIdleRanking"
	const successMsg = "Idle ranking retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.IdleRanking(r.Context())
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		if len(stats) == 0 {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.ResourceNotFoundResponse)
			return
		}

		data := make([]idleURLResponse, 0, len(stats))
		for _, stat := range stats {
			data = append(data, idleURLResponse{
				ShortenedURL:        stat.ShortCode,
				AccessedCount:       stat.AccessCount,
				TimeSinceLastAccess: stat.IdleFor.Truncate(time.Second).String(),
			})
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, data))
	}
}

type accessesPerDayResponse struct {
	ShortenedURL  string `json:"shortened_url"`
	Date          string `json:"date"`
	AccessedCount int64  `json:"accessed_count"`
}

// handleAccessesPerDay returns the per-day access histogram, newest day first.
func handleAccessesPerDay(svc StatsService) http.HandlerFunc {
	const op = "api.http.handleAccessesPerDay"
	const successMsg = "Accesses per day retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := svc.AccessesPerDay(r.Context())
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		if len(counts) == 0 {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.ResourceNotFoundResponse)
			return
		}

		data := make([]accessesPerDayResponse, 0, len(counts))
		for _, count := range counts {
			data = append(data, accessesPerDayResponse{
				ShortenedURL:  count.ShortCode,
				Date:          count.Day.Format(dateFormat),
				AccessedCount: count.AccessCount,
			})
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, data))
	}
}

type registeredPerDayResponse struct {
	Date      string `json:"date"`
	TotalURLs int64  `json:"total_urls"`
}

// handleRegisteredPerDay returns how many mappings were created on each day, newest day first.
func handleRegisteredPerDay(svc StatsService) http.HandlerFunc {
	const op = "api.http.handleRegisteredPerDay"
	const successMsg = "Registered URLs per day retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := svc.RegisteredPerDay(r.Context())
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		if len(counts) == 0 {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.ResourceNotFoundResponse)
			return
		}

		data := make([]registeredPerDayResponse, 0, len(counts))
		for _, count := range counts {
			data = append(data, registeredPerDayResponse{
				Date:      count.Day.Format(dateFormat),
				TotalURLs: count.Count,
			})
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, data))
	}
}
