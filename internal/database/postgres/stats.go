package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/akosenkov/url-shortener/internal/models"
)

// StatsRepository serves the read-only analytics queries. Every call
// recomputes against the current committed state; day boundaries are the
// database server's, so one clock decides what "today" means for both
// analytics and eviction.
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{
		db: db,
	}
}

// URLsCreatedToday counts the mappings created on the current day.
func (r *StatsRepository) URLsCreatedToday(ctx context.Context) (int64, error) {
	const op = "database.postgres.StatsRepository.URLsCreatedToday"

	var count int64
	query := `SELECT count(*) FROM urls
		WHERE created_at >= date_trunc('day', now())`

	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("%s: failed to count urls created today: %w", op, err)
	}

	return count, nil
}

// AccessesToday counts access events recorded on the current day.
func (r *StatsRepository) AccessesToday(ctx context.Context) (int64, error) {
	const op = "database.postgres.StatsRepository.AccessesToday"

	var count int64
	query := `SELECT count(*) FROM url_accesses
		WHERE accessed_at >= date_trunc('day', now())`

	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("%s: failed to count accesses today: %w", op, err)
	}

	return count, nil
}

type accessCountRecord struct {
	ShortCode   string `db:"short_code"`
	AccessCount int64  `db:"access_count"`
}

// TopAccessed returns at most n mappings ordered by access count
// descending, ties broken by short code ascending.
func (r *StatsRepository) TopAccessed(ctx context.Context, n int) ([]models.URLAccessCount, error) {
	const op = "database.postgres.StatsRepository.TopAccessed"

	var recs []accessCountRecord
	query := `SELECT short_code, access_count FROM urls
		ORDER BY access_count DESC, short_code ASC
		LIMIT $1`

	if err := r.db.SelectContext(ctx, &recs, query, n); err != nil {
		return nil, fmt.Errorf("%s: failed to select top accessed urls: %w", op, err)
	}

	urls := make([]models.URLAccessCount, 0, len(recs))
	for _, rec := range recs {
		urls = append(urls, models.URLAccessCount{
			ShortCode:   rec.ShortCode,
			AccessCount: rec.AccessCount,
		})
	}

	return urls, nil
}

type idleRecord struct {
	ShortCode      string    `db:"short_code"`
	AccessCount    int64     `db:"access_count"`
	LastAccessedAt time.Time `db:"last_accessed_at"`
}

// IdleStats returns every mapping with its access count and last access
// time, most idle first.
func (r *StatsRepository) IdleStats(ctx context.Context) ([]models.URLIdleStat, error) {
	const op = "database.postgres.StatsRepository.IdleStats"

	var recs []idleRecord
	query := `SELECT short_code, access_count, last_accessed_at FROM urls
		ORDER BY last_accessed_at ASC, short_code ASC`

	if err := r.db.SelectContext(ctx, &recs, query); err != nil {
		return nil, fmt.Errorf("%s: failed to select idle urls: %w", op, err)
	}

	now := time.Now()

	stats := make([]models.URLIdleStat, 0, len(recs))
	for _, rec := range recs {
		stats = append(stats, models.URLIdleStat{
			ShortCode:   rec.ShortCode,
			AccessCount: rec.AccessCount,
			IdleFor:     now.Sub(rec.LastAccessedAt),
		})
	}

	return stats, nil
}

type urlDayCountRecord struct {
	ShortCode   string    `db:"short_code"`
	Day         time.Time `db:"day"`
	AccessCount int64     `db:"access_count"`
}

// AccessesPerDay returns the per-day access histogram for every mapping,
// newest day first.
func (r *StatsRepository) AccessesPerDay(ctx context.Context) ([]models.URLDayCount, error) {
	const op = "database.postgres.StatsRepository.AccessesPerDay"

	var recs []urlDayCountRecord
	query := `SELECT u.short_code, a.accessed_at::date AS day, count(*) AS access_count
		FROM url_accesses a
		JOIN urls u ON u.id = a.url_id
		GROUP BY u.short_code, day
		ORDER BY day DESC, u.short_code ASC`

	if err := r.db.SelectContext(ctx, &recs, query); err != nil {
		return nil, fmt.Errorf("%s: failed to select accesses per day: %w", op, err)
	}

	counts := make([]models.URLDayCount, 0, len(recs))
	for _, rec := range recs {
		counts = append(counts, models.URLDayCount{
			ShortCode:   rec.ShortCode,
			Day:         rec.Day,
			AccessCount: rec.AccessCount,
		})
	}

	return counts, nil
}

type dayCountRecord struct {
	Day   time.Time `db:"day"`
	Count int64     `db:"count"`
}

// RegisteredPerDay returns how many mappings were created on each day,
// newest day first.
func (r *StatsRepository) RegisteredPerDay(ctx context.Context) ([]models.DayCount, error) {
	const op = "database.postgres.StatsRepository.RegisteredPerDay"

	var recs []dayCountRecord
	query := `SELECT created_at::date AS day, count(*) AS count
		FROM urls
		GROUP BY day
		ORDER BY day DESC`

	if err := r.db.SelectContext(ctx, &recs, query); err != nil {
		return nil, fmt.Errorf("%s: failed to select registered urls per day: %w", op, err)
	}

	counts := make([]models.DayCount, 0, len(recs))
	for _, rec := range recs {
		counts = append(counts, models.DayCount{
			Day:   rec.Day,
			Count: rec.Count,
		})
	}

	return counts, nil
}
