package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/akosenkov/url-shortener/internal/database"
	"github.com/akosenkov/url-shortener/internal/models"
)

type urlRecord struct {
	ID             int64     `db:"id"`
	ShortCode      string    `db:"short_code"`
	OriginalURL    string    `db:"original_url"`
	AccessCount    int64     `db:"access_count"`
	CreatedAt      time.Time `db:"created_at"`
	LastAccessedAt time.Time `db:"last_accessed_at"`
}

func (r *urlRecord) ToURL() *models.URL {
	return &models.URL{
		ID:             r.ID,
		ShortCode:      r.ShortCode,
		OriginalURL:    r.OriginalURL,
		AccessCount:    r.AccessCount,
		CreatedAt:      r.CreatedAt,
		LastAccessedAt: r.LastAccessedAt,
	}
}

// URLRepository owns all reads and writes of URL mappings.
// No other component touches the urls and url_accesses tables.
type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{
		db: db,
	}
}

// Create inserts a new mapping. The short_code unique constraint is the
// only uniqueness guarantee; collisions surface as ErrShortCodeExists so
// the caller can retry with a fresh code.
func (r *URLRepository) Create(ctx context.Context, shortCode, originalURL string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.Create"

	rec := new(urlRecord)
	query := `INSERT INTO urls(short_code, original_url)
		VALUES ($1, $2)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, shortCode, originalURL)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to create url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

// Resolve returns the mapping for the given short code, incrementing its
// access counter and stamping last_accessed_at in the same statement.
// The conditional UPDATE serializes concurrent resolves of the same code
// at the row level, so no increment is ever lost. The access event row is
// written in the same transaction as the counter update.
func (r *URLRepository) Resolve(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.Resolve"

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	rec := new(urlRecord)
	query := `UPDATE urls
		SET access_count = access_count + 1,
			last_accessed_at = now()
		WHERE short_code = $1
		RETURNING *`

	err = tx.GetContext(ctx, rec, query, shortCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to resolve url record: %w", op, err)
	}

	eventQuery := `INSERT INTO url_accesses(url_id) VALUES ($1)`

	if _, err := tx.ExecContext(ctx, eventQuery, rec.ID); err != nil {
		return nil, fmt.Errorf("%s: failed to record url access: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return rec.ToURL(), nil
}

// DeleteIdle removes every mapping whose last access is older than the
// threshold and returns how many rows were removed. Access events go with
// the mapping via ON DELETE CASCADE. Safe to run concurrently with
// resolves and with other sweeps: deleting an already-deleted row is a
// no-op.
func (r *URLRepository) DeleteIdle(ctx context.Context, threshold time.Duration) (int64, error) {
	const op = "database.postgres.URLRepository.DeleteIdle"

	query := `DELETE FROM urls
		WHERE last_accessed_at < now() - make_interval(secs => $1)`

	res, err := r.db.ExecContext(ctx, query, threshold.Seconds())
	if err != nil {
		return 0, fmt.Errorf("%s: failed to delete idle url records: %w", op, err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}

	return count, nil
}
