package service

import (
	"context"
	"fmt"

	"github.com/akosenkov/url-shortener/internal/models"
)

// StatsRepository defines the read-only analytics queries over the URL mappings.
type StatsRepository interface {
	URLsCreatedToday(ctx context.Context) (int64, error)
	AccessesToday(ctx context.Context) (int64, error)
	TopAccessed(ctx context.Context, n int) ([]models.URLAccessCount, error)
	IdleStats(ctx context.Context) ([]models.URLIdleStat, error)
	AccessesPerDay(ctx context.Context) ([]models.URLDayCount, error)
	RegisteredPerDay(ctx context.Context) ([]models.DayCount, error)
}

// StatsService exposes the dashboard views. Results reflect the latest
// committed state at the moment of each call; nothing is cached.
type StatsService struct {
	repo StatsRepository
}

func NewStatsService(repo StatsRepository) *StatsService {
	return &StatsService{
		repo: repo,
	}
}

func (s *StatsService) NewURLsToday(ctx context.Context) (int64, error) {
	const op = "service.StatsService.NewURLsToday"

	count, err := s.repo.URLsCreatedToday(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to count new urls: %w", op, err)
	}

	return count, nil
}

func (s *StatsService) TotalAccessesToday(ctx context.Context) (int64, error) {
	const op = "service.StatsService.TotalAccessesToday"

	count, err := s.repo.AccessesToday(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to count accesses: %w", op, err)
	}

	return count, nil
}

func (s *StatsService) TopAccessed(ctx context.Context, n int) ([]models.URLAccessCount, error) {
	const op = "service.StatsService.TopAccessed"

	urls, err := s.repo.TopAccessed(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get top accessed urls: %w", op, err)
	}

	return urls, nil
}

func (s *StatsService) IdleRanking(ctx context.Context) ([]models.URLIdleStat, error) {
	const op = "service.StatsService.IdleRanking"

	stats, err := s.repo.IdleStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get idle ranking: %w", op, err)
	}

	return stats, nil
}

func (s *StatsService) AccessesPerDay(ctx context.Context) ([]models.URLDayCount, error) {
	const op = "service.StatsService.AccessesPerDay"

	counts, err := s.repo.AccessesPerDay(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get accesses per day: %w", op, err)
	}

	return counts, nil
}

func (s *StatsService) RegisteredPerDay(ctx context.Context) ([]models.DayCount, error) {
	const op = "service.StatsService.RegisteredPerDay"

	counts, err := s.repo.RegisteredPerDay(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get registered urls per day: %w", op, err)
	}

	return counts, nil
}
