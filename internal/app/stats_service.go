package app

import (
	"context"
	"log/slog"
	"math"
	"time"

	"foodloss/internal/domain"
)

const unknownReason = "unknown"

// StatsService builds the weekly log and chart data.
type StatsService struct {
	repo  domain.WasteRepository
	cache domain.StatsCache
}

// NewStatsService creates a StatsService. cache may be nil.
func NewStatsService(repo domain.WasteRepository, cache domain.StatsCache) *StatsService {
	return &StatsService{repo: repo, cache: cache}
}

// Weekly returns the records and per-day totals for the week containing ref.
func (s *StatsService) Weekly(ctx context.Context, userID int64, ref time.Time) (*domain.WeeklyStats, error) {
	week := domain.WeekOf(ref)

	if s.cache != nil {
		cached, err := s.cache.GetWeekly(ctx, userID, week.Start)
		if err != nil {
			slog.WarnContext(ctx, "stats cache read failed", "user_id", userID, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	records, err := s.repo.ListRecordsInRange(ctx, userID, week.Start, week.End)
	if err != nil {
		return nil, err
	}

	loc := ref.Location()
	stats := &domain.WeeklyStats{
		WeekStart:      week.Start.Format(domain.DayLayout),
		WeekEnd:        week.End.Format(domain.DayLayout),
		PrevWeek:       week.Previous().Start.Format(domain.DayLayout),
		NextWeek:       week.Next().Start.Format(domain.DayLayout),
		IsDataPresent:  len(records) > 0,
		DishTable:      make([]domain.DishRow, 0, len(records)),
		DailyGraphData: make([]domain.DailyBar, 0, 7),
	}

	perDay := make(map[string]float64, 7)
	for _, r := range records {
		day := r.RecordedAt.In(loc).Format(domain.DayLayout)
		perDay[day] += r.WeightGrams
		stats.TotalGrams += r.WeightGrams

		reason := r.Reason
		if reason == "" {
			reason = unknownReason
		}
		stats.DishTable = append(stats.DishTable, domain.DishRow{
			ID:          r.ID,
			DishName:    r.ItemName,
			WeightGrams: round1(r.WeightGrams),
			Reason:      reason,
			Date:        day,
		})
	}
	stats.TotalGrams = round1(stats.TotalGrams)

	for _, d := range week.Days() {
		day := d.Format(domain.DayLayout)
		stats.DailyGraphData = append(stats.DailyGraphData, domain.DailyBar{
			Day:        d.Format("Mon"),
			Date:       day,
			TotalGrams: round1(perDay[day]),
		})
	}

	if s.cache != nil {
		if err := s.cache.SetWeekly(ctx, userID, week.Start, stats); err != nil {
			slog.WarnContext(ctx, "stats cache write failed", "user_id", userID, "error", err)
		}
	}
	return stats, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
