package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"foodloss/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// PointsRecorder receives the outcome of each weekly evaluation.
type PointsRecorder interface {
	ObserveAward(outcome string, points int)
}

// Award evaluation outcomes reported to the PointsRecorder.
const (
	OutcomeAwarded  = "awarded"
	OutcomeNoPoints = "no_points"
	OutcomeNotFound = "user_not_found"
	OutcomeRepeated = "already_awarded"
	OutcomeError    = "error"
)

// PointsService implements the weekly waste-reduction scoring.
type PointsService struct {
	waste       domain.WasteRepository
	points      domain.PointsRepository
	now         func() time.Time
	oncePerWeek bool
	recorder    PointsRecorder
	group       singleflight.Group
}

// PointsOption configures a PointsService.
type PointsOption func(*PointsService)

// WithClock overrides the evaluation clock.
func WithClock(now func() time.Time) PointsOption {
	return func(s *PointsService) { s.now = now }
}

// WithOncePerWeek limits awards to one per user per calendar week.
func WithOncePerWeek(enabled bool) PointsOption {
	return func(s *PointsService) { s.oncePerWeek = enabled }
}

// WithRecorder reports evaluation outcomes to r.
func WithRecorder(r PointsRecorder) PointsOption {
	return func(s *PointsService) { s.recorder = r }
}

// NewPointsService creates a PointsService backed by the given repositories.
func NewPointsService(waste domain.WasteRepository, points domain.PointsRepository, opts ...PointsOption) *PointsService {
	s := &PointsService{waste: waste, points: points, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SumGramsInWindow sums a user's recorded waste in [start, end].
func (s *PointsService) SumGramsInWindow(ctx context.Context, userID int64, start, end time.Time) (float64, error) {
	return s.waste.SumWeightInRange(ctx, userID, start, end)
}

// SumGramsTrailing sums a user's recorded waste in [now - weeksAgo weeks, now).
func (s *PointsService) SumGramsTrailing(ctx context.Context, userID int64, weeksAgo int) (float64, error) {
	return s.sumTrailing(ctx, userID, s.now(), weeksAgo)
}

func (s *PointsService) sumTrailing(ctx context.Context, userID int64, now time.Time, weeksAgo int) (float64, error) {
	since := now.Add(-time.Duration(weeksAgo) * 7 * 24 * time.Hour)
	return s.waste.SumWeightSince(ctx, userID, since, now)
}

// Total returns the user's accumulated points.
func (s *PointsService) Total(ctx context.Context, userID int64) (int, error) {
	total, err := s.points.GetUserTotalPoints(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, ErrUserNotFound
	}
	return total, err
}

// History returns the most recent awards up to limit.
func (s *PointsService) History(ctx context.Context, userID int64, limit int) ([]domain.Award, error) {
	return s.points.ListAwards(ctx, userID, limit)
}

// AwardWeeklyPoints scores this week's waste against last week and the
// four-week baseline, and adds the resulting points to the user's total.
// Concurrent calls for the same user share one evaluation. The shared
// evaluation is detached from any single caller's cancellation; a caller
// whose ctx ends stops waiting and gets ctx.Err().
func (s *PointsService) AwardWeeklyPoints(ctx context.Context, userID int64) (*domain.PointsResult, error) {
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(strconv.FormatInt(userID, 10), func() (any, error) {
		return s.awardWeeklyPoints(shared, userID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		res := *r.Val.(*domain.PointsResult)
		return &res, nil
	}
}

func (s *PointsService) awardWeeklyPoints(ctx context.Context, userID int64) (*domain.PointsResult, error) {
	now := s.now()
	thisWeek := domain.WeekOf(now)
	lastWeek := thisWeek.Previous()

	thisWeekGrams, err := s.SumGramsInWindow(ctx, userID, thisWeek.Start, thisWeek.End)
	if err != nil {
		s.observe(OutcomeError, 0)
		return nil, fmt.Errorf("sum this week: %w", err)
	}
	lastWeekGrams, err := s.SumGramsInWindow(ctx, userID, lastWeek.Start, lastWeek.End)
	if err != nil {
		s.observe(OutcomeError, 0)
		return nil, fmt.Errorf("sum last week: %w", err)
	}
	trailing, err := s.sumTrailing(ctx, userID, now, domain.BaselineWeeks)
	if err != nil {
		s.observe(OutcomeError, 0)
		return nil, fmt.Errorf("sum baseline: %w", err)
	}
	baselineGrams := trailing / domain.BaselineWeeks

	rateLastWeek, rateBaseline := domain.EvaluateRates(thisWeekGrams, lastWeekGrams, baselineGrams)
	final := domain.FinalRate(rateLastWeek, rateBaseline)
	points := domain.PointsForRate(final)

	award := &domain.Award{
		ID:                 uuid.NewString(),
		UserID:             userID,
		WeekStart:          thisWeek.Start,
		PointsAdded:        points,
		FinalReductionRate: final,
		RateLastWeek:       rateLastWeek,
		RateBaseline:       rateBaseline,
		ThisWeekGrams:      thisWeekGrams,
		LastWeekGrams:      lastWeekGrams,
		BaselineGrams:      baselineGrams,
		CreatedAt:          now,
	}
	total, err := s.points.IncrementUserTotalPoints(ctx, award, s.oncePerWeek)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.observe(OutcomeNotFound, 0)
		return nil, ErrUserNotFound
	case errors.Is(err, domain.ErrAlreadyAwarded):
		s.observe(OutcomeRepeated, 0)
		return nil, ErrAlreadyAwarded
	case err != nil:
		s.observe(OutcomeError, 0)
		return nil, fmt.Errorf("increment points: %w", err)
	}

	outcome := OutcomeNoPoints
	if points > 0 {
		outcome = OutcomeAwarded
	}
	s.observe(outcome, points)
	slog.InfoContext(ctx, "weekly points evaluated",
		"user_id", userID,
		"week_start", thisWeek.Start.Format(domain.DayLayout),
		"points_added", points,
		"final_rate", final,
		"total_points", total,
	)

	return &domain.PointsResult{
		PointsAdded:        points,
		FinalReductionRate: domain.Percent(final),
		RateLastWeek:       domain.Percent(rateLastWeek),
		RateBaseline:       domain.Percent(rateBaseline),
		ThisWeekGrams:      thisWeekGrams,
		LastWeekGrams:      lastWeekGrams,
		BaselineGrams:      baselineGrams,
		Week:               thisWeek,
		TotalPoints:        total,
	}, nil
}

func (s *PointsService) observe(outcome string, points int) {
	if s.recorder != nil {
		s.recorder.ObserveAward(outcome, points)
	}
}
