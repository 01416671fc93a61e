package domain

import (
	"context"
	"time"
)

// Award is the ledger entry written alongside every point increment.
type Award struct {
	ID                 string    `json:"id"`
	UserID             int64     `json:"user_id"`
	WeekStart          time.Time `json:"week_start"`
	PointsAdded        int       `json:"points_added"`
	FinalReductionRate float64   `json:"final_reduction_rate"`
	RateLastWeek       float64   `json:"rate_last_week"`
	RateBaseline       float64   `json:"rate_baseline"`
	ThisWeekGrams      float64   `json:"this_week_grams"`
	LastWeekGrams      float64   `json:"last_week_grams"`
	BaselineGrams      float64   `json:"baseline_grams"`
	CreatedAt          time.Time `json:"created_at"`
}

// PointsResult is returned by a weekly evaluation. Rates are percentages
// rounded to two decimals.
type PointsResult struct {
	PointsAdded        int        `json:"points_added"`
	FinalReductionRate float64    `json:"final_reduction_rate"`
	RateLastWeek       float64    `json:"rate_last_week"`
	RateBaseline       float64    `json:"rate_baseline"`
	ThisWeekGrams      float64    `json:"this_week_grams"`
	LastWeekGrams      float64    `json:"last_week_grams"`
	BaselineGrams      float64    `json:"baseline_grams"`
	Week               WeekWindow `json:"week"`
	TotalPoints        int        `json:"total_points"`
}

// PointsRepository is the port for the user's point accumulator.
type PointsRepository interface {
	// GetUserTotalPoints returns ErrNotFound for an unknown user.
	GetUserTotalPoints(ctx context.Context, userID int64) (int, error)
	// IncrementUserTotalPoints adds award.PointsAdded to the user's total and
	// stores the award in the same transaction, returning the new total.
	// With oncePerWeek set, an existing award for award.WeekStart yields
	// ErrAlreadyAwarded and nothing is written.
	IncrementUserTotalPoints(ctx context.Context, award *Award, oncePerWeek bool) (int, error)
	ListAwards(ctx context.Context, userID int64, limit int) ([]Award, error)
}
