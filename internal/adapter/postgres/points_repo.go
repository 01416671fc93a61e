package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"foodloss/internal/domain"
)

// GetUserTotalPoints returns a user's accumulated points.
func (d *DB) GetUserTotalPoints(ctx context.Context, userID int64) (int, error) {
	var total int
	err := d.sql.QueryRowContext(ctx, "SELECT total_points FROM users WHERE id=$1;", userID).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	return total, err
}

// IncrementUserTotalPoints locks the user row, adds the award and writes the
// ledger row in one transaction.
func (d *DB) IncrementUserTotalPoints(ctx context.Context, award *domain.Award, oncePerWeek bool) (int, error) {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck

	var total int
	err = tx.QueryRowContext(ctx, "SELECT total_points FROM users WHERE id=$1 FOR UPDATE;", award.UserID).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lock user: %w", err)
	}

	if oncePerWeek {
		var exists bool
		err = tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM point_awards WHERE user_id=$1 AND week_start=$2);",
			award.UserID, award.WeekStart.UTC(),
		).Scan(&exists)
		if err != nil {
			return 0, fmt.Errorf("check award: %w", err)
		}
		if exists {
			return 0, domain.ErrAlreadyAwarded
		}
	}

	err = tx.QueryRowContext(ctx,
		"UPDATE users SET total_points = total_points + $1 WHERE id=$2 RETURNING total_points;",
		award.PointsAdded, award.UserID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("update total: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO point_awards (id, user_id, week_start, points_added, final_rate, rate_last_week, rate_baseline,
			this_week_grams, last_week_grams, baseline_grams, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
		award.ID, award.UserID, award.WeekStart.UTC(), award.PointsAdded, award.FinalReductionRate,
		award.RateLastWeek, award.RateBaseline, award.ThisWeekGrams, award.LastWeekGrams,
		award.BaselineGrams, award.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert award: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return total, nil
}

// ListAwards returns a user's most recent awards up to limit.
func (d *DB) ListAwards(ctx context.Context, userID int64, limit int) ([]domain.Award, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, user_id, week_start, points_added, final_rate, rate_last_week, rate_baseline,
			this_week_grams, last_week_grams, baseline_grams, created_at
		FROM point_awards WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2;`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.Award, 0, limit)
	for rows.Next() {
		var a domain.Award
		if err := rows.Scan(&a.ID, &a.UserID, &a.WeekStart, &a.PointsAdded, &a.FinalReductionRate,
			&a.RateLastWeek, &a.RateBaseline, &a.ThisWeekGrams, &a.LastWeekGrams,
			&a.BaselineGrams, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
