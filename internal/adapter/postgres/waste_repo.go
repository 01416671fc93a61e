package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"foodloss/internal/domain"
)

const recordSelect = `SELECT w.id, w.user_id, w.item_name, w.weight_grams, COALESCE(w.reason_id, 0), COALESCE(r.reason_text, ''), w.recorded_at
FROM waste_records w LEFT JOIN loss_reasons r ON r.id = w.reason_id`

// ListReasons returns every loss reason ordered by ID.
func (d *DB) ListReasons(ctx context.Context) ([]domain.LossReason, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT id, reason_text FROM loss_reasons ORDER BY id;")
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.LossReason
	for rows.Next() {
		var r domain.LossReason
		if err := rows.Scan(&r.ID, &r.Text); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReasonByText looks up a loss reason by its label.
func (d *DB) ReasonByText(ctx context.Context, text string) (*domain.LossReason, error) {
	var r domain.LossReason
	err := d.sql.QueryRowContext(ctx,
		"SELECT id, reason_text FROM loss_reasons WHERE reason_text = $1;", text,
	).Scan(&r.ID, &r.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// AddRecord inserts a new waste record.
func (d *DB) AddRecord(ctx context.Context, userID int64, itemName string, weightGrams float64, reasonID int64, recordedAt time.Time) (int64, error) {
	var id int64
	err := d.sql.QueryRowContext(ctx,
		"INSERT INTO waste_records(user_id, item_name, weight_grams, reason_id, recorded_at) VALUES($1, $2, $3, $4, $5) RETURNING id;",
		userID, itemName, weightGrams, reasonID, recordedAt.UTC(),
	).Scan(&id)
	return id, err
}

// DeleteRecord removes a waste record by ID, scoped to a user.
func (d *DB) DeleteRecord(ctx context.Context, userID, id int64) (bool, error) {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM waste_records WHERE id=$1 AND user_id=$2;", id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListRecentRecords returns the most recent records up to limit for a user.
func (d *DB) ListRecentRecords(ctx context.Context, userID int64, limit int) ([]domain.WasteRecord, error) {
	return d.queryRecords(ctx,
		recordSelect+" WHERE w.user_id=$1 ORDER BY w.recorded_at DESC, w.id DESC LIMIT $2;", userID, limit)
}

// ListRecordsInRange returns a user's records in [start, end], oldest first.
func (d *DB) ListRecordsInRange(ctx context.Context, userID int64, start, end time.Time) ([]domain.WasteRecord, error) {
	return d.queryRecords(ctx,
		recordSelect+" WHERE w.user_id=$1 AND w.recorded_at >= $2 AND w.recorded_at <= $3 ORDER BY w.recorded_at, w.id;",
		userID, start.UTC(), end.UTC())
}

func (d *DB) queryRecords(ctx context.Context, query string, args ...any) ([]domain.WasteRecord, error) {
	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.WasteRecord
	for rows.Next() {
		var r domain.WasteRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.ItemName, &r.WeightGrams, &r.ReasonID, &r.Reason, &r.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SumWeightInRange sums a user's weights in [start, end].
func (d *DB) SumWeightInRange(ctx context.Context, userID int64, start, end time.Time) (float64, error) {
	var total float64
	err := d.sql.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(weight_grams), 0) FROM waste_records WHERE user_id=$1 AND recorded_at >= $2 AND recorded_at <= $3;",
		userID, start.UTC(), end.UTC(),
	).Scan(&total)
	return total, err
}

// SumWeightSince sums a user's weights in [since, until).
func (d *DB) SumWeightSince(ctx context.Context, userID int64, since, until time.Time) (float64, error) {
	var total float64
	err := d.sql.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(weight_grams), 0) FROM waste_records WHERE user_id=$1 AND recorded_at >= $2 AND recorded_at < $3;",
		userID, since.UTC(), until.UTC(),
	).Scan(&total)
	return total, err
}
