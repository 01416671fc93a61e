package domain

import (
	"context"
	"time"
)

// LossReason is one of the fixed reasons a food item was thrown away.
type LossReason struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// WasteRecord is a single discarded food item.
type WasteRecord struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	ItemName    string    `json:"item_name"`
	WeightGrams float64   `json:"weight_grams"`
	ReasonID    int64     `json:"reason_id"`
	Reason      string    `json:"reason"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// WasteRepository is the port for waste record persistence.
//
// SumWeightInRange is inclusive on both ends; SumWeightSince includes since
// and excludes until. Both return 0 when nothing matches.
type WasteRepository interface {
	ListReasons(ctx context.Context) ([]LossReason, error)
	ReasonByText(ctx context.Context, text string) (*LossReason, error)
	AddRecord(ctx context.Context, userID int64, itemName string, weightGrams float64, reasonID int64, recordedAt time.Time) (int64, error)
	DeleteRecord(ctx context.Context, userID, id int64) (bool, error)
	ListRecentRecords(ctx context.Context, userID int64, limit int) ([]WasteRecord, error)
	ListRecordsInRange(ctx context.Context, userID int64, start, end time.Time) ([]WasteRecord, error)
	SumWeightInRange(ctx context.Context, userID int64, start, end time.Time) (float64, error)
	SumWeightSince(ctx context.Context, userID int64, since, until time.Time) (float64, error)
}
