package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"foodloss/internal/domain"
)

const maxItemNameLen = 255

// WasteRecorder receives every accepted waste record.
type WasteRecorder interface {
	ObserveWasteRecorded(grams float64)
}

// WasteService encapsulates waste-logging use cases.
type WasteService struct {
	repo     domain.WasteRepository
	cache    domain.StatsCache
	recorder WasteRecorder
}

// NewWasteService creates a WasteService backed by the given repository.
// cache and recorder may be nil.
func NewWasteService(repo domain.WasteRepository, cache domain.StatsCache, recorder WasteRecorder) *WasteService {
	return &WasteService{repo: repo, cache: cache, recorder: recorder}
}

// Reasons lists the accepted loss reasons.
func (s *WasteService) Reasons(ctx context.Context) ([]domain.LossReason, error) {
	return s.repo.ListReasons(ctx)
}

// RecordLoss validates and stores a discarded item.
func (s *WasteService) RecordLoss(ctx context.Context, userID int64, itemName string, weightGrams float64, reasonText string) (int64, error) {
	itemName = strings.TrimSpace(itemName)
	if itemName == "" || utf8.RuneCountInString(itemName) > maxItemNameLen {
		return 0, fmt.Errorf("%w: item_name must be 1 to %d characters", domain.ErrInvalidInput, maxItemNameLen)
	}
	if math.IsNaN(weightGrams) || math.IsInf(weightGrams, 0) || weightGrams < 0 {
		return 0, fmt.Errorf("%w: weight_grams must be a non-negative number", domain.ErrInvalidInput)
	}

	reason, err := s.repo.ReasonByText(ctx, strings.TrimSpace(reasonText))
	if errors.Is(err, domain.ErrNotFound) {
		return 0, fmt.Errorf("%w: invalid loss reason %q", domain.ErrInvalidInput, reasonText)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup reason: %w", err)
	}

	id, err := s.repo.AddRecord(ctx, userID, itemName, weightGrams, reason.ID, time.Now())
	if err != nil {
		return 0, fmt.Errorf("add record: %w", err)
	}
	if s.recorder != nil {
		s.recorder.ObserveWasteRecorded(weightGrams)
	}
	s.invalidate(ctx, userID)
	return id, nil
}

// ListRecent returns the most recent records up to limit.
func (s *WasteService) ListRecent(ctx context.Context, userID int64, limit int) ([]domain.WasteRecord, error) {
	return s.repo.ListRecentRecords(ctx, userID, limit)
}

// UndoLast deletes the most recent record.
func (s *WasteService) UndoLast(ctx context.Context, userID int64) (bool, int64, error) {
	items, err := s.repo.ListRecentRecords(ctx, userID, 1)
	if err != nil {
		return false, 0, err
	}
	if len(items) == 0 {
		return false, 0, nil
	}
	deleted, err := s.Delete(ctx, userID, items[0].ID)
	if err != nil {
		return false, 0, err
	}
	return deleted, items[0].ID, nil
}

// Delete removes one of the user's records.
func (s *WasteService) Delete(ctx context.Context, userID, id int64) (bool, error) {
	deleted, err := s.repo.DeleteRecord(ctx, userID, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.invalidate(ctx, userID)
	}
	return deleted, nil
}

func (s *WasteService) invalidate(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		slog.WarnContext(ctx, "stats cache invalidation failed", "user_id", userID, "error", err)
	}
}
