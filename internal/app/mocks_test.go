package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"foodloss/internal/domain"
)

type mockWasteRepo struct {
	listReasonsFn        func(ctx context.Context) ([]domain.LossReason, error)
	reasonByTextFn       func(ctx context.Context, text string) (*domain.LossReason, error)
	addRecordFn          func(ctx context.Context, userID int64, itemName string, weightGrams float64, reasonID int64, recordedAt time.Time) (int64, error)
	deleteRecordFn       func(ctx context.Context, userID, id int64) (bool, error)
	listRecentRecordsFn  func(ctx context.Context, userID int64, limit int) ([]domain.WasteRecord, error)
	listRecordsInRangeFn func(ctx context.Context, userID int64, start, end time.Time) ([]domain.WasteRecord, error)
	sumWeightInRangeFn   func(ctx context.Context, userID int64, start, end time.Time) (float64, error)
	sumWeightSinceFn     func(ctx context.Context, userID int64, since, until time.Time) (float64, error)
}

func (m *mockWasteRepo) ListReasons(ctx context.Context) ([]domain.LossReason, error) {
	if m.listReasonsFn != nil {
		return m.listReasonsFn(ctx)
	}
	return nil, nil
}

func (m *mockWasteRepo) ReasonByText(ctx context.Context, text string) (*domain.LossReason, error) {
	if m.reasonByTextFn != nil {
		return m.reasonByTextFn(ctx, text)
	}
	return nil, domain.ErrNotFound
}

func (m *mockWasteRepo) AddRecord(ctx context.Context, userID int64, itemName string, weightGrams float64, reasonID int64, recordedAt time.Time) (int64, error) {
	if m.addRecordFn != nil {
		return m.addRecordFn(ctx, userID, itemName, weightGrams, reasonID, recordedAt)
	}
	return 1, nil
}

func (m *mockWasteRepo) DeleteRecord(ctx context.Context, userID, id int64) (bool, error) {
	if m.deleteRecordFn != nil {
		return m.deleteRecordFn(ctx, userID, id)
	}
	return false, nil
}

func (m *mockWasteRepo) ListRecentRecords(ctx context.Context, userID int64, limit int) ([]domain.WasteRecord, error) {
	if m.listRecentRecordsFn != nil {
		return m.listRecentRecordsFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockWasteRepo) ListRecordsInRange(ctx context.Context, userID int64, start, end time.Time) ([]domain.WasteRecord, error) {
	if m.listRecordsInRangeFn != nil {
		return m.listRecordsInRangeFn(ctx, userID, start, end)
	}
	return nil, nil
}

func (m *mockWasteRepo) SumWeightInRange(ctx context.Context, userID int64, start, end time.Time) (float64, error) {
	if m.sumWeightInRangeFn != nil {
		return m.sumWeightInRangeFn(ctx, userID, start, end)
	}
	return 0, nil
}

func (m *mockWasteRepo) SumWeightSince(ctx context.Context, userID int64, since, until time.Time) (float64, error) {
	if m.sumWeightSinceFn != nil {
		return m.sumWeightSinceFn(ctx, userID, since, until)
	}
	return 0, nil
}

type mockPointsRepo struct {
	getTotalFn  func(ctx context.Context, userID int64) (int, error)
	incrementFn func(ctx context.Context, award *domain.Award, oncePerWeek bool) (int, error)
	listFn      func(ctx context.Context, userID int64, limit int) ([]domain.Award, error)
}

func (m *mockPointsRepo) GetUserTotalPoints(ctx context.Context, userID int64) (int, error) {
	if m.getTotalFn != nil {
		return m.getTotalFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockPointsRepo) IncrementUserTotalPoints(ctx context.Context, award *domain.Award, oncePerWeek bool) (int, error) {
	if m.incrementFn != nil {
		return m.incrementFn(ctx, award, oncePerWeek)
	}
	return award.PointsAdded, nil
}

func (m *mockPointsRepo) ListAwards(ctx context.Context, userID int64, limit int) ([]domain.Award, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, limit)
	}
	return nil, nil
}

type mockStatsCache struct {
	mu          sync.Mutex
	entries     map[string]*domain.WeeklyStats
	gets        int
	sets        int
	invalidated []int64
}

func newMockStatsCache() *mockStatsCache {
	return &mockStatsCache{entries: make(map[string]*domain.WeeklyStats)}
}

func cacheKey(userID int64, weekStart time.Time) string {
	return fmt.Sprintf("%d/%s", userID, weekStart.Format(domain.DayLayout))
}

func (m *mockStatsCache) GetWeekly(ctx context.Context, userID int64, weekStart time.Time) (*domain.WeeklyStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	return m.entries[cacheKey(userID, weekStart)], nil
}

func (m *mockStatsCache) SetWeekly(ctx context.Context, userID int64, weekStart time.Time, stats *domain.WeeklyStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.entries[cacheKey(userID, weekStart)] = stats
	return nil
}

func (m *mockStatsCache) InvalidateUser(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, userID)
	return nil
}

type recordedAward struct {
	outcome string
	points  int
}

type fakeRecorder struct {
	mu     sync.Mutex
	awards []recordedAward
	grams  []float64
}

func (f *fakeRecorder) ObserveAward(outcome string, points int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.awards = append(f.awards, recordedAward{outcome, points})
}

func (f *fakeRecorder) ObserveWasteRecorded(grams float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grams = append(f.grams, grams)
}
