package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"foodloss/internal/domain"
)

func TestWasteRepository(t *testing.T) {
	db := New()
	ctx := context.Background()
	userID := int64(1)

	reasons, err := db.ListReasons(ctx)
	if err != nil {
		t.Fatalf("ListReasons: %v", err)
	}
	if len(reasons) != len(DefaultReasons) {
		t.Fatalf("expected %d reasons, got %d", len(DefaultReasons), len(reasons))
	}

	reason, err := db.ReasonByText(ctx, "傷み")
	if err != nil {
		t.Fatalf("ReasonByText: %v", err)
	}
	if _, err := db.ReasonByText(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	now := time.Now()
	id, err := db.AddRecord(ctx, userID, "bread", 80, reason.ID, now)
	if err != nil {
		t.Fatalf("AddRecord: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero ID")
	}
	_, _ = db.AddRecord(ctx, userID, "milk", 200, reason.ID, now.Add(time.Minute))

	records, err := db.ListRecentRecords(ctx, userID, 10)
	if err != nil {
		t.Fatalf("ListRecentRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ItemName != "milk" {
		t.Errorf("expected newest first, got %s", records[0].ItemName)
	}
	if records[0].Reason != "傷み" {
		t.Errorf("expected reason text to be joined, got %q", records[0].Reason)
	}

	// Other user sees nothing
	other, _ := db.ListRecentRecords(ctx, 999, 10)
	if len(other) != 0 {
		t.Error("expected 0 records for other user")
	}

	// Other user cannot delete
	ok, _ := db.DeleteRecord(ctx, 999, id)
	if ok {
		t.Error("expected delete by other user to fail")
	}
	ok, err = db.DeleteRecord(ctx, userID, id)
	if err != nil || !ok {
		t.Fatalf("DeleteRecord = %v, %v", ok, err)
	}
	records, _ = db.ListRecentRecords(ctx, userID, 10)
	if len(records) != 1 {
		t.Errorf("expected 1 record, got %d", len(records))
	}
}

func TestWasteRepository_WindowBounds(t *testing.T) {
	db := New()
	ctx := context.Background()
	week := domain.WeekOf(time.Date(2026, 10, 21, 12, 0, 0, 0, time.UTC))

	_, _ = db.AddRecord(ctx, 1, "start", 1, 1, week.Start)
	_, _ = db.AddRecord(ctx, 1, "end", 10, 1, week.End)
	_, _ = db.AddRecord(ctx, 1, "before", 100, 1, week.Start.Add(-time.Microsecond))
	_, _ = db.AddRecord(ctx, 1, "after", 1000, 1, week.Next().Start)

	inRange, err := db.SumWeightInRange(ctx, 1, week.Start, week.End)
	if err != nil {
		t.Fatalf("SumWeightInRange: %v", err)
	}
	if inRange != 11 {
		t.Errorf("inclusive range sum = %v, want 11", inRange)
	}

	since, err := db.SumWeightSince(ctx, 1, week.Start, week.End)
	if err != nil {
		t.Fatalf("SumWeightSince: %v", err)
	}
	if since != 1 {
		t.Errorf("half-open sum = %v, want 1", since)
	}

	listed, _ := db.ListRecordsInRange(ctx, 1, week.Start, week.End)
	if len(listed) != 2 || listed[0].ItemName != "start" || listed[1].ItemName != "end" {
		t.Errorf("unexpected range listing %+v", listed)
	}

	empty, err := db.SumWeightInRange(ctx, 2, week.Start, week.End)
	if err != nil || empty != 0 {
		t.Errorf("empty sum = %v, %v; want 0, nil", empty, err)
	}
}

func TestPointsRepository(t *testing.T) {
	db := New()
	ctx := context.Background()
	u, _ := db.Create(ctx, "alice", "alice@example.com", "hash")
	weekStart := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	if _, err := db.GetUserTotalPoints(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := db.IncrementUserTotalPoints(ctx, &domain.Award{UserID: 999, PointsAdded: 5}, false); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if awards, _ := db.ListAwards(ctx, 999, 10); len(awards) != 0 {
		t.Errorf("missing user should leave no ledger rows, got %d", len(awards))
	}

	total, err := db.IncrementUserTotalPoints(ctx, &domain.Award{ID: "a", UserID: u.ID, WeekStart: weekStart, PointsAdded: 3}, true)
	if err != nil || total != 3 {
		t.Fatalf("first increment = %d, %v", total, err)
	}
	if _, err := db.IncrementUserTotalPoints(ctx, &domain.Award{ID: "b", UserID: u.ID, WeekStart: weekStart, PointsAdded: 3}, true); !errors.Is(err, domain.ErrAlreadyAwarded) {
		t.Fatalf("expected ErrAlreadyAwarded, got %v", err)
	}
	total, err = db.IncrementUserTotalPoints(ctx, &domain.Award{ID: "c", UserID: u.ID, WeekStart: weekStart, PointsAdded: 2}, false)
	if err != nil || total != 5 {
		t.Fatalf("unguarded increment = %d, %v", total, err)
	}

	got, _ := db.GetUserTotalPoints(ctx, u.ID)
	if got != 5 {
		t.Errorf("total = %d, want 5", got)
	}
	awards, _ := db.ListAwards(ctx, u.ID, 10)
	if len(awards) != 2 || awards[0].ID != "c" {
		t.Errorf("unexpected awards %+v", awards)
	}
}

func TestPointsRepository_ConcurrentIncrements(t *testing.T) {
	db := New()
	ctx := context.Background()
	u, _ := db.Create(ctx, "alice", "alice@example.com", "hash")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = db.IncrementUserTotalPoints(ctx, &domain.Award{UserID: u.ID, PointsAdded: 2}, false)
		}()
	}
	wg.Wait()

	total, _ := db.GetUserTotalPoints(ctx, u.ID)
	if total != 100 {
		t.Errorf("total = %d, want 100", total)
	}
}

func TestUserRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	u, err := db.Create(ctx, "bob", "bob@example.com", "hash")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Username != "bob" {
		t.Errorf("expected bob, got %s", u.Username)
	}

	u2, err := db.GetByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if u2.ID != u.ID || u2.Email != "bob@example.com" {
		t.Error("failed to retrieve user")
	}

	if _, err := db.Create(ctx, "bob", "other@example.com", "hash"); !errors.Is(err, domain.ErrDuplicateUser) {
		t.Errorf("expected ErrDuplicateUser, got %v", err)
	}
	if _, err := db.Create(ctx, "carol", "BOB@example.com", "hash"); !errors.Is(err, domain.ErrDuplicateUser) {
		t.Errorf("expected ErrDuplicateUser for reused email, got %v", err)
	}
	if _, err := db.GetByID(ctx, 42); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository(t *testing.T) {
	db := New()
	repo := db.NewSessionRepo()
	ctx := context.Background()

	err := repo.Create(ctx, 1, "token123", "ua", "127.0.0.1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_ = repo.Create(ctx, 1, "old", "ua", "127.0.0.1", time.Now().Add(-time.Hour))

	sess, err := repo.GetByToken(ctx, "token123")
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if sess.UserAgent != "ua" || sess.IP != "127.0.0.1" {
		t.Errorf("unexpected session %+v", sess)
	}

	if err := repo.DeleteExpired(ctx); err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if _, err := repo.GetByToken(ctx, "old"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected expired session to be removed, got %v", err)
	}

	_ = repo.Delete(ctx, "token123")
	if _, err := repo.GetByToken(ctx, "token123"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
