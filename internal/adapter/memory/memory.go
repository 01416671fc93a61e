// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"foodloss/internal/domain"
)

// DefaultReasons are the loss reasons seeded into a new store.
var DefaultReasons = []string{"食べ残し", "期限切れ", "傷み", "作りすぎ", "その他"}

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	reasons  []domain.LossReason
	records  []domain.WasteRecord
	users    []*domain.User
	awards   []domain.Award
	sessions map[string]*domain.Session

	recordIDCounter int64
	userIDCounter   int64
}

// New creates a new in-memory database seeded with DefaultReasons.
func New() *DB {
	db := &DB{
		sessions: make(map[string]*domain.Session),
	}
	for i, text := range DefaultReasons {
		db.reasons = append(db.reasons, domain.LossReason{ID: int64(i + 1), Text: text})
	}
	return db
}

// Ensure interfaces are met.
var _ domain.WasteRepository = (*DB)(nil)
var _ domain.PointsRepository = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- WasteRepository ---

// ListReasons returns every loss reason ordered by ID.
func (db *DB) ListReasons(ctx context.Context) ([]domain.LossReason, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.LossReason, len(db.reasons))
	copy(result, db.reasons)
	return result, nil
}

// ReasonByText looks up a loss reason by its label.
func (db *DB) ReasonByText(ctx context.Context, text string) (*domain.LossReason, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, r := range db.reasons {
		if r.Text == text {
			ret := r
			return &ret, nil
		}
	}
	return nil, domain.ErrNotFound
}

// AddRecord stores a waste record.
func (db *DB) AddRecord(ctx context.Context, userID int64, itemName string, weightGrams float64, reasonID int64, recordedAt time.Time) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	reason := ""
	for _, r := range db.reasons {
		if r.ID == reasonID {
			reason = r.Text
		}
	}

	db.recordIDCounter++
	id := db.recordIDCounter
	db.records = append(db.records, domain.WasteRecord{
		ID:          id,
		UserID:      userID,
		ItemName:    itemName,
		WeightGrams: weightGrams,
		ReasonID:    reasonID,
		Reason:      reason,
		RecordedAt:  recordedAt.UTC(),
	})
	return id, nil
}

// DeleteRecord deletes one of the user's records.
func (db *DB) DeleteRecord(ctx context.Context, userID, id int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, r := range db.records {
		if r.ID == id && r.UserID == userID {
			db.records = append(db.records[:i], db.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// ListRecentRecords lists the user's most recent records, newest first.
func (db *DB) ListRecentRecords(ctx context.Context, userID int64, limit int) ([]domain.WasteRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var result []domain.WasteRecord
	for _, r := range db.records {
		if r.UserID == userID {
			result = append(result, r)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].RecordedAt.Equal(result[j].RecordedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].RecordedAt.After(result[j].RecordedAt)
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ListRecordsInRange lists the user's records in [start, end], oldest first.
func (db *DB) ListRecordsInRange(ctx context.Context, userID int64, start, end time.Time) ([]domain.WasteRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var result []domain.WasteRecord
	for _, r := range db.records {
		if r.UserID == userID && !r.RecordedAt.Before(start) && !r.RecordedAt.After(end) {
			result = append(result, r)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].RecordedAt.Before(result[j].RecordedAt)
	})
	return result, nil
}

// SumWeightInRange sums the user's weights in [start, end].
func (db *DB) SumWeightInRange(ctx context.Context, userID int64, start, end time.Time) (float64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var total float64
	for _, r := range db.records {
		if r.UserID == userID && !r.RecordedAt.Before(start) && !r.RecordedAt.After(end) {
			total += r.WeightGrams
		}
	}
	return total, nil
}

// SumWeightSince sums the user's weights in [since, until).
func (db *DB) SumWeightSince(ctx context.Context, userID int64, since, until time.Time) (float64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var total float64
	for _, r := range db.records {
		if r.UserID == userID && !r.RecordedAt.Before(since) && r.RecordedAt.Before(until) {
			total += r.WeightGrams
		}
	}
	return total, nil
}

// --- PointsRepository ---

// GetUserTotalPoints returns the user's accumulated points.
func (db *DB) GetUserTotalPoints(ctx context.Context, userID int64) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u := db.userByID(userID)
	if u == nil {
		return 0, domain.ErrNotFound
	}
	return u.TotalPoints, nil
}

// IncrementUserTotalPoints adds the award to the user's total and ledger
// under a single lock.
func (db *DB) IncrementUserTotalPoints(ctx context.Context, award *domain.Award, oncePerWeek bool) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u := db.userByID(award.UserID)
	if u == nil {
		return 0, domain.ErrNotFound
	}
	if oncePerWeek {
		for _, a := range db.awards {
			if a.UserID == award.UserID && a.WeekStart.Equal(award.WeekStart) {
				return 0, domain.ErrAlreadyAwarded
			}
		}
	}

	u.TotalPoints += award.PointsAdded
	db.awards = append(db.awards, *award)
	return u.TotalPoints, nil
}

// ListAwards lists the user's most recent awards, newest first.
func (db *DB) ListAwards(ctx context.Context, userID int64, limit int) ([]domain.Award, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var result []domain.Award
	for i := len(db.awards) - 1; i >= 0 && len(result) < limit; i-- {
		if db.awards[i].UserID == userID {
			result = append(result, db.awards[i])
		}
	}
	return result, nil
}

// --- UserRepository ---

func (db *DB) userByID(id int64) *domain.User {
	for _, u := range db.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			ret := *u
			return &ret, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if u := db.userByID(id); u != nil {
		ret := *u
		return &ret, nil
	}
	return nil, domain.ErrNotFound
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username || strings.EqualFold(u.Email, email) {
			return nil, domain.ErrDuplicateUser
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	ret := *u
	return &ret, nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		ret := *s
		return &ret, nil
	}
	return nil, domain.ErrNotFound
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
