package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"nestwatch/models"
)

// MemoryStore is an in-memory Store used by tests and local
// development. A provided CreatedAt is kept as-is so tests can pin
// timestamps; otherwise the store assigns one, like Postgres does.
type MemoryStore struct {
	mu            sync.Mutex
	properties    map[uuid.UUID]models.Property
	searches      map[uuid.UUID]models.SavedSearch
	contacts      map[string]models.UserContact
	notifications []models.Notification
	highWater     time.Time
	leaseHeld     bool
	runs          []models.SweepRun
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		properties: make(map[uuid.UUID]models.Property),
		searches:   make(map[uuid.UUID]models.SavedSearch),
		contacts:   make(map[string]models.UserContact),
	}
}

func (s *MemoryStore) InsertProperty(_ context.Context, p *models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.properties[p.ID] = *p
	return nil
}

func (s *MemoryStore) GetProperty(_ context.Context, id uuid.UUID) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.properties[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) ListProperties(_ context.Context) ([]models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Property, 0, len(s.properties))
	for _, p := range s.properties {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) ListPropertiesSince(_ context.Context, t time.Time) ([]models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Property
	for _, p := range s.properties {
		if p.CreatedAt.After(t) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) CreateSavedSearch(_ context.Context, sv *models.SavedSearch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sv.ID == uuid.Nil {
		sv.ID = uuid.New()
	}
	if sv.CreatedAt.IsZero() {
		sv.CreatedAt = time.Now().UTC()
	}
	s.searches[sv.ID] = *sv
	return nil
}

func (s *MemoryStore) GetSavedSearch(_ context.Context, id uuid.UUID) (*models.SavedSearch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv, ok := s.searches[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sv, nil
}

func (s *MemoryStore) ListSavedSearches(_ context.Context) ([]models.SavedSearch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SavedSearch, 0, len(s.searches))
	for _, sv := range s.searches {
		out = append(out, sv)
	}
	sortSearches(out)
	return out, nil
}

func (s *MemoryStore) ListSavedSearchesByUser(_ context.Context, userID string) ([]models.SavedSearch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.SavedSearch
	for _, sv := range s.searches {
		if sv.UserID == userID {
			out = append(out, sv)
		}
	}
	sortSearches(out)
	return out, nil
}

func sortSearches(list []models.SavedSearch) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID.String() < list[j].ID.String()
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}

func (s *MemoryStore) RecordSearchMatches(_ context.Context, id uuid.UUID, matches int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv, ok := s.searches[id]
	if !ok {
		return ErrNotFound
	}
	sv.NewMatchCount += matches
	sv.LastAlertAt = &at
	s.searches[id] = sv
	return nil
}

func (s *MemoryStore) AcknowledgeSavedSearch(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv, ok := s.searches[id]
	if !ok {
		return ErrNotFound
	}
	sv.NewMatchCount = 0
	s.searches[id] = sv
	return nil
}

func (s *MemoryStore) DeleteSavedSearch(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.searches[id]; !ok {
		return ErrNotFound
	}
	delete(s.searches, id)
	return nil
}

func (s *MemoryStore) GetUserContact(_ context.Context, userID string) (*models.UserContact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.contacts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) UpsertUserContact(_ context.Context, u *models.UserContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[u.UserID] = *u
	return nil
}

func (s *MemoryStore) InsertNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	s.notifications = append(s.notifications, *n)
	return nil
}

// Notifications returns a copy of the outbox, oldest first.
func (s *MemoryStore) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

func (s *MemoryStore) GetHighWaterMark(_ context.Context) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highWater, nil
}

func (s *MemoryStore) AdvanceHighWaterMark(_ context.Context, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.After(s.highWater) {
		s.highWater = t
	}
	return nil
}

func (s *MemoryStore) AcquireSweepLease(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.leaseHeld {
		return false, nil
	}
	s.leaseHeld = true
	return true, nil
}

func (s *MemoryStore) ReleaseSweepLease(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaseHeld = false
	return nil
}

func (s *MemoryStore) CreateSweepRun(_ context.Context, run *models.SweepRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run.ID = int64(len(s.runs) + 1)
	s.runs = append(s.runs, *run)
	return nil
}

func (s *MemoryStore) FinishSweepRun(_ context.Context, run *models.SweepRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.runs {
		if s.runs[i].ID == run.ID {
			s.runs[i] = *run
			return nil
		}
	}
	return ErrNotFound
}

// SweepRuns returns a copy of recorded runs.
func (s *MemoryStore) SweepRuns() []models.SweepRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SweepRun, len(s.runs))
	copy(out, s.runs)
	return out
}
