// Package storage persists properties, saved searches, notification
// intents and sweep bookkeeping.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"nestwatch/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence surface used by the services and handlers.
// PostgresStore is the production implementation; MemoryStore backs
// tests.
type Store interface {
	// Properties. Listings are written by the agent-facing workflow
	// and read-only for the matching core.
	InsertProperty(ctx context.Context, p *models.Property) error
	GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error)
	ListProperties(ctx context.Context) ([]models.Property, error)
	// ListPropertiesSince returns properties created strictly after t,
	// oldest first.
	ListPropertiesSince(ctx context.Context, t time.Time) ([]models.Property, error)

	// Saved searches.
	CreateSavedSearch(ctx context.Context, s *models.SavedSearch) error
	GetSavedSearch(ctx context.Context, id uuid.UUID) (*models.SavedSearch, error)
	ListSavedSearches(ctx context.Context) ([]models.SavedSearch, error)
	ListSavedSearchesByUser(ctx context.Context, userID string) ([]models.SavedSearch, error)
	// RecordSearchMatches bumps the unacknowledged match counter and
	// stamps the last alert time.
	RecordSearchMatches(ctx context.Context, id uuid.UUID, matches int, at time.Time) error
	AcknowledgeSavedSearch(ctx context.Context, id uuid.UUID) error
	DeleteSavedSearch(ctx context.Context, id uuid.UUID) error

	// Owner contact resolution for notification intents.
	GetUserContact(ctx context.Context, userID string) (*models.UserContact, error)
	UpsertUserContact(ctx context.Context, u *models.UserContact) error

	// Notification outbox.
	InsertNotification(ctx context.Context, n *models.Notification) error

	// Sweep bookkeeping. The high-water mark only moves forward.
	GetHighWaterMark(ctx context.Context) (time.Time, error)
	AdvanceHighWaterMark(ctx context.Context, t time.Time) error
	AcquireSweepLease(ctx context.Context) (bool, error)
	ReleaseSweepLease(ctx context.Context) error
	CreateSweepRun(ctx context.Context, run *models.SweepRun) error
	FinishSweepRun(ctx context.Context, run *models.SweepRun) error
}
