// Package notify hands notification intents to the external delivery
// collaborator. Transport (email, push) is not decided here; intents
// are persisted to an outbox the delivery side drains.
package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"nestwatch/models"
	"nestwatch/storage"
)

// Intent is one alert addressed to a saved-search owner, carrying the
// matched properties in the order the sweep found them.
type Intent struct {
	Recipient   models.UserContact
	SearchID    uuid.UUID
	SearchName  string
	Description string
	Matches     []models.PropertySummary
}

// Notifier emits a single notification intent.
type Notifier interface {
	Notify(ctx context.Context, intent *Intent) error
}

// Message renders the one-line alert body.
func (i *Intent) Message() string {
	noun := "new properties"
	if len(i.Matches) == 1 {
		noun = "new property"
	}
	return fmt.Sprintf("%d %s match your saved search %q (%s)",
		len(i.Matches), noun, i.SearchName, i.Description)
}

// StoreNotifier persists intents as outbox rows.
type StoreNotifier struct {
	store storage.Store
}

func NewStoreNotifier(store storage.Store) *StoreNotifier {
	return &StoreNotifier{store: store}
}

func (n *StoreNotifier) Notify(ctx context.Context, intent *Intent) error {
	row := &models.Notification{
		UserID:     intent.Recipient.UserID,
		SearchID:   intent.SearchID,
		SearchName: intent.SearchName,
		Message:    intent.Message(),
		Properties: intent.Matches,
	}
	if err := n.store.InsertNotification(ctx, row); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// LogNotifier writes intents to the log instead of the outbox. Used in
// development and as a safe default when no store is wired.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, intent *Intent) error {
	n.log.Info().
		Str("user_id", intent.Recipient.UserID).
		Str("email", intent.Recipient.Email).
		Str("search", intent.SearchName).
		Int("matches", len(intent.Matches)).
		Msg("notification intent")
	return nil
}
