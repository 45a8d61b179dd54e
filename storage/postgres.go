package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"nestwatch/models"
)

// sweepLeaseKey is the advisory lock key guarding "one sweep at a
// time". Arbitrary but fixed for the lifetime of the deployment.
const sweepLeaseKey = 824001

type PostgresStore struct {
	pool *pgxpool.Pool

	mu        sync.Mutex
	leaseConn *pgxpool.Conn // held while the sweep lease is ours
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) Close() {
	s.mu.Lock()
	if s.leaseConn != nil {
		s.leaseConn.Release()
		s.leaseConn = nil
	}
	s.mu.Unlock()
	s.pool.Close()
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS properties (
		id UUID PRIMARY KEY,
		kind TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		price BIGINT NOT NULL DEFAULT 0 CHECK (price >= 0),
		beds INTEGER NOT NULL DEFAULT 0 CHECK (beds >= 0),
		baths INTEGER NOT NULL DEFAULT 0 CHECK (baths >= 0),
		home_type TEXT NOT NULL DEFAULT '',
		sqft INTEGER NOT NULL DEFAULT 0 CHECK (sqft >= 0),
		furnished BOOLEAN NOT NULL DEFAULT FALSE,
		power_supply TEXT NOT NULL DEFAULT '',
		water_supply TEXT NOT NULL DEFAULT '',
		security TEXT[] NOT NULL DEFAULT '{}',
		description TEXT NOT NULL DEFAULT '',
		agent_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_properties_created_at ON properties (created_at);

	CREATE TABLE IF NOT EXISTS saved_searches (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		search_params TEXT NOT NULL DEFAULT '',
		alert_frequency TEXT NOT NULL DEFAULT 'instant',
		new_match_count INTEGER NOT NULL DEFAULT 0 CHECK (new_match_count >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_alert_at TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS idx_saved_searches_user ON saved_searches (user_id);

	CREATE TABLE IF NOT EXISTS user_contacts (
		user_id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		search_id UUID NOT NULL,
		search_name TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		properties JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS sweep_state (
		id INTEGER PRIMARY KEY,
		high_water TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sweep_runs (
		id BIGSERIAL PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ,
		status TEXT NOT NULL,
		window_start TIMESTAMPTZ NOT NULL,
		processed_searches INTEGER NOT NULL DEFAULT 0,
		new_properties_found INTEGER NOT NULL DEFAULT 0,
		emails_sent INTEGER NOT NULL DEFAULT 0,
		errors_count INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT ''
	)`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// =============================================================================
// Properties
// =============================================================================

const propertyColumns = `id, kind, address, city, state, price, beds, baths,
	home_type, sqft, furnished, power_supply, water_supply, security,
	description, agent_id, created_at`

func (s *PostgresStore) InsertProperty(ctx context.Context, p *models.Property) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	query := `
		INSERT INTO properties (
			id, kind, address, city, state, price, beds, baths, home_type,
			sqft, furnished, power_supply, water_supply, security,
			description, agent_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
		RETURNING created_at`

	return s.pool.QueryRow(ctx, query,
		p.ID, p.Kind, p.Address, p.City, p.State, p.Price, p.Beds, p.Baths,
		p.HomeType, p.SqFt, p.Furnished, p.PowerSupply, p.WaterSupply,
		p.Security, p.Description, p.AgentID,
	).Scan(&p.CreatedAt)
}

func (s *PostgresStore) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	var p models.Property
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Kind, &p.Address, &p.City, &p.State, &p.Price, &p.Beds, &p.Baths,
		&p.HomeType, &p.SqFt, &p.Furnished, &p.PowerSupply, &p.WaterSupply,
		&p.Security, &p.Description, &p.AgentID, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) ListProperties(ctx context.Context) ([]models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties ORDER BY created_at DESC`
	return s.queryProperties(ctx, query)
}

func (s *PostgresStore) ListPropertiesSince(ctx context.Context, t time.Time) ([]models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE created_at > $1 ORDER BY created_at ASC`
	return s.queryProperties(ctx, query, t)
}

func (s *PostgresStore) queryProperties(ctx context.Context, query string, args ...any) ([]models.Property, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Property
	for rows.Next() {
		var p models.Property
		if err := rows.Scan(
			&p.ID, &p.Kind, &p.Address, &p.City, &p.State, &p.Price, &p.Beds, &p.Baths,
			&p.HomeType, &p.SqFt, &p.Furnished, &p.PowerSupply, &p.WaterSupply,
			&p.Security, &p.Description, &p.AgentID, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// Saved searches
// =============================================================================

const savedSearchColumns = `id, user_id, name, description, search_params,
	alert_frequency, new_match_count, created_at, last_alert_at`

func (s *PostgresStore) CreateSavedSearch(ctx context.Context, sv *models.SavedSearch) error {
	if sv.ID == uuid.Nil {
		sv.ID = uuid.New()
	}
	query := `
		INSERT INTO saved_searches (
			id, user_id, name, description, search_params, alert_frequency
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	return s.pool.QueryRow(ctx, query,
		sv.ID, sv.UserID, sv.Name, sv.Description, sv.SearchParams, sv.Frequency,
	).Scan(&sv.CreatedAt)
}

func (s *PostgresStore) GetSavedSearch(ctx context.Context, id uuid.UUID) (*models.SavedSearch, error) {
	query := `SELECT ` + savedSearchColumns + ` FROM saved_searches WHERE id = $1`

	var sv models.SavedSearch
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&sv.ID, &sv.UserID, &sv.Name, &sv.Description, &sv.SearchParams,
		&sv.Frequency, &sv.NewMatchCount, &sv.CreatedAt, &sv.LastAlertAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sv, nil
}

func (s *PostgresStore) ListSavedSearches(ctx context.Context) ([]models.SavedSearch, error) {
	query := `SELECT ` + savedSearchColumns + ` FROM saved_searches ORDER BY created_at ASC`
	return s.querySavedSearches(ctx, query)
}

func (s *PostgresStore) ListSavedSearchesByUser(ctx context.Context, userID string) ([]models.SavedSearch, error) {
	query := `SELECT ` + savedSearchColumns + ` FROM saved_searches WHERE user_id = $1 ORDER BY created_at ASC`
	return s.querySavedSearches(ctx, query, userID)
}

func (s *PostgresStore) querySavedSearches(ctx context.Context, query string, args ...any) ([]models.SavedSearch, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SavedSearch
	for rows.Next() {
		var sv models.SavedSearch
		if err := rows.Scan(
			&sv.ID, &sv.UserID, &sv.Name, &sv.Description, &sv.SearchParams,
			&sv.Frequency, &sv.NewMatchCount, &sv.CreatedAt, &sv.LastAlertAt,
		); err != nil {
			return nil, err
		}
		out = append(out, sv)
	}
	return out, rows.Err()
}

func (s *PostgresStore) RecordSearchMatches(ctx context.Context, id uuid.UUID, matches int, at time.Time) error {
	query := `
		UPDATE saved_searches
		SET new_match_count = new_match_count + $2, last_alert_at = $3
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id, matches, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AcknowledgeSavedSearch(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `UPDATE saved_searches SET new_match_count = 0 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteSavedSearch(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM saved_searches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// =============================================================================
// User contacts
// =============================================================================

func (s *PostgresStore) GetUserContact(ctx context.Context, userID string) (*models.UserContact, error) {
	query := `SELECT user_id, name, email, created_at FROM user_contacts WHERE user_id = $1`

	var u models.UserContact
	err := s.pool.QueryRow(ctx, query, userID).Scan(&u.UserID, &u.Name, &u.Email, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) UpsertUserContact(ctx context.Context, u *models.UserContact) error {
	query := `
		INSERT INTO user_contacts (user_id, name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email`

	_, err := s.pool.Exec(ctx, query, u.UserID, u.Name, u.Email)
	return err
}

// =============================================================================
// Notifications
// =============================================================================

func (s *PostgresStore) InsertNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	query := `
		INSERT INTO notifications (id, user_id, search_id, search_name, message, properties)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	return s.pool.QueryRow(ctx, query,
		n.ID, n.UserID, n.SearchID, n.SearchName, n.Message, n.Properties,
	).Scan(&n.CreatedAt)
}

// =============================================================================
// Sweep bookkeeping
// =============================================================================

func (s *PostgresStore) GetHighWaterMark(ctx context.Context) (time.Time, error) {
	var t time.Time
	err := s.pool.QueryRow(ctx, `SELECT high_water FROM sweep_state WHERE id = 1`).Scan(&t)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// AdvanceHighWaterMark moves the mark forward, never backward; GREATEST
// guards against a retried sweep of an older window regressing it.
func (s *PostgresStore) AdvanceHighWaterMark(ctx context.Context, t time.Time) error {
	query := `
		INSERT INTO sweep_state (id, high_water) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET
			high_water = GREATEST(sweep_state.high_water, EXCLUDED.high_water)`

	_, err := s.pool.Exec(ctx, query, t)
	return err
}

// AcquireSweepLease takes the session-level advisory lock guarding the
// sweep. The pooled connection is pinned until release so the lock
// survives for the whole run.
func (s *PostgresStore) AcquireSweepLease(ctx context.Context) (bool, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return false, err
	}

	var acquired bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, sweepLeaseKey).Scan(&acquired); err != nil {
		conn.Release()
		return false, err
	}
	if !acquired {
		conn.Release()
		return false, nil
	}

	s.mu.Lock()
	s.leaseConn = conn
	s.mu.Unlock()
	return true, nil
}

func (s *PostgresStore) ReleaseSweepLease(ctx context.Context) error {
	s.mu.Lock()
	conn := s.leaseConn
	s.leaseConn = nil
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	_, err := conn.Exec(ctx, `SELECT pg_advisory_unlock($1)`, sweepLeaseKey)
	conn.Release()
	return err
}

func (s *PostgresStore) CreateSweepRun(ctx context.Context, run *models.SweepRun) error {
	query := `
		INSERT INTO sweep_runs (started_at, status, window_start)
		VALUES ($1, $2, $3)
		RETURNING id`

	return s.pool.QueryRow(ctx, query, run.StartedAt, run.Status, run.WindowStart).Scan(&run.ID)
}

func (s *PostgresStore) FinishSweepRun(ctx context.Context, run *models.SweepRun) error {
	query := `
		UPDATE sweep_runs
		SET finished_at = $2, status = $3, processed_searches = $4,
			new_properties_found = $5, emails_sent = $6, errors_count = $7,
			error_message = $8
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query,
		run.ID, run.FinishedAt, run.Status, run.ProcessedSearches,
		run.NewPropertiesFound, run.EmailsSent, run.ErrorsCount, run.ErrorMessage,
	)
	return err
}
