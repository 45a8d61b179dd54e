package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// NoMaxPrice is the unbounded price ceiling. A criteria with this
// ceiling passes every listing regardless of price.
const NoMaxPrice int64 = math.MaxInt64

// KindBuy and KindRent are the listing-kind selectors accepted in
// search parameters. They map onto ListingSale / ListingRent.
const (
	KindBuy  = "buy"
	KindRent = "rent"
)

// FeatureTag is one entry of the fixed amenity vocabulary a search
// can require.
type FeatureTag string

const (
	FeatureFurnished FeatureTag = "furnished"
	FeatureGenerator FeatureTag = "generator"
	FeatureBorehole  FeatureTag = "borehole"
	FeatureGated     FeatureTag = "gated"
)

// FilterCriteria is the parsed, normalized form of one search's
// parameters. Zero values mean "not restricted": empty strings and
// empty slices pass everything, numeric minimums of 0 pass everything,
// and MaxPrice defaults to NoMaxPrice. A MaxSqFt of 0 likewise means
// unset; the flat encoding cannot express an explicit zero bound.
type FilterCriteria struct {
	Kind      string       // "buy" or "rent"; empty = any
	Query     string       // matched against address, city, state
	MinPrice  int64
	MaxPrice  int64
	MinBeds   int
	MinBaths  int
	HomeTypes []string     // exact home-type matches; empty = any
	Features  []FeatureTag // every requested tag must hold
	MinSqFt   int
	MaxSqFt   int
	Keywords  string       // matched against description, address
}

// AlertFrequency controls how often a saved search may alert.
type AlertFrequency string

const (
	AlertInstant AlertFrequency = "instant"
	AlertDaily   AlertFrequency = "daily"
	AlertWeekly  AlertFrequency = "weekly"
	AlertNever   AlertFrequency = "never"
)

// SavedSearch is a persisted search plus ownership and alert
// bookkeeping. SearchParams holds the raw query-string encoding
// verbatim; it is the source of truth and criteria are always
// rederived from it, never stored parsed.
type SavedSearch struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	UserID        string         `json:"userId" db:"user_id"`
	Name          string         `json:"name" db:"name"`
	Description   string         `json:"description" db:"description"`
	SearchParams  string         `json:"searchParams" db:"search_params"`
	Frequency     AlertFrequency `json:"alertFrequency" db:"alert_frequency"`
	NewMatchCount int            `json:"newMatchCount" db:"new_match_count"`
	CreatedAt     time.Time      `json:"createdAt" db:"created_at"`
	LastAlertAt   *time.Time     `json:"lastAlertAt" db:"last_alert_at"`
}
