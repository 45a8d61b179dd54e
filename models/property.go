package models

import (
	"time"

	"github.com/google/uuid"
)

// ListingKind distinguishes sale and rental listings
type ListingKind string

const (
	ListingSale ListingKind = "sale"
	ListingRent ListingKind = "rent"
)

// Property represents a listing snapshot at evaluation time.
// Records are created by the agent-facing listing workflow and are
// read-only here; created_at is assigned by the store and never moves.
type Property struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	Kind        ListingKind `json:"kind" db:"kind"` // sale, rent
	Address     string      `json:"address" db:"address"`
	City        string      `json:"city" db:"city"`
	State       string      `json:"state" db:"state"`
	Price       int64       `json:"price" db:"price"` // integer currency units
	Beds        int         `json:"beds" db:"beds"`
	Baths       int         `json:"baths" db:"baths"`
	HomeType    string      `json:"home_type" db:"home_type"` // House, Apartment, Duplex, etc.
	SqFt        int         `json:"sqft" db:"sqft"`
	Furnished   bool        `json:"furnished" db:"furnished"`
	PowerSupply string      `json:"power_supply" db:"power_supply"`
	WaterSupply string      `json:"water_supply" db:"water_supply"`
	Security    []string    `json:"security" db:"security"` // security feature tags
	Description string      `json:"description" db:"description"`
	AgentID     string      `json:"agent_id" db:"agent_id"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// PropertySummary is the slice of a property carried inside a
// notification intent.
type PropertySummary struct {
	ID      uuid.UUID `json:"id"`
	Address string    `json:"address"`
	City    string    `json:"city"`
	Price   int64     `json:"price"`
}

// Summary extracts the notification view of a property.
func (p *Property) Summary() PropertySummary {
	return PropertySummary{ID: p.ID, Address: p.Address, City: p.City, Price: p.Price}
}
