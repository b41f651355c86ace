// Package store implements the local relational store: an in-process,
// persisted substitute for the remote backend, exposing CRUD operations over
// clients and their offer associations for the current signed-in agent.
package store

import "time"

// ClientType tags a client as a prospective buyer or seller.
type ClientType string

const (
	ClientTypeBuyer  ClientType = "buyer"
	ClientTypeSeller ClientType = "seller"
)

// Client is a prospective buyer or seller tracked by an agent.
//
// ID is immutable and unique. UserID is set once at creation and never
// changes. CreatedAt <= UpdatedAt holds at all times.
type Client struct {
	ID         string     `json:"id"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	UserID     string     `json:"user_id"`
	ClientType ClientType `json:"client_type"`
	Locations  []string   `json:"locations"`
	PriceMin   *float64   `json:"price_min"`
	PriceMax   *float64   `json:"price_max"`
	AgentID    string     `json:"agent_id,omitempty"`
	AgentName  string     `json:"agent_name,omitempty"`
	Tags       []string   `json:"tags"`
}

// ClientOffer associates a client with an offer identifier owned by an
// external system. The (ClientID, OfferID) pair is a natural key, but the
// store does not enforce its uniqueness; reads through the join deduplicate.
type ClientOffer struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	OfferID   string    `json:"offer_id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

// User is a locally registered agent account. The password is never stored;
// only an argon2-derived verifier and its salt are kept.
type User struct {
	ID        string    `json:"id"`
	Login     string    `json:"login"`
	Salt      []byte    `json:"salt"`
	Verifier  []byte    `json:"verifier"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot is the serialized form of the full table set. It is what the
// persistence adapter writes on every mutation and what it loads at startup.
// The JSON field names are part of the durable format and must not change.
type Snapshot struct {
	Clients      []Client      `json:"clients"`
	ClientOffers []ClientOffer `json:"clientOffers"`
	Users        []User        `json:"users"`
}

// NewClient carries the caller-supplied fields for CreateClient. The store
// performs no validation on them; required-field checks belong upstream.
type NewClient struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Notes      string
	ClientType ClientType
	Locations  []string
	PriceMin   *float64
	PriceMax   *float64
	AgentID    string
	AgentName  string
	Tags       []string
}

// Opt is an optional patch field. The zero value means "leave unchanged";
// use OptOf to mark a field for update. Mirrors the shape of sql.Null.
type Opt[T any] struct {
	V     T
	Valid bool
}

// OptOf returns an Opt carrying v.
func OptOf[T any](v T) Opt[T] { return Opt[T]{V: v, Valid: true} }

// ClientPatch is a partial update for UpdateClient. Only fields marked valid
// are merged into the existing row. Price bounds are Opt[*float64] so a patch
// can both set a bound and clear it back to null.
type ClientPatch struct {
	FirstName  Opt[string]
	LastName   Opt[string]
	Email      Opt[string]
	Phone      Opt[string]
	Notes      Opt[string]
	ClientType Opt[ClientType]
	Locations  Opt[[]string]
	PriceMin   Opt[*float64]
	PriceMax   Opt[*float64]
	AgentID    Opt[string]
	AgentName  Opt[string]
	Tags       Opt[[]string]
}
