package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/agentdesk/internal/common"
	"github.com/google/uuid"
)

// Principal resolves the identifier of the current signed-in agent. The
// session manager satisfies this; tests can supply a stub.
type Principal interface {
	CurrentUserID(ctx context.Context) (string, error)
}

// Store is the local relational store. One constructed instance is passed to
// consumers; all mutations funnel through its mutex because the
// read-modify-write-persist cycle is not atomic across steps.
//
// Persistence is applied after each successful in-memory mutation. If the
// adapter fails, the in-memory mutation stays applied and the error (wrapping
// common.ErrStorage) surfaces to the caller, so callers must treat such a
// result as "maybe partially applied".
type Store struct {
	mu      sync.RWMutex
	tab     tables
	adapter Adapter
	session Principal

	// test seams
	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the identifier generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// New builds a Store over the given adapter and session provider, loading the
// previous snapshot if one exists.
func New(ctx context.Context, adapter Adapter, session Principal, opts ...Option) (*Store, error) {
	s := &Store{
		adapter: adapter,
		session: session,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, ok, err := adapter.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	if ok {
		s.tab.load(snap)
	}
	return s, nil
}

// Snapshot returns a copy of the current table set.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tab.snapshot()
}

func (s *Store) currentUser(ctx context.Context) (string, error) {
	userID, err := s.session.CurrentUserID(ctx)
	if err != nil {
		return "", fmt.Errorf("resolving current user: %w", err)
	}
	return userID, nil
}

// persist writes the current table set through the adapter. Callers hold the
// write lock.
func (s *Store) persist(ctx context.Context) error {
	return s.adapter.Save(ctx, s.tab.snapshot())
}

// ListClients returns all clients owned by the current user, most recent
// first. If clientType is non-empty the result is filtered further.
func (s *Store) ListClients(ctx context.Context, clientType ClientType) ([]Client, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Client, 0)
	for _, c := range s.tab.clients {
		if c.UserID != userID {
			continue
		}
		if clientType != "" && c.ClientType != clientType {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

// GetClient is a point lookup by identifier. It returns (nil, nil) when the
// row is absent. Ownership is not checked here: the lookup mirrors the
// remote backend it stands in for, which resolves ids regardless of owner.
func (s *Store) GetClient(ctx context.Context, id string) (*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i, ok := s.tab.findClient(id); ok {
		c := s.tab.clients[i]
		return &c, nil
	}
	return nil, nil
}

// CreateClient inserts a new client at the head of the table, stamping id,
// timestamps and the owning user. Absent collection fields default to empty
// sets. The store performs no field validation.
func (s *Store) CreateClient(ctx context.Context, fields NewClient) (Client, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return Client{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c := Client{
		ID:         s.newID(),
		FirstName:  fields.FirstName,
		LastName:   fields.LastName,
		Email:      fields.Email,
		Phone:      fields.Phone,
		Notes:      fields.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
		UserID:     userID,
		ClientType: fields.ClientType,
		Locations:  append([]string{}, fields.Locations...),
		PriceMin:   fields.PriceMin,
		PriceMax:   fields.PriceMax,
		AgentID:    fields.AgentID,
		AgentName:  fields.AgentName,
		Tags:       append([]string{}, fields.Tags...),
	}

	s.tab.insertClientHead(c)
	if err := s.persist(ctx); err != nil {
		return c, err
	}
	return c, nil
}

// UpdateClient merges patch into the existing row and refreshes updated_at.
// It is the only operation that fails on a missing row, with
// common.ErrNotFound.
func (s *Store) UpdateClient(ctx context.Context, id string, patch ClientPatch) (Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.tab.findClient(id)
	if !ok {
		return Client{}, fmt.Errorf("client %s: %w", id, common.ErrNotFound)
	}

	c := &s.tab.clients[i]
	applyPatch(c, patch)

	// The clock may not have advanced since the last stamp; updated_at must
	// still move strictly forward.
	now := s.now()
	if !now.After(c.UpdatedAt) {
		now = c.UpdatedAt.Add(time.Nanosecond)
	}
	c.UpdatedAt = now

	updated := *c
	if err := s.persist(ctx); err != nil {
		return updated, err
	}
	return updated, nil
}

// DeleteClient removes the row if present and cascades to every ClientOffer
// row referencing it. Deleting an absent identifier is a no-op.
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tab.deleteClient(id) {
		return nil
	}
	return s.persist(ctx)
}

// ListClientOffersForClient returns all association rows for clientID.
func (s *Store) ListClientOffersForClient(ctx context.Context, clientID string) ([]ClientOffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tab.offersForClient(clientID), nil
}

// AddClientToOffer creates a new association row stamped with the current
// user and instant. Duplicate pairings are permitted.
func (s *Store) AddClientToOffer(ctx context.Context, clientID, offerID string) (ClientOffer, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return ClientOffer{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	co := ClientOffer{
		ID:        s.newID(),
		ClientID:  clientID,
		OfferID:   offerID,
		CreatedAt: s.now(),
		UserID:    userID,
	}
	s.tab.insertClientOffer(co)
	if err := s.persist(ctx); err != nil {
		return co, err
	}
	return co, nil
}

// RemoveClientFromOffer removes all rows matching both identifiers exactly.
// Removing an absent pairing is a no-op.
func (s *Store) RemoveClientFromOffer(ctx context.Context, clientID, offerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tab.removeClientOffers(clientID, offerID) {
		return nil
	}
	return s.persist(ctx)
}

// ListClientsForOffer resolves the clients associated with offerID,
// deduplicated by client id. Dangling references are skipped. Like
// GetClient, the join path does not filter by owner.
func (s *Store) ListClientsForOffer(ctx context.Context, offerID string) ([]Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tab.clientsForOffer(offerID), nil
}

// FindUserByLogin returns the user with the given login, or
// common.ErrNotFound.
func (s *Store) FindUserByLogin(ctx context.Context, login string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i, ok := s.tab.findUserByLogin(login); ok {
		return s.tab.users[i], nil
	}
	return User{}, fmt.Errorf("user %s: %w", login, common.ErrNotFound)
}

// CreateUser inserts a new user row. The login must be unused.
func (s *Store) CreateUser(ctx context.Context, login string, salt, verifier []byte) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tab.findUserByLogin(login); ok {
		return User{}, fmt.Errorf("user %s: %w", login, common.ErrLoginAlreadyExists)
	}

	u := User{
		ID:        s.newID(),
		Login:     login,
		Salt:      salt,
		Verifier:  verifier,
		CreatedAt: s.now(),
	}
	s.tab.insertUser(u)
	if err := s.persist(ctx); err != nil {
		return u, err
	}
	return u, nil
}
