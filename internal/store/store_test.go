package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/agentdesk/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPrincipal struct {
	id  string
	err error
}

func (s *stubPrincipal) CurrentUserID(ctx context.Context) (string, error) {
	return s.id, s.err
}

// fakeAdapter records every saved snapshot and can be told to fail.
type fakeAdapter struct {
	saved   []Snapshot
	initial *Snapshot
	saveErr error
	loadErr error
}

func (f *fakeAdapter) Save(ctx context.Context, s Snapshot) error {
	if f.saveErr != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, f.saveErr)
	}
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeAdapter) Load(ctx context.Context) (Snapshot, bool, error) {
	if f.loadErr != nil {
		return Snapshot{}, false, f.loadErr
	}
	if f.initial == nil {
		return Snapshot{}, false, nil
	}
	return *f.initial, true, nil
}

func newTestStore(t *testing.T) (*Store, *fakeAdapter) {
	t.Helper()
	adapter := &fakeAdapter{}
	s, err := New(context.Background(), adapter, &stubPrincipal{id: "user-1"})
	require.NoError(t, err)
	return s, adapter
}

func TestCreateClient_UniqueIDs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		c, err := s.CreateClient(ctx, NewClient{FirstName: "A", LastName: "B", ClientType: ClientTypeBuyer})
		require.NoError(t, err)
		_, dup := seen[c.ID]
		require.False(t, dup, "duplicate id %s", c.ID)
		seen[c.ID] = struct{}{}
	}
}

func TestCreateClient_VisibleInListWithDefaults(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	c, err := s.CreateClient(ctx, NewClient{FirstName: "Jane", LastName: "Doe", ClientType: ClientTypeSeller})
	require.NoError(t, err)

	clients, err := s.ListClients(ctx, "")
	require.NoError(t, err)
	require.Len(t, clients, 1)

	got := clients[0]
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, "Jane", got.FirstName)
	assert.Equal(t, "Doe", got.LastName)
	assert.Equal(t, "user-1", got.UserID)
	assert.NotNil(t, got.Locations)
	assert.Empty(t, got.Locations)
	assert.NotNil(t, got.Tags)
	assert.Empty(t, got.Tags)
	assert.Nil(t, got.PriceMin)
	assert.Nil(t, got.PriceMax)
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
}

func TestListClients_MostRecentFirstAndTypeFilter(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateClient(ctx, NewClient{FirstName: "First", ClientType: ClientTypeBuyer})
	require.NoError(t, err)
	second, err := s.CreateClient(ctx, NewClient{FirstName: "Second", ClientType: ClientTypeSeller})
	require.NoError(t, err)

	all, err := s.ListClients(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)

	buyers, err := s.ListClients(ctx, ClientTypeBuyer)
	require.NoError(t, err)
	require.Len(t, buyers, 1)
	assert.Equal(t, first.ID, buyers[0].ID)
}

func TestListClients_ScopedToCurrentUser(t *testing.T) {
	adapter := &fakeAdapter{initial: &Snapshot{Clients: []Client{
		{ID: "mine", UserID: "user-1", ClientType: ClientTypeBuyer},
		{ID: "other", UserID: "user-2", ClientType: ClientTypeBuyer},
	}}}
	s, err := New(context.Background(), adapter, &stubPrincipal{id: "user-1"})
	require.NoError(t, err)

	clients, err := s.ListClients(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "mine", clients[0].ID)
}

func TestGetClient_AbsentIsNilNotError(t *testing.T) {
	s, _ := newTestStore(t)

	c, err := s.GetClient(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestUpdateClient_RefreshesUpdatedAtStrictly(t *testing.T) {
	// A frozen clock is the worst case: updated_at must still move forward.
	frozen := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	adapter := &fakeAdapter{}
	s, err := New(context.Background(), adapter, &stubPrincipal{id: "user-1"},
		WithClock(func() time.Time { return frozen }))
	require.NoError(t, err)
	ctx := context.Background()

	c, err := s.CreateClient(ctx, NewClient{FirstName: "Old", ClientType: ClientTypeBuyer})
	require.NoError(t, err)

	updated, err := s.UpdateClient(ctx, c.ID, ClientPatch{
		FirstName: OptOf("New"),
		PriceMin:  OptOf(ptr(100000.0)),
	})
	require.NoError(t, err)

	assert.Equal(t, "New", updated.FirstName)
	require.NotNil(t, updated.PriceMin)
	assert.Equal(t, 100000.0, *updated.PriceMin)
	assert.Equal(t, c.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(c.UpdatedAt), "updated_at must be strictly greater")
}

func TestUpdateClient_CanClearPriceBound(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	c, err := s.CreateClient(ctx, NewClient{FirstName: "X", PriceMax: ptr(500000.0)})
	require.NoError(t, err)

	updated, err := s.UpdateClient(ctx, c.ID, ClientPatch{PriceMax: OptOf[*float64](nil)})
	require.NoError(t, err)
	assert.Nil(t, updated.PriceMax)
}

func TestUpdateClient_NotFoundLeavesTableUnchanged(t *testing.T) {
	s, adapter := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateClient(ctx, NewClient{FirstName: "A"})
	require.NoError(t, err)
	before := s.Snapshot()
	saves := len(adapter.saved)

	_, err = s.UpdateClient(ctx, "missing", ClientPatch{FirstName: OptOf("B")})
	require.ErrorIs(t, err, common.ErrNotFound)

	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, saves, len(adapter.saved), "no snapshot should be persisted")
}

func TestDeleteClient_CascadesAndIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	c, err := s.CreateClient(ctx, NewClient{FirstName: "A"})
	require.NoError(t, err)
	other, err := s.CreateClient(ctx, NewClient{FirstName: "B"})
	require.NoError(t, err)

	_, err = s.AddClientToOffer(ctx, c.ID, "offer-1")
	require.NoError(t, err)
	_, err = s.AddClientToOffer(ctx, c.ID, "offer-2")
	require.NoError(t, err)
	keep, err := s.AddClientToOffer(ctx, other.ID, "offer-1")
	require.NoError(t, err)

	require.NoError(t, s.DeleteClient(ctx, c.ID))

	got, err := s.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	offers, err := s.ListClientOffersForClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, offers)

	// Unrelated association rows survive the cascade.
	offers, err = s.ListClientOffersForClient(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, keep.ID, offers[0].ID)

	// Second delete is a no-op, not an error.
	require.NoError(t, s.DeleteClient(ctx, c.ID))
}

func TestListClientsForOffer_DeduplicatesAndSkipsDangling(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	c1, err := s.CreateClient(ctx, NewClient{FirstName: "One"})
	require.NoError(t, err)
	c2, err := s.CreateClient(ctx, NewClient{FirstName: "Two"})
	require.NoError(t, err)

	// Duplicate pairing is permitted on write...
	_, err = s.AddClientToOffer(ctx, c1.ID, "offer-9")
	require.NoError(t, err)
	_, err = s.AddClientToOffer(ctx, c1.ID, "offer-9")
	require.NoError(t, err)
	_, err = s.AddClientToOffer(ctx, c2.ID, "offer-9")
	require.NoError(t, err)

	clients, err := s.ListClientsForOffer(ctx, "offer-9")
	require.NoError(t, err)
	// ...but the join deduplicates by client id.
	require.Len(t, clients, 2)
	assert.Equal(t, c1.ID, clients[0].ID)
	assert.Equal(t, c2.ID, clients[1].ID)

	// A dangling reference is skipped, not an error. RemoveClientFromOffer
	// is not used here on purpose: deleting c2 via the raw table leaves its
	// association rows behind.
	s.mu.Lock()
	s.tab.clients = s.tab.clients[1:]
	s.mu.Unlock()

	clients, err = s.ListClientsForOffer(ctx, "offer-9")
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, c1.ID, clients[0].ID)
}

func TestRemoveClientFromOffer_RemovesAllMatchesIdempotently(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	c, err := s.CreateClient(ctx, NewClient{FirstName: "A"})
	require.NoError(t, err)
	_, err = s.AddClientToOffer(ctx, c.ID, "offer-1")
	require.NoError(t, err)
	_, err = s.AddClientToOffer(ctx, c.ID, "offer-1")
	require.NoError(t, err)

	require.NoError(t, s.RemoveClientFromOffer(ctx, c.ID, "offer-1"))

	offers, err := s.ListClientOffersForClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, offers)

	require.NoError(t, s.RemoveClientFromOffer(ctx, c.ID, "offer-1"))
}

func TestCreateClient_PersistFailureSurfacesButKeepsMutation(t *testing.T) {
	adapter := &fakeAdapter{}
	s, err := New(context.Background(), adapter, &stubPrincipal{id: "user-1"})
	require.NoError(t, err)
	ctx := context.Background()

	adapter.saveErr = errors.New("quota exceeded")

	c, err := s.CreateClient(ctx, NewClient{FirstName: "A"})
	require.ErrorIs(t, err, common.ErrStorage)

	// The in-memory table keeps the row even though persistence failed.
	clients, listErr := s.ListClients(ctx, "")
	require.NoError(t, listErr)
	require.Len(t, clients, 1)
	assert.Equal(t, c.ID, clients[0].ID)
}

func TestStore_EveryMutationPersistsFullTableSet(t *testing.T) {
	s, adapter := newTestStore(t)
	ctx := context.Background()

	c, err := s.CreateClient(ctx, NewClient{FirstName: "A"})
	require.NoError(t, err)
	_, err = s.AddClientToOffer(ctx, c.ID, "offer-1")
	require.NoError(t, err)
	require.NoError(t, s.DeleteClient(ctx, c.ID))

	require.Len(t, adapter.saved, 3)
	last := adapter.saved[len(adapter.saved)-1]
	assert.Empty(t, last.Clients)
	assert.Empty(t, last.ClientOffers)
}

func ptr(v float64) *float64 { return &v }
