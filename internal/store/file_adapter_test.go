package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() Snapshot {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	min := 250000.0
	return Snapshot{
		Clients: []Client{{
			ID:         "c1",
			FirstName:  "Jane",
			LastName:   "Doe",
			Email:      "jane@example.com",
			CreatedAt:  now,
			UpdatedAt:  now,
			UserID:     "u1",
			ClientType: ClientTypeBuyer,
			Locations:  []string{"downtown"},
			PriceMin:   &min,
			Tags:       []string{"vip"},
		}},
		ClientOffers: []ClientOffer{{
			ID: "co1", ClientID: "c1", OfferID: "o1", CreatedAt: now, UserID: "u1",
		}},
		Users: []User{{
			ID: "u1", Login: "jane", Salt: []byte{1, 2}, Verifier: []byte{3, 4}, CreatedAt: now,
		}},
	}
}

func TestFileAdapter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	a, err := NewFileAdapter(path)
	require.NoError(t, err)
	ctx := context.Background()

	want := testSnapshot()
	require.NoError(t, a.Save(ctx, want))

	got, ok, err := a.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestFileAdapter_FirstRunHasNoSnapshot(t *testing.T) {
	a, err := NewFileAdapter(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)

	_, ok, err := a.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileAdapter_UnknownFieldsIgnoredOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	payload := map[string]any{
		"clients":      []any{},
		"clientOffers": []any{},
		"users":        []any{},
		"schema":       42,
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o660))

	a, err := NewFileAdapter(path)
	require.NoError(t, err)

	_, ok, err := a.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFileAdapter_WriteIsAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	a, err := NewFileAdapter(path)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, a.Save(ctx, testSnapshot()))

	// No temp file is left behind after a successful save.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
