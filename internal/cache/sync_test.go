package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSyncCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(Options{
		Version: "v1",
		Origin:  "http://127.0.0.1:0",
		Router:  newTestRouter(),
		Storage: NewMemoryStorage(),
		SyncTag: "flush-offline-submissions",
		Timeout: time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestHandleSync_IgnoresUnknownTag(t *testing.T) {
	c := newSyncCache(t)

	var calls atomic.Int32
	c.RegisterFlushHook(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, c.HandleSync(context.Background(), "unrelated-tag"))
	assert.Equal(t, int32(0), calls.Load())
}

func TestHandleSync_InvokesHook(t *testing.T) {
	c := newSyncCache(t)

	var calls atomic.Int32
	c.RegisterFlushHook(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, c.HandleSync(context.Background(), "flush-offline-submissions"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestHandleSync_RetriesTransientFailure(t *testing.T) {
	c := newSyncCache(t)

	var calls atomic.Int32
	c.RegisterFlushHook(func(ctx context.Context) error {
		if calls.Add(1) < 3 {
			return errors.New("still offline")
		}
		return nil
	})

	require.NoError(t, c.HandleSync(context.Background(), "flush-offline-submissions"))
	assert.Equal(t, int32(3), calls.Load())
}

func TestHandleSync_SurfacesPersistentFailure(t *testing.T) {
	c := newSyncCache(t)

	hookErr := errors.New("endpoint gone")
	c.RegisterFlushHook(func(ctx context.Context) error {
		return hookErr
	})

	err := c.HandleSync(context.Background(), "flush-offline-submissions")
	require.Error(t, err)
	assert.ErrorIs(t, err, hookErr)
}

func TestHandleSync_NoHookIsNoop(t *testing.T) {
	c := newSyncCache(t)
	require.NoError(t, c.HandleSync(context.Background(), "flush-offline-submissions"))
}

type recordingNotifier struct {
	shown []Notification
}

func (r *recordingNotifier) Show(ctx context.Context, n Notification) error {
	r.shown = append(r.shown, n)
	return nil
}

type recordingOpener struct {
	opened int
}

func (r *recordingOpener) OpenRoot(ctx context.Context) error {
	r.opened++
	return nil
}

func TestHandlePush_ShowsNotificationWithFixedParameters(t *testing.T) {
	c := newSyncCache(t)
	notifier := &recordingNotifier{}
	opener := &recordingOpener{}
	c.SetNotificationHooks(notifier, opener)
	ctx := context.Background()

	require.NoError(t, c.HandlePush(ctx, []byte("New offer matched")))
	require.Len(t, notifier.shown, 1)

	n := notifier.shown[0]
	assert.Equal(t, "AgentDesk", n.Title)
	assert.Equal(t, "New offer matched", n.Body)
	assert.Equal(t, "/icons/icon-192.png", n.Icon)
	assert.Equal(t, "open", n.Action)
}

func TestHandleNotificationAction_OpensRoot(t *testing.T) {
	c := newSyncCache(t)
	opener := &recordingOpener{}
	c.SetNotificationHooks(&recordingNotifier{}, opener)
	ctx := context.Background()

	require.NoError(t, c.HandleNotificationAction(ctx, "open"))
	assert.Equal(t, 1, opener.opened)

	// Unknown actions are ignored.
	require.NoError(t, c.HandleNotificationAction(ctx, "dismiss"))
	assert.Equal(t, 1, opener.opened)
}
