package cache

import (
	"context"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// RegisterFlushHook installs the hook invoked when the background-sync
// signal with the known tag arrives. The hook owns the queued submissions;
// the cache only guarantees it gets called and that its failure is not
// swallowed.
func (c *Cache) RegisterFlushHook(hook func(ctx context.Context) error) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.flushHook = hook
}

// HandleSync reacts to a background-sync signal. Signals with an unknown tag
// are ignored. The flush hook is retried with exponential backoff within the
// signal; if it still fails the error is returned and the queued work stays
// put for the next signal.
func (c *Cache) HandleSync(ctx context.Context, tag string) error {
	if tag != c.syncTag {
		c.logger.Debug(ctx, "ignoring sync signal with unknown tag", "tag", tag)
		return nil
	}

	c.hookMu.Lock()
	hook := c.flushHook
	c.hookMu.Unlock()
	if hook == nil {
		return nil
	}

	backoff := retry.WithMaxRetries(3, retry.NewExponential(250*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := hook(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		c.logger.Warn(ctx, "sync flush failed, deferring to next signal", "tag", tag, "error", err.Error())
		return err
	}

	c.logger.Info(ctx, "sync flush completed", "tag", tag)
	return nil
}

// StartOnlineWatcher probes the origin on the given interval and fires the
// sync signal on every offline-to-online transition. It blocks until ctx is
// cancelled.
func (c *Cache) StartOnlineWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var online *bool
	for {
		select {
		case <-ticker.C:
			up := c.probe(ctx)
			wasOffline := online != nil && !*online
			online = &up

			if up && wasOffline {
				c.logger.Info(ctx, "connectivity restored")
				_ = c.HandleSync(ctx, c.syncTag)
			}

		case <-ctx.Done():
			return
		}
	}
}

func (c *Cache) probe(ctx context.Context) bool {
	req, err := c.originRequest(ctx, http.MethodHead, "/")
	if err != nil {
		return false
	}
	_, err = c.fetch(ctx, req)
	return err == nil
}
