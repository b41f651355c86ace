// Package cli implements the interactive agentdesk client: a REPL over the
// local relational store, with the offline response cache fronting all
// network traffic to the application origin.
package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/dmitrijs2005/agentdesk/internal/cache"
	"github.com/dmitrijs2005/agentdesk/internal/config"
	"github.com/dmitrijs2005/agentdesk/internal/outbox"
	"github.com/dmitrijs2005/agentdesk/internal/session"
	"github.com/dmitrijs2005/agentdesk/internal/store"
	"github.com/dmitrijs2005/agentdesk/internal/users"
)

type App struct {
	config   *config.Config
	store    *store.Store
	session  *session.Manager
	users    *users.Service
	cache    *cache.Cache
	queue    *outbox.Queue
	userName string
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	adapter, err := newAdapter(ctx, c)
	if err != nil {
		return nil, err
	}

	sess, err := session.NewManager(c.SessionPath, []byte(c.SessionSecret), c.TokenValidity)
	if err != nil {
		return nil, err
	}

	st, err := store.New(ctx, adapter, sess)
	if err != nil {
		return nil, err
	}

	ca, err := cache.New(cache.Options{
		Version:     c.CacheVersion,
		Origin:      c.OriginBaseURL,
		ShellAssets: c.ShellAssets,
		Router:      cache.NewRouter(c.APIPrefix, c.StaticPrefixes, c.StaticExtensions),
		Storage:     cache.NewMemoryStorage(),
		Timeout:     c.RequestTimeout,
		SyncTag:     c.SyncTag,
	})
	if err != nil {
		return nil, err
	}

	queue := outbox.NewQueue(newOriginSender(c))
	ca.RegisterFlushHook(queue.Flush)

	app := &App{
		config:  c,
		store:   st,
		session: sess,
		users:   users.NewService(st),
		cache:   ca,
		queue:   queue,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}

	// Shell install needs the origin; when it is unreachable the cache stays
	// uninitialized and the app runs on the local store alone.
	if err := ca.Install(ctx); err != nil {
		log.Printf("offline cache unavailable: %v", err)
	} else if err := ca.Activate(ctx); err != nil {
		log.Printf("offline cache activation failed: %v", err)
	}

	return app, nil
}

func newAdapter(ctx context.Context, c *config.Config) (store.Adapter, error) {
	switch c.StoreDriver {
	case "sqlite":
		return store.NewSQLiteAdapter(ctx, c.StorePath)
	default:
		return store.NewFileAdapter(c.StorePath)
	}
}

// newOriginSender posts queued offline submissions back to the origin,
// carrying each submission's idempotency key so replays are harmless.
func newOriginSender(c *config.Config) outbox.Sender {
	client := &http.Client{Timeout: c.RequestTimeout}
	return func(ctx context.Context, sub outbox.Submission) error {
		req, err := http.NewRequestWithContext(ctx, sub.Method, c.OriginBaseURL+sub.Path, bytes.NewReader(sub.Body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", sub.IdempotencyKey)

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			return fmt.Errorf("unexpected status %s", resp.Status)
		}
		return nil
	}
}

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.cache.State() == cache.StateActive {
		s = s + "online-capable"
	} else {
		s = s + "local-only"
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) isLoggedIn() bool {
	return a.session.IsSignedIn(context.Background())
}

// Run starts the REPL and the connectivity watcher, blocking until the user
// exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Println("Welcome to agentdesk (type 'help' for commands)")

	go a.cache.StartOnlineWatcher(ctx, a.config.OnlineCheckInterval)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
