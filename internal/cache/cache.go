package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/agentdesk/internal/common"
	"github.com/dmitrijs2005/agentdesk/internal/logging"
)

// State is the lifecycle phase of the cache.
type State int

const (
	StateUninitialized State = iota
	StateInstalled
	StateActive
)

func (s State) String() string {
	switch s {
	case StateInstalled:
		return "installed"
	case StateActive:
		return "active"
	default:
		return "uninitialized"
	}
}

var (
	ErrNotActive    = errors.New("cache is not active")
	ErrInvalidState = errors.New("invalid cache state")
)

const defaultTimeout = 10 * time.Second

// Options configures a Cache.
type Options struct {
	// Version tokens the partition names so a new deployment invalidates the
	// previous version's partitions during activation.
	Version string
	// Origin is the base URL shell assets are installed from and the target
	// of connectivity probes.
	Origin string
	// ShellAssets enumerates the application-shell resource paths precached
	// at install time. The first entry is expected to be the root document.
	ShellAssets []string
	Router      *Router
	Storage     Storage
	// Timeout bounds every network fetch. net/http has no implicit request
	// timeout, so expiry here is what counts as a network failure.
	Timeout time.Duration
	// SyncTag is the background-sync tag the cache reacts to.
	SyncTag    string
	Logger     logging.Logger
	HTTPClient *http.Client
}

// Cache is the offline response cache. It starts Uninitialized; Install
// precaches the shell, Activate garbage-collects stale partitions and starts
// interception. Requests are handled independently and concurrently; the
// partitions are the only shared state.
type Cache struct {
	mu    sync.Mutex
	state State

	version     string
	origin      *url.URL
	shellAssets []string
	router      *Router
	storage     Storage
	timeout     time.Duration
	syncTag     string
	logger      logging.Logger
	client      *http.Client

	hookMu    sync.Mutex
	flushHook func(ctx context.Context) error

	notifier Notifier
	opener   Opener
}

func New(opts Options) (*Cache, error) {
	if opts.Storage == nil || opts.Router == nil {
		return nil, errors.New("cache: storage and router are required")
	}
	origin, err := url.Parse(opts.Origin)
	if err != nil {
		return nil, fmt.Errorf("cache: parsing origin: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewSlogLogger(slog.Default())
	}

	return &Cache{
		version:     opts.Version,
		origin:      origin,
		shellAssets: append([]string(nil), opts.ShellAssets...),
		router:      opts.Router,
		storage:     opts.Storage,
		timeout:     timeout,
		syncTag:     opts.SyncTag,
		logger:      logger,
		client:      client,
	}, nil
}

// State returns the current lifecycle phase.
func (c *Cache) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Cache) shellName() string   { return "shell-" + c.version }
func (c *Cache) dynamicName() string { return "dynamic-" + c.version }
func (c *Cache) apiName() string     { return "api-" + c.version }

func (c *Cache) currentNames() map[string]struct{} {
	return map[string]struct{}{
		c.shellName():   {},
		c.dynamicName(): {},
		c.apiName():     {},
	}
}

// Install precaches the enumerated shell asset list. Every asset must be
// fetchable; any failure is a fatal bootstrap error and the cache stays
// Uninitialized.
func (c *Cache) Install(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateUninitialized {
		return fmt.Errorf("install from %s: %w", c.state, ErrInvalidState)
	}

	shell := c.storage.Open(c.shellName())
	for _, asset := range c.shellAssets {
		req, err := c.originRequest(ctx, http.MethodGet, asset)
		if err != nil {
			return fmt.Errorf("install %s: %w", asset, err)
		}
		entry, err := c.fetch(ctx, req)
		if err != nil {
			return fmt.Errorf("install %s: %w", asset, err)
		}
		if !entry.OK() {
			return fmt.Errorf("install %s: unexpected status %d", asset, entry.Status)
		}
		if err := shell.Put(requestKey(http.MethodGet, req.URL), entry); err != nil {
			return fmt.Errorf("install %s: %w", asset, err)
		}
	}

	c.state = StateInstalled
	c.logger.Info(ctx, "shell precached", "assets", len(c.shellAssets), "partition", c.shellName())
	return nil
}

// Activate deletes every partition whose name is not in the current
// versioned set, then starts intercepting requests.
func (c *Cache) Activate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateInstalled {
		return fmt.Errorf("activate from %s: %w", c.state, ErrInvalidState)
	}

	current := c.currentNames()
	for _, name := range c.storage.Names() {
		if _, ok := current[name]; ok {
			continue
		}
		c.storage.Delete(name)
		c.logger.Info(ctx, "deleted stale cache partition", "partition", name)
	}

	c.state = StateActive
	return nil
}

// Handle routes one request through its caching policy and returns the
// response entry. It requires the cache to be Active.
func (c *Cache) Handle(ctx context.Context, req *http.Request) (*Entry, error) {
	if c.State() != StateActive {
		return nil, ErrNotActive
	}

	route := c.router.Classify(req.Method, req.URL)
	key := requestKey(req.Method, req.URL)

	switch route {
	case RouteAPI:
		return c.networkFirst(ctx, req, key)
	case RouteStatic:
		return c.cacheFirst(ctx, req, key)
	case RouteNavigation:
		return c.navigation(ctx, req)
	default:
		return c.fetch(ctx, req)
	}
}

// networkFirst always tries the network. A successful response is cloned into
// the api partition before being returned. On network failure the partition
// is consulted; with no cached value the original failure propagates.
func (c *Cache) networkFirst(ctx context.Context, req *http.Request, key string) (*Entry, error) {
	entry, err := c.fetch(ctx, req)
	if err == nil {
		if entry.OK() {
			c.putBestEffort(ctx, c.apiName(), key, entry)
		}
		return entry, nil
	}

	if cached, ok := c.storage.Open(c.apiName()).Match(key); ok {
		c.logger.Debug(ctx, "serving api response from cache", "key", key)
		return cached, nil
	}
	return nil, err
}

// cacheFirst consults the shell and dynamic partitions before touching the
// network. A miss fetches, and a successful fetch populates the dynamic
// partition. A failed fetch propagates.
func (c *Cache) cacheFirst(ctx context.Context, req *http.Request, key string) (*Entry, error) {
	for _, name := range []string{c.shellName(), c.dynamicName()} {
		if cached, ok := c.storage.Open(name).Match(key); ok {
			return cached, nil
		}
	}

	entry, err := c.fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if entry.OK() {
		c.putBestEffort(ctx, c.dynamicName(), key, entry)
	}
	return entry, nil
}

// navigation tries the network and, on any failure, falls back to the
// precached shell root document so a full-page load always renders
// something.
func (c *Cache) navigation(ctx context.Context, req *http.Request) (*Entry, error) {
	entry, err := c.fetch(ctx, req)
	if err == nil {
		return entry, nil
	}

	rootKey, keyErr := c.shellRootKey(ctx)
	if keyErr == nil {
		if cached, ok := c.storage.Open(c.shellName()).Match(rootKey); ok {
			c.logger.Debug(ctx, "serving shell fallback for navigation", "url", req.URL.String())
			return cached, nil
		}
	}
	return nil, err
}

func (c *Cache) shellRootKey(ctx context.Context) (string, error) {
	if len(c.shellAssets) == 0 {
		return "", errors.New("no shell assets configured")
	}
	req, err := c.originRequest(ctx, http.MethodGet, c.shellAssets[0])
	if err != nil {
		return "", err
	}
	return requestKey(http.MethodGet, req.URL), nil
}

// putBestEffort writes an entry to a partition, logging instead of failing:
// a cache write must never cause the original request to fail.
func (c *Cache) putBestEffort(ctx context.Context, partition, key string, e *Entry) {
	if err := c.storage.Open(partition).Put(key, e); err != nil {
		c.logger.Warn(ctx, "cache write failed", "partition", partition, "key", key, "error", err.Error())
	}
}

func (c *Cache) originRequest(ctx context.Context, method, ref string) (*http.Request, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	return http.NewRequestWithContext(ctx, method, c.origin.ResolveReference(u).String(), nil)
}

// fetch performs the network request under the configured timeout and reads
// the full body. Transport failures are classified as common.ErrTimeout or
// common.ErrNetwork; a non-2xx response is not a fetch failure.
func (c *Cache) fetch(ctx context.Context, req *http.Request) (*Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, classifyFetchError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyFetchError(err)
	}

	return &Entry{
		Status:   resp.StatusCode,
		Header:   resp.Header.Clone(),
		Body:     body,
		StoredAt: time.Now(),
	}, nil
}

func classifyFetchError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", common.ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", common.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", common.ErrNetwork, err)
}
