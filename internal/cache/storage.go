// Package cache implements the offline response cache: it fronts outbound
// GET requests, applies a per-route caching policy (network-first for API
// calls, cache-first for static assets, shell fallback for navigations) and
// guarantees a best-effort response for anything seen before, even with no
// network.
package cache

import (
	"net/http"
	"sort"
	"sync"
	"time"
)

// Entry is one cached response: the most recently observed successful status,
// headers and body for a request key.
type Entry struct {
	Status   int
	Header   http.Header
	Body     []byte
	StoredAt time.Time
}

// OK reports whether the entry holds an HTTP-ok response. Only such entries
// are ever written to a partition.
func (e *Entry) OK() bool {
	return e.Status >= 200 && e.Status <= 299
}

// Clone returns an independent copy, so a caller consuming the body cannot
// disturb the cached original.
func (e *Entry) Clone() *Entry {
	c := &Entry{
		Status:   e.Status,
		Header:   e.Header.Clone(),
		Body:     append([]byte(nil), e.Body...),
		StoredAt: e.StoredAt,
	}
	return c
}

// Partition is one named cache set. Each Match/Put/Delete is atomic with
// respect to the others on the same partition.
type Partition interface {
	Match(key string) (*Entry, bool)
	Put(key string, e *Entry) error
	Delete(key string) bool
	Keys() []string
}

// Storage manages named partitions. Open creates the partition on first use;
// Names enumerates the existing ones so activation can garbage-collect
// partitions left behind by a previous version.
type Storage interface {
	Open(name string) Partition
	Names() []string
	Delete(name string) bool
}

// MemoryStorage is the in-process Storage implementation.
type MemoryStorage struct {
	mu         sync.Mutex
	partitions map[string]*memoryPartition
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{partitions: make(map[string]*memoryPartition)}
}

func (s *MemoryStorage) Open(name string) Partition {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.partitions[name]
	if !ok {
		p = &memoryPartition{entries: make(map[string]*Entry)}
		s.partitions[name] = p
	}
	return p
}

func (s *MemoryStorage) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.partitions))
	for name := range s.partitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *MemoryStorage) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.partitions[name]; !ok {
		return false
	}
	delete(s.partitions, name)
	return true
}

type memoryPartition struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

func (p *memoryPartition) Match(key string) (*Entry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.entries[key]
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

func (p *memoryPartition) Put(key string, e *Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[key] = e.Clone()
	return nil
}

func (p *memoryPartition) Delete(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.entries[key]; !ok {
		return false
	}
	delete(p.entries, key)
	return true
}

func (p *memoryPartition) Keys() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	keys := make([]string, 0, len(p.entries))
	for k := range p.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
