// Package outbox queues form submissions made while offline and replays them
// through a caller-supplied sender when connectivity returns. Each submission
// carries an idempotency key so a replay that raced a successful delivery is
// harmless on the receiving side.
package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Submission is one queued request.
type Submission struct {
	ID             string    `json:"id"`
	Method         string    `json:"method"`
	Path           string    `json:"path"`
	Body           []byte    `json:"body,omitempty"`
	IdempotencyKey string    `json:"idempotency_key"`
	CreatedAt      time.Time `json:"created_at"`
	Retries        int       `json:"retries"`
	LastError      string    `json:"last_error,omitempty"`
}

// Sender delivers one submission. A non-nil error keeps the submission
// queued.
type Sender func(ctx context.Context, sub Submission) error

// Queue is an in-memory FIFO of pending submissions. Safe for concurrent
// use.
type Queue struct {
	mu     sync.Mutex
	items  []Submission
	sender Sender
}

func NewQueue(sender Sender) *Queue {
	return &Queue{sender: sender}
}

// Enqueue appends a submission and returns it with generated id and
// idempotency key.
func (q *Queue) Enqueue(method, path string, body []byte) Submission {
	sub := Submission{
		ID:             uuid.NewString(),
		Method:         method,
		Path:           path,
		Body:           append([]byte(nil), body...),
		IdempotencyKey: uuid.NewString(),
		CreatedAt:      time.Now(),
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, sub)
	return sub
}

// Len returns the number of pending submissions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Pending returns a copy of the queued submissions, oldest first.
func (q *Queue) Pending() []Submission {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Submission(nil), q.items...)
}

// Flush drains the queue in order. On the first delivery failure the failed
// submission records the error, stays queued along with everything behind
// it, and the error is returned. A failed flush is never dropped, only
// deferred to the next sync signal.
func (q *Queue) Flush(ctx context.Context) error {
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.mu.Unlock()
			return nil
		}
		sub := q.items[0]
		q.mu.Unlock()

		if err := q.sender(ctx, sub); err != nil {
			q.mu.Lock()
			// The head may have been flushed concurrently; only annotate it
			// if it is still ours.
			if len(q.items) > 0 && q.items[0].ID == sub.ID {
				q.items[0].Retries++
				q.items[0].LastError = err.Error()
			}
			q.mu.Unlock()
			return fmt.Errorf("flushing submission %s: %w", sub.ID, err)
		}

		q.mu.Lock()
		if len(q.items) > 0 && q.items[0].ID == sub.ID {
			q.items = q.items[1:]
		}
		q.mu.Unlock()
	}
}
