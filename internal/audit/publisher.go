package audit

import (
	"context"
	"time"
)

// Store is the append-only sink behind the publisher.
type Store interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context) ([]Event, error)
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.store.Append(ctx, event)
}

func (p *Publisher) List(ctx context.Context) ([]Event, error) {
	return p.store.List(ctx)
}

// SubjectFromLookupKey truncates a lookup key to an audit-safe prefix. Eight
// hex characters is enough to correlate events without enabling dictionary
// reversal of short identifier spaces.
func SubjectFromLookupKey(lookupKey string) string {
	if len(lookupKey) <= 8 {
		return lookupKey
	}
	return lookupKey[:8]
}
