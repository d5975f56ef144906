package lifecycle

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/computeplane/computeplane/master/internal/api"
	"github.com/computeplane/computeplane/master/internal/db"
)

// Store persists one payload per tracking id. Update must apply concurrent updates of the same
// tracking id one after another; fn receives nil when no payload exists yet. Payload returns an
// error wrapping api.ErrNotFound for unknown tracking ids.
type Store interface {
	Payload(ctx context.Context, trackingID string) ([]byte, error)
	Update(ctx context.Context, trackingID string, fn func(current []byte) ([]byte, error)) error
	TrackingIDs(ctx context.Context) ([]string, error)
}

// MemoryStore keeps payloads in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	payloads map[string][]byte
	order    []string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{payloads: map[string][]byte{}}
}

// Payload implements Store.
func (m *MemoryStore) Payload(_ context.Context, trackingID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payloads[trackingID]
	if !ok {
		return nil, api.AsErrNotFound("lifecycle log %s", trackingID)
	}
	return append([]byte(nil), p...), nil
}

// Update implements Store. The store lock is held while fn runs.
func (m *MemoryStore) Update(
	_ context.Context, trackingID string, fn func(current []byte) ([]byte, error),
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.payloads[trackingID]
	if ok {
		cur = append([]byte(nil), cur...)
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	if !ok {
		m.order = append(m.order, trackingID)
	}
	m.payloads[trackingID] = next
	return nil
}

// TrackingIDs implements Store, in first-seen order.
func (m *MemoryStore) TrackingIDs(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...), nil
}

// PostgresStore keeps payloads in the lifecycle_logs table.
type PostgresStore struct {
	db *db.PgDB
}

// NewPostgresStore returns a store over the database.
func NewPostgresStore(pg *db.PgDB) *PostgresStore {
	return &PostgresStore{db: pg}
}

// Payload implements Store.
func (p *PostgresStore) Payload(ctx context.Context, trackingID string) ([]byte, error) {
	payload, err := p.db.LifecyclePayload(ctx, trackingID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, api.AsErrNotFound("lifecycle log %s", trackingID)
	}
	return payload, err
}

// Update implements Store. The row is locked for the duration of the update.
func (p *PostgresStore) Update(
	ctx context.Context, trackingID string, fn func(current []byte) ([]byte, error),
) error {
	return p.db.UpdateLifecyclePayload(ctx, trackingID, fn)
}

// TrackingIDs implements Store, most recently updated first.
func (p *PostgresStore) TrackingIDs(ctx context.Context) ([]string, error) {
	return p.db.LifecycleTrackingIDs(ctx)
}
