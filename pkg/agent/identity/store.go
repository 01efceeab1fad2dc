package identity

import (
	"context"
	"sync"

	"github.com/artex-assurances/aria/pkg/agent/directory"
)

// Snapshot is the persisted shape of a session's identity state.
type Snapshot struct {
	Pending   *directory.Client `json:"pending,omitempty"`
	Confirmed *directory.Client `json:"confirmed,omitempty"`
}

// Store persists identity snapshots per call id. Implementations must treat a
// missing call id as (zero, false, nil), not an error.
type Store interface {
	Save(ctx context.Context, callID string, snap Snapshot) error
	Load(ctx context.Context, callID string) (Snapshot, bool, error)
	Delete(ctx context.Context, callID string) error
}

// MemoryStore keeps snapshots in-process. This is the default: identity state
// is session-scoped and dies with the call.
type MemoryStore struct {
	mu    sync.Mutex
	snaps map[string]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]Snapshot)}
}

func (m *MemoryStore) Save(_ context.Context, callID string, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[callID] = Snapshot{Pending: clone(snap.Pending), Confirmed: clone(snap.Confirmed)}
	return nil
}

func (m *MemoryStore) Load(_ context.Context, callID string) (Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[callID]
	if !ok {
		return Snapshot{}, false, nil
	}
	return Snapshot{Pending: clone(snap.Pending), Confirmed: clone(snap.Confirmed)}, true, nil
}

func (m *MemoryStore) Delete(_ context.Context, callID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, callID)
	return nil
}
