package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type slotKey struct {
	user uuid.UUID
	kind string
}

// MemoryStore is an in-process StateStore for tests and single-node tooling.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[slotKey]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: map[slotKey]Snapshot{}}
}

func (m *MemoryStore) Load(ctx context.Context, userID uuid.UUID, kind string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[slotKey{userID, kind}]
	if !ok {
		return nil, nil
	}
	cp := Snapshot{Step: s.Step, Payload: append([]byte(nil), s.Payload...)}
	return &cp, nil
}

func (m *MemoryStore) Save(ctx context.Context, userID uuid.UUID, kind string, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slotKey{userID, kind}] = Snapshot{Step: snap.Step, Payload: append([]byte(nil), snap.Payload...)}
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context, userID uuid.UUID, kind string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, slotKey{userID, kind})
	return nil
}

// Has reports whether a slot exists.
func (m *MemoryStore) Has(userID uuid.UUID, kind string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.slots[slotKey{userID, kind}]
	return ok
}
