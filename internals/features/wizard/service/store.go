package service

import (
	"context"

	"github.com/google/uuid"
)

// Snapshot is the persisted form of one wizard slot.
type Snapshot struct {
	Step    int
	Payload []byte
}

// StateStore keeps one slot per (user, kind). Load returns (nil, nil) when the slot is empty.
type StateStore interface {
	Load(ctx context.Context, userID uuid.UUID, kind string) (*Snapshot, error)
	Save(ctx context.Context, userID uuid.UUID, kind string, snap Snapshot) error
	Clear(ctx context.Context, userID uuid.UUID, kind string) error
}
