package service

import (
	"context"

	"github.com/google/uuid"

	rtModel "shopfloor_backend/internals/features/routings/model"
)

// ComputeReady: at least one operation line and exactly one of them final.
func ComputeReady(lines []rtModel.RoutingOperationModel) bool {
	finals := 0
	for _, l := range lines {
		if l.RoutingOperationFinal {
			finals++
		}
	}
	return len(lines) >= 1 && finals == 1
}

// Recompute stores the readiness derived from the routing's current lines.
// Call it inside the transaction that changed the lines.
func Recompute(ctx context.Context, tx Store, routingID uuid.UUID) (bool, error) {
	lines, err := tx.RoutingOperations(ctx, routingID)
	if err != nil {
		return false, err
	}
	ready := ComputeReady(lines)
	if err := tx.SetReady(ctx, routingID, ready); err != nil {
		return false, err
	}
	return ready, nil
}
