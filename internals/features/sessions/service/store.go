package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	calModel "shopfloor_backend/internals/features/calendar/model"
	mdModel "shopfloor_backend/internals/features/masterdata/model"
	sessModel "shopfloor_backend/internals/features/sessions/model"
	authModel "shopfloor_backend/internals/features/users/auth/model"
)

// Store is the persistence the reconciliation engine needs.
// Finders return (nil, nil) when the row does not exist.
type Store interface {
	// Transaction runs fn against a store bound to one database transaction.
	Transaction(ctx context.Context, fn func(tx Store) error) error
	// LockOperator serializes login transitions of one operator until the transaction ends.
	LockOperator(ctx context.Context, operatorID uuid.UUID) error

	FindOperatorByBadge(ctx context.Context, badge string) (*mdModel.OperatorModel, error)
	FindOperator(ctx context.Context, id uuid.UUID) (*mdModel.OperatorModel, error)
	OperatorLabels(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	FindTeamUser(ctx context.Context, id uuid.UUID) (*authModel.TeamUserModel, error)
	FindShift(ctx context.Context, teamUserID uuid.UUID, date time.Time) (*calModel.ShiftEntryModel, error)

	FindSession(ctx context.Context, id uuid.UUID, forUpdate bool) (*sessModel.OperatorSessionModel, error)
	// ActiveSessionsOfOperator returns every ACTIVE session of the operator, any team, any date.
	ActiveSessionsOfOperator(ctx context.Context, operatorID uuid.UUID) ([]sessModel.OperatorSessionModel, error)
	// ActiveSessionsUpTo returns ACTIVE sessions with login_team_date <= date, oldest first.
	ActiveSessionsUpTo(ctx context.Context, date time.Time) ([]sessModel.OperatorSessionModel, error)
	// CompletedWithoutBreak returns COMPLETED sessions in [from, to] with both team times
	// set and no break yet, ordered by login_team_date.
	CompletedWithoutBreak(ctx context.Context, from, to time.Time) ([]sessModel.OperatorSessionModel, error)
	// TeamSessions returns the team's sessions on date with one of the statuses, by login time.
	TeamSessions(ctx context.Context, teamUserID uuid.UUID, date time.Time, statuses ...sessModel.SessionStatus) ([]sessModel.OperatorSessionModel, error)

	CreateSession(ctx context.Context, s *sessModel.OperatorSessionModel) error
	SaveSession(ctx context.Context, s *sessModel.OperatorSessionModel) error
}
