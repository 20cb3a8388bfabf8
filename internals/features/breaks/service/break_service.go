package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	breakModel "shopfloor_backend/internals/features/breaks/model"
	calModel "shopfloor_backend/internals/features/calendar/model"
	mdModel "shopfloor_backend/internals/features/masterdata/model"
	sessModel "shopfloor_backend/internals/features/sessions/model"
	authModel "shopfloor_backend/internals/features/users/auth/model"
	"shopfloor_backend/internals/helpers/apperr"
	"shopfloor_backend/internals/helpers/dbtime"
)

// Store persists break types and declared operator breaks. Finders return (nil, nil) when missing.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error

	PlannableTeamUsers(ctx context.Context) ([]authModel.TeamUserModel, error)
	FindTeamUser(ctx context.Context, id uuid.UUID) (*authModel.TeamUserModel, error)
	FindShift(ctx context.Context, teamUserID uuid.UUID, date time.Time) (*calModel.ShiftEntryModel, error)
	OperatorsInSessions(ctx context.Context, teamUserID uuid.UUID, date time.Time, statuses ...sessModel.SessionStatus) ([]mdModel.OperatorModel, error)

	Breaks(ctx context.Context) ([]breakModel.BreakModel, error)
	FindBreak(ctx context.Context, id uuid.UUID) (*breakModel.BreakModel, error)
	CreateBreak(ctx context.Context, m *breakModel.BreakModel) error
	SaveBreak(ctx context.Context, m *breakModel.BreakModel) error
	DeleteBreak(ctx context.Context, id uuid.UUID) error

	// OperatorBreaksOn locks and returns the declared breaks of the operators on date.
	OperatorBreaksOn(ctx context.Context, date time.Time, operatorIDs []uuid.UUID) ([]breakModel.OperatorBreakModel, error)
	// UpsertOperatorBreak inserts or overwrites the break type of (date, operator) for the same team.
	// It reports false when the row belongs to another team.
	UpsertOperatorBreak(ctx context.Context, m *breakModel.OperatorBreakModel) (bool, error)
}

var (
	// PlannerStatuses: planners may declare breaks for anyone who worked that day.
	PlannerStatuses = []sessModel.SessionStatus{sessModel.StatusActive, sessModel.StatusCompleted}
	// TeamStatuses: a team declares breaks for operators still on the floor.
	TeamStatuses = []sessModel.SessionStatus{sessModel.StatusActive}
)

type Service struct {
	store Store
	zone  dbtime.Zone
	log   zerolog.Logger
}

func NewService(store Store, zone dbtime.Zone, logger zerolog.Logger) *Service {
	return &Service{store: store, zone: zone, log: logger.With().Str("component", "breaks").Logger()}
}

/* ===================== Break types ===================== */

type BreakTypeInput struct {
	Name  string
	Start dbtime.Tod
	End   dbtime.Tod
}

func (in BreakTypeInput) model() (*breakModel.BreakModel, error) {
	m := &breakModel.BreakModel{
		BreakName:      strings.TrimSpace(in.Name),
		BreakTimeStart: in.Start,
		BreakTimeEnd:   in.End,
	}
	if m.BreakName == "" {
		return nil, apperr.InvalidField("break_name", "name is required")
	}
	if err := m.Validate(); err != nil {
		return nil, apperr.InvalidField("break_time_end", "%s", err.Error())
	}
	return m, nil
}

func (s *Service) CreateBreakType(ctx context.Context, in BreakTypeInput) (*breakModel.BreakModel, error) {
	m, err := in.model()
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateBreak(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) UpdateBreakType(ctx context.Context, id uuid.UUID, in BreakTypeInput) (*breakModel.BreakModel, error) {
	m, err := in.model()
	if err != nil {
		return nil, err
	}
	err = s.store.Transaction(ctx, func(tx Store) error {
		cur, err := tx.FindBreak(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return apperr.NotFound("break type not found")
		}
		m.BreakID = cur.BreakID
		return tx.SaveBreak(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteBreakType(ctx context.Context, id uuid.UUID) error {
	return s.store.Transaction(ctx, func(tx Store) error {
		cur, err := tx.FindBreak(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return apperr.NotFound("break type not found")
		}
		return tx.DeleteBreak(ctx, id)
	})
}

/* ===================== Operator breaks ===================== */

type AssignInput struct {
	TeamUserID  uuid.UUID
	Date        time.Time
	BreakID     uuid.UUID
	OperatorIDs []uuid.UUID
	// Statuses of the team's sessions that make an operator eligible.
	Statuses []sessModel.SessionStatus
}

type AssignResult struct {
	Date    string `json:"date"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
}

// Assign declares one break per operator for (date, operator, team). The whole batch is
// rejected when any operator already has a break with another team that date.
func (s *Service) Assign(ctx context.Context, in AssignInput) (*AssignResult, error) {
	ids := uniqueIDs(in.OperatorIDs)
	if len(ids) == 0 {
		return nil, apperr.InvalidField("operators", "select at least one operator")
	}
	date := dbtime.DateOf(in.Date)
	statuses := in.Statuses
	if len(statuses) == 0 {
		statuses = PlannerStatuses
	}
	res := &AssignResult{Date: date.Format("2006-01-02")}
	err := s.store.Transaction(ctx, func(tx Store) error {
		res.Created, res.Updated = 0, 0
		team, err := tx.FindTeamUser(ctx, in.TeamUserID)
		if err != nil {
			return err
		}
		if team == nil || !team.TeamUserIsActive {
			return apperr.NotFound("team user not found")
		}
		brk, err := tx.FindBreak(ctx, in.BreakID)
		if err != nil {
			return err
		}
		if brk == nil {
			return apperr.NotFound("break type not found")
		}

		present, err := tx.OperatorsInSessions(ctx, team.TeamUserID, date, statuses...)
		if err != nil {
			return err
		}
		badges := make(map[uuid.UUID]string, len(present))
		for _, op := range present {
			badges[op.OperatorID] = op.OperatorBadgeNum
		}
		for _, id := range ids {
			if _, ok := badges[id]; !ok {
				return apperr.InvalidField("operators", "operator %s has no session with %s on %s", id, team.TeamUserUsername, res.Date)
			}
		}

		existing, err := tx.OperatorBreaksOn(ctx, date, ids)
		if err != nil {
			return err
		}
		mine := make(map[uuid.UUID]bool, len(existing))
		for _, b := range existing {
			if b.OperatorBreakTeamUserID != team.TeamUserID {
				return apperr.InvalidField("operators", "operator %s already has a break with another team on %s", badges[b.OperatorBreakOperatorID], res.Date)
			}
			mine[b.OperatorBreakOperatorID] = true
		}

		for _, id := range ids {
			ok, err := tx.UpsertOperatorBreak(ctx, &breakModel.OperatorBreakModel{
				OperatorBreakDate:       date,
				OperatorBreakOperatorID: id,
				OperatorBreakTeamUserID: team.TeamUserID,
				OperatorBreakBreakID:    brk.BreakID,
			})
			if err != nil {
				return err
			}
			if !ok {
				return apperr.InvalidField("operators", "operator %s already has a break with another team on %s", badges[id], res.Date)
			}
			if mine[id] {
				res.Updated++
			} else {
				res.Created++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("team_user_id", in.TeamUserID.String()).
		Str("date", res.Date).
		Int("created", res.Created).
		Int("updated", res.Updated).
		Msg("operator breaks declared")
	return res, nil
}

func uniqueIDs(in []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(in))
	out := make([]uuid.UUID, 0, len(in))
	for _, id := range in {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
