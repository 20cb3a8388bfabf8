package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	dtModel "shopfloor_backend/internals/features/downtimes/model"
	sessModel "shopfloor_backend/internals/features/sessions/model"
	authModel "shopfloor_backend/internals/features/users/auth/model"
	"shopfloor_backend/internals/helpers/apperr"
	"shopfloor_backend/internals/helpers/dbtime"
)

// SessionChoice is the first non-ignored session of one operator on a team day.
type SessionChoice struct {
	SessionID    uuid.UUID  `gorm:"column:session_id" json:"session_id"`
	OperatorID   uuid.UUID  `gorm:"column:operator_id" json:"operator_id"`
	BadgeNum     string     `gorm:"column:badge_num" json:"badge_num"`
	OperatorName string     `gorm:"column:operator_name" json:"operator_name"`
	LoginTime    dbtime.Tod `gorm:"column:login_time" json:"login_time"`
}

func (c SessionChoice) Label() string {
	return c.BadgeNum + " " + c.OperatorName + " (in " + c.LoginTime.String() + ")"
}

// Store persists downtime types and declarations. Finders return (nil, nil) when missing.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error

	PlannableTeamUsers(ctx context.Context) ([]authModel.TeamUserModel, error)
	FindTeamUser(ctx context.Context, id uuid.UUID) (*authModel.TeamUserModel, error)

	Downtimes(ctx context.Context, subdepartmentID *uuid.UUID) ([]dtModel.DowntimeModel, error)
	FindDowntime(ctx context.Context, id uuid.UUID) (*dtModel.DowntimeModel, error)
	CreateDowntime(ctx context.Context, m *dtModel.DowntimeModel) error
	SaveDowntime(ctx context.Context, m *dtModel.DowntimeModel) error
	DeleteDowntime(ctx context.Context, id uuid.UUID) error
	DowntimeInUse(ctx context.Context, id uuid.UUID) (bool, error)

	// SessionChoices returns one session per operator (earliest login) of the team on date, IGNORE excluded.
	SessionChoices(ctx context.Context, teamUserID uuid.UUID, date time.Time) ([]SessionChoice, error)
	FindSession(ctx context.Context, id uuid.UUID) (*sessModel.OperatorSessionModel, error)

	CreateDowntimeDeclaration(ctx context.Context, m *dtModel.DowntimeDeclarationModel) error
	FindDowntimeDeclaration(ctx context.Context, id uuid.UUID) (*dtModel.DowntimeDeclarationModel, error)
	SaveDowntimeDeclaration(ctx context.Context, m *dtModel.DowntimeDeclarationModel) error
	DeleteDowntimeDeclaration(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	store Store
	zone  dbtime.Zone
	log   zerolog.Logger
}

func NewService(store Store, zone dbtime.Zone, logger zerolog.Logger) *Service {
	return &Service{store: store, zone: zone, log: logger.With().Str("component", "downtimes").Logger()}
}

func (s *Service) Zone() dbtime.Zone { return s.zone }

/* ===================== Downtime types ===================== */

type DowntimeTypeInput struct {
	Name            string
	SubdepartmentID uuid.UUID
	FixedDuration   bool
	Value           *decimal.Decimal
}

func (in DowntimeTypeInput) model() (*dtModel.DowntimeModel, error) {
	m := &dtModel.DowntimeModel{
		DowntimeName:            strings.TrimSpace(in.Name),
		DowntimeSubdepartmentID: in.SubdepartmentID,
		DowntimeFixedDuration:   in.FixedDuration,
	}
	if m.DowntimeName == "" {
		return nil, apperr.InvalidField("downtime_name", "name is required")
	}
	if in.SubdepartmentID == uuid.Nil {
		return nil, apperr.InvalidField("downtime_subdepartment_id", "subdepartment is required")
	}
	if in.Value != nil {
		v := in.Value.Round(2)
		if v.IsNegative() {
			return nil, apperr.InvalidField("downtime_value", "value cannot be negative")
		}
		m.DowntimeValue = &v
	}
	if m.DowntimeFixedDuration && (m.DowntimeValue == nil || !m.DowntimeValue.IsPositive()) {
		return nil, apperr.InvalidField("downtime_value", "%s", dtModel.ErrFixedValueRequired.Error())
	}
	return m, nil
}

func (s *Service) CreateDowntimeType(ctx context.Context, in DowntimeTypeInput) (*dtModel.DowntimeModel, error) {
	m, err := in.model()
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateDowntime(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) UpdateDowntimeType(ctx context.Context, id uuid.UUID, in DowntimeTypeInput) (*dtModel.DowntimeModel, error) {
	m, err := in.model()
	if err != nil {
		return nil, err
	}
	err = s.store.Transaction(ctx, func(tx Store) error {
		cur, err := tx.FindDowntime(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return apperr.NotFound("downtime type not found")
		}
		m.DowntimeID = cur.DowntimeID
		return tx.SaveDowntime(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteDowntimeType(ctx context.Context, id uuid.UUID) error {
	return s.store.Transaction(ctx, func(tx Store) error {
		cur, err := tx.FindDowntime(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return apperr.NotFound("downtime type not found")
		}
		used, err := tx.DowntimeInUse(ctx, id)
		if err != nil {
			return err
		}
		if used {
			return apperr.Conflict("downtime type %s has declarations", cur.DowntimeName)
		}
		return tx.DeleteDowntime(ctx, id)
	})
}

/* ===================== Declarations ===================== */

type DeclareInput struct {
	TeamUserID uuid.UUID
	Date       time.Time
	SessionIDs []uuid.UUID
	DowntimeID uuid.UUID
	// Value is ignored for fixed-duration types; Repetition is ignored for the others.
	Value      *decimal.Decimal
	Repetition int
}

type DeclareResult struct {
	Date         string                             `json:"date"`
	Downtime     string                             `json:"downtime"`
	Declarations []dtModel.DowntimeDeclarationModel `json:"declarations"`
}

// durationError maps the lock-rule errors of ApplyDuration onto the duration field.
func durationError(err error) error {
	switch {
	case errors.Is(err, dtModel.ErrMinimumRepetition):
		return apperr.InvalidField("duration", "repetition must be at least 1")
	case errors.Is(err, dtModel.ErrMinimumValue):
		return apperr.InvalidField("duration", "downtime value must be at least 0.01 minutes")
	default:
		return apperr.InvalidField("duration", "%s", err.Error())
	}
}

// Declare books one downtime declaration per selected operator session in one transaction.
func (s *Service) Declare(ctx context.Context, in DeclareInput) (*DeclareResult, error) {
	ids := uniqueIDs(in.SessionIDs)
	if len(ids) == 0 {
		return nil, apperr.InvalidField("sessions", "select at least one operator")
	}
	date := dbtime.DateOf(in.Date)
	res := &DeclareResult{Date: date.Format("2006-01-02")}

	err := s.store.Transaction(ctx, func(tx Store) error {
		res.Declarations = nil
		team, err := tx.FindTeamUser(ctx, in.TeamUserID)
		if err != nil {
			return err
		}
		if team == nil || !team.TeamUserIsActive {
			return apperr.NotFound("team user not found")
		}
		if team.TeamUserSubdepartmentID == nil {
			return apperr.InvalidField("team_user", "team %s has no subdepartment", team.TeamUserUsername)
		}
		dt, err := tx.FindDowntime(ctx, in.DowntimeID)
		if err != nil {
			return err
		}
		if dt == nil {
			return apperr.NotFound("downtime type not found")
		}
		if dt.DowntimeSubdepartmentID != *team.TeamUserSubdepartmentID {
			return apperr.InvalidField("downtime", "downtime %s belongs to another subdepartment", dt.DowntimeName)
		}
		value, rep, err := dtModel.ApplyDuration(dt, in.Value, in.Repetition)
		if err != nil {
			return durationError(err)
		}
		res.Downtime = dt.DowntimeName

		seen := make(map[uuid.UUID]bool, len(ids))
		for _, id := range ids {
			sess, err := tx.FindSession(ctx, id)
			if err != nil {
				return err
			}
			if sess == nil {
				return apperr.NotFound("operator session not found")
			}
			if sess.OperatorSessionTeamUserID != team.TeamUserID ||
				!dbtime.SameDate(sess.OperatorSessionLoginTeamDate, date) ||
				sess.OperatorSessionStatus == sessModel.StatusIgnore {
				return apperr.InvalidField("sessions", "session %s is not a session of %s on %s", id, team.TeamUserUsername, res.Date)
			}
			if seen[sess.OperatorSessionOperatorID] {
				return apperr.InvalidField("sessions", "an operator can be selected only once")
			}
			seen[sess.OperatorSessionOperatorID] = true

			m := dtModel.DowntimeDeclarationModel{
				DowntimeDeclarationSessionID:  id,
				DowntimeDeclarationDowntimeID: dt.DowntimeID,
				DowntimeDeclarationValue:      value,
				DowntimeDeclarationRepetition: rep,
			}
			m.Derive()
			if err := tx.CreateDowntimeDeclaration(ctx, &m); err != nil {
				return err
			}
			res.Declarations = append(res.Declarations, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("team_user_id", in.TeamUserID.String()).
		Str("date", res.Date).
		Str("downtime", res.Downtime).
		Int("declarations", len(res.Declarations)).
		Msg("downtime declared")
	return res, nil
}

// UpdateDeclaration re-applies the lock rules of the downtime type. Nil arguments keep the stored values.
func (s *Service) UpdateDeclaration(ctx context.Context, id uuid.UUID, value *decimal.Decimal, repetition *int) (*dtModel.DowntimeDeclarationModel, error) {
	var out *dtModel.DowntimeDeclarationModel
	err := s.store.Transaction(ctx, func(tx Store) error {
		m, err := tx.FindDowntimeDeclaration(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return apperr.NotFound("downtime declaration not found")
		}
		dt, err := tx.FindDowntime(ctx, m.DowntimeDeclarationDowntimeID)
		if err != nil {
			return err
		}
		if dt == nil {
			return apperr.NotFound("downtime type not found")
		}
		v, rep := m.DowntimeDeclarationValue, m.DowntimeDeclarationRepetition
		if value != nil {
			v = *value
		}
		if repetition != nil {
			rep = *repetition
		}
		// the stored value survives for fixed types even when the type's value changed since
		if dt.DowntimeFixedDuration {
			locked := *dt
			locked.DowntimeValue = &m.DowntimeDeclarationValue
			dt = &locked
		}
		nv, nrep, err := dtModel.ApplyDuration(dt, &v, rep)
		if err != nil {
			return durationError(err)
		}
		m.DowntimeDeclarationValue, m.DowntimeDeclarationRepetition = nv, nrep
		m.Derive()
		if err := tx.SaveDowntimeDeclaration(ctx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	return out, err
}

func (s *Service) DeleteDeclaration(ctx context.Context, id uuid.UUID) error {
	return s.store.Transaction(ctx, func(tx Store) error {
		m, err := tx.FindDowntimeDeclaration(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return apperr.NotFound("downtime declaration not found")
		}
		return tx.DeleteDowntimeDeclaration(ctx, id)
	})
}

// Choices returns the session choices sorted by badge.
func (s *Service) Choices(ctx context.Context, teamUserID uuid.UUID, date time.Time) ([]SessionChoice, error) {
	out, err := s.store.SessionChoices(ctx, teamUserID, dbtime.DateOf(date))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].BadgeNum < out[j].BadgeNum })
	return out, nil
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
