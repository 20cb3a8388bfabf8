package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	mdModel "shopfloor_backend/internals/features/masterdata/model"
	sessModel "shopfloor_backend/internals/features/sessions/model"
	"shopfloor_backend/internals/helpers/apperr"
	"shopfloor_backend/internals/helpers/dbtime"
)

const NoticeLoggedOutElsewhere = "logged out from another team"

// Engine opens and closes operator sessions against the shift calendar.
type Engine struct {
	store Store
	zone  dbtime.Zone
	log   zerolog.Logger
}

func NewEngine(store Store, zone dbtime.Zone, logger zerolog.Logger) *Engine {
	return &Engine{store: store, zone: zone, log: logger.With().Str("component", "reconcile").Logger()}
}

func (e *Engine) Zone() dbtime.Zone { return e.zone }

type LoginResult struct {
	Session  *sessModel.OperatorSessionModel  `json:"session"`
	Operator *mdModel.OperatorModel           `json:"operator"`
	Closed   []sessModel.OperatorSessionModel `json:"closed,omitempty"`
	Notice   string                           `json:"notice,omitempty"`
}

// Login badges an operator into a team. Prior ACTIVE sessions of the operator at other
// teams (or from earlier dates) are closed first; a same-team login today is rejected.
func (e *Engine) Login(ctx context.Context, teamUserID uuid.UUID, badge string) (*LoginResult, error) {
	badge = mdModel.NormalizeBadge(badge)
	if badge == "" {
		return nil, apperr.InvalidField("badge_num", "badge number is required")
	}
	now := e.zone.Now()

	var res *LoginResult
	err := e.store.Transaction(ctx, func(tx Store) error {
		team, err := tx.FindTeamUser(ctx, teamUserID)
		if err != nil {
			return err
		}
		if team == nil || !team.TeamUserIsActive {
			return apperr.Forbidden("team account is not active")
		}

		op, err := tx.FindOperatorByBadge(ctx, badge)
		if err != nil {
			return err
		}
		if op == nil || !op.OperatorActive {
			return apperr.NotFound("no active operator with badge %s", badge)
		}

		shift, err := tx.FindShift(ctx, teamUserID, now.Date)
		if err != nil {
			return err
		}
		if shift == nil {
			return apperr.Invalid("no shift found in calendar for today")
		}
		if now.Time.After(shift.ShiftEntryEnd.Time) {
			return apperr.Invalid("login rejected: after the end of the shift (%s)", shift.ShiftEntryEnd)
		}

		if err := tx.LockOperator(ctx, op.OperatorID); err != nil {
			return err
		}
		actives, err := tx.ActiveSessionsOfOperator(ctx, op.OperatorID)
		if err != nil {
			return err
		}
		for _, s := range actives {
			if s.OperatorSessionTeamUserID == teamUserID && dbtime.SameDate(s.OperatorSessionLoginTeamDate, now.Date) {
				return apperr.Conflict("operator %s is already logged in this team today", op.OperatorBadgeNum)
			}
		}

		res = &LoginResult{Operator: op}
		for i := range actives {
			s := actives[i]
			prevShift, err := tx.FindShift(ctx, s.OperatorSessionTeamUserID, s.OperatorSessionLoginTeamDate)
			if err != nil {
				return err
			}
			if Close(&s, prevShift, now, ClosingTime(&s, now), e.zone.Loc) == OutcomeUnchanged {
				continue
			}
			if err := tx.SaveSession(ctx, &s); err != nil {
				return err
			}
			res.Closed = append(res.Closed, s)
			if s.OperatorSessionTeamUserID != teamUserID {
				res.Notice = NoticeLoggedOutElsewhere
			}
		}

		sess := &sessModel.OperatorSessionModel{
			OperatorSessionOperatorID:    op.OperatorID,
			OperatorSessionTeamUserID:    teamUserID,
			OperatorSessionLoginActual:   now.UTC,
			OperatorSessionLoginTeamDate: dbtime.DateOf(shift.ShiftEntryDate),
			OperatorSessionLoginTeamTime: TeamLoginTime(shift, team.TeamUserLoginGracePeriod, now.Time),
			OperatorSessionStatus:        sessModel.StatusActive,
		}
		if err := tx.CreateSession(ctx, sess); err != nil {
			return err
		}
		res.Session = sess
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("badge", badge).
		Str("team_user_id", teamUserID.String()).
		Str("session_id", res.Session.OperatorSessionID.String()).
		Int("closed", len(res.Closed)).
		Msg("operator login")
	return res, nil
}

// Logout closes one session of the team. A session that is no longer ACTIVE is returned
// unchanged with OutcomeUnchanged.
func (e *Engine) Logout(ctx context.Context, teamUserID, sessionID uuid.UUID) (*sessModel.OperatorSessionModel, Outcome, error) {
	now := e.zone.Now()
	var (
		out  *sessModel.OperatorSessionModel
		done Outcome
	)
	err := e.store.Transaction(ctx, func(tx Store) error {
		s, err := tx.FindSession(ctx, sessionID, true)
		if err != nil {
			return err
		}
		if s == nil {
			return apperr.NotFound("session not found")
		}
		if s.OperatorSessionTeamUserID != teamUserID {
			return apperr.Forbidden("session belongs to another team")
		}
		out = s
		shift, err := tx.FindShift(ctx, s.OperatorSessionTeamUserID, s.OperatorSessionLoginTeamDate)
		if err != nil {
			return err
		}
		done = Close(s, shift, now, ClosingTime(s, now), e.zone.Loc)
		if done == OutcomeUnchanged {
			return nil
		}
		return tx.SaveSession(ctx, s)
	})
	if err != nil {
		return nil, OutcomeUnchanged, err
	}
	e.log.Info().Str("session_id", sessionID.String()).Stringer("outcome", done).Msg("operator logout")
	return out, done, nil
}

// CloseSelected closes today's ACTIVE sessions of a team at a chosen wall time, which
// must lie inside today's shift. Sessions no longer ACTIVE are skipped.
func (e *Engine) CloseSelected(ctx context.Context, teamUserID uuid.UUID, sessionIDs []uuid.UUID, at dbtime.Tod) (closed, skipped int, err error) {
	if len(sessionIDs) == 0 {
		return 0, 0, apperr.InvalidField("operators", "select at least one operator")
	}
	now := e.zone.Now()
	err = e.store.Transaction(ctx, func(tx Store) error {
		closed, skipped = 0, 0
		shift, err := tx.FindShift(ctx, teamUserID, now.Date)
		if err != nil {
			return err
		}
		if shift == nil {
			return apperr.Invalid("no shift found in calendar for today")
		}
		if !shift.Contains(at) {
			return apperr.InvalidField("logoff_time", "logoff time must be between %s and %s", shift.ShiftEntryStart, shift.ShiftEntryEnd)
		}
		for _, id := range sessionIDs {
			s, err := tx.FindSession(ctx, id, true)
			if err != nil {
				return err
			}
			if s == nil || s.OperatorSessionTeamUserID != teamUserID || !dbtime.SameDate(s.OperatorSessionLoginTeamDate, now.Date) {
				return apperr.InvalidField("operators", "session %s is not one of today's sessions of this team", id)
			}
			if Close(s, shift, now, at, e.zone.Loc) == OutcomeUnchanged {
				skipped++
				continue
			}
			if err := tx.SaveSession(ctx, s); err != nil {
				return err
			}
			closed++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	e.log.Info().Str("team_user_id", teamUserID.String()).Int("closed", closed).Int("skipped", skipped).Msg("bulk logout")
	return closed, skipped, nil
}

type ManualSession struct {
	TeamUserID uuid.UUID
	OperatorID uuid.UUID
	Date       time.Time
	LoginTime  dbtime.Tod
	LogoffTime *dbtime.Tod
}

// CreateManual records a session on behalf of a team. Without a logoff time the session
// is ACTIVE and subject to the single-active rule.
func (e *Engine) CreateManual(ctx context.Context, in ManualSession) (*sessModel.OperatorSessionModel, error) {
	date := dbtime.DateOf(in.Date)
	var out *sessModel.OperatorSessionModel
	err := e.store.Transaction(ctx, func(tx Store) error {
		op, err := tx.FindOperator(ctx, in.OperatorID)
		if err != nil {
			return err
		}
		if op == nil {
			return apperr.NotFound("operator not found")
		}
		shift, err := tx.FindShift(ctx, in.TeamUserID, date)
		if err != nil {
			return err
		}
		if shift == nil {
			return apperr.Invalid("no shift found in calendar for %s", date.Format("2006-01-02"))
		}
		if !shift.Contains(in.LoginTime) {
			return apperr.InvalidField("login_team_time", "must be between %s and %s", shift.ShiftEntryStart, shift.ShiftEntryEnd)
		}

		s := &sessModel.OperatorSessionModel{
			OperatorSessionOperatorID:    in.OperatorID,
			OperatorSessionTeamUserID:    in.TeamUserID,
			OperatorSessionLoginActual:   dbtime.Combine(date, in.LoginTime, e.zone.Loc).UTC(),
			OperatorSessionLoginTeamDate: date,
			OperatorSessionLoginTeamTime: in.LoginTime,
			OperatorSessionStatus:        sessModel.StatusActive,
		}

		if in.LogoffTime != nil {
			if !in.LogoffTime.After(in.LoginTime.Time) || !shift.Contains(*in.LogoffTime) {
				return apperr.InvalidField("logoff_team_time", "must be after login and not after %s", shift.ShiftEntryEnd)
			}
			logoff := *in.LogoffTime
			actual := dbtime.Combine(date, logoff, e.zone.Loc).UTC()
			s.OperatorSessionStatus = sessModel.StatusCompleted
			s.OperatorSessionLogoffActual = &actual
			s.OperatorSessionLogoffTeamDate = &date
			s.OperatorSessionLogoffTeamTime = &logoff
		} else {
			if err := tx.LockOperator(ctx, in.OperatorID); err != nil {
				return err
			}
			actives, err := tx.ActiveSessionsOfOperator(ctx, in.OperatorID)
			if err != nil {
				return err
			}
			if len(actives) > 0 {
				return apperr.Conflict("operator %s already has an active session", op.OperatorBadgeNum)
			}
		}

		if err := tx.CreateSession(ctx, s); err != nil {
			return err
		}
		out = s
		return nil
	})
	return out, err
}

// MaxBreakMinutes caps a break set by hand on a session.
const MaxBreakMinutes = 30

// SessionPatch edits a recorded session. Nil fields are left alone; actual timestamps never change.
type SessionPatch struct {
	BreakMinutes *int
	LoginTime    *dbtime.Tod
	LogoffTime   *dbtime.Tod
}

func (p SessionPatch) empty() bool {
	return p.BreakMinutes == nil && p.LoginTime == nil && p.LogoffTime == nil
}

// UpdateSession applies a planner correction. Team times must stay inside the shift of the
// session's team and date, and the logoff time of a still ACTIVE session cannot be set.
func (e *Engine) UpdateSession(ctx context.Context, id uuid.UUID, p SessionPatch) (*sessModel.OperatorSessionModel, error) {
	if p.empty() {
		return nil, apperr.Invalid("nothing to update")
	}
	if p.BreakMinutes != nil && (*p.BreakMinutes < 0 || *p.BreakMinutes > MaxBreakMinutes) {
		return nil, apperr.InvalidField("break_minutes", "must be between 0 and %d", MaxBreakMinutes)
	}

	var out *sessModel.OperatorSessionModel
	err := e.store.Transaction(ctx, func(tx Store) error {
		s, err := tx.FindSession(ctx, id, true)
		if err != nil {
			return err
		}
		if s == nil {
			return apperr.NotFound("operator session %s not found", id)
		}

		if p.LoginTime != nil || p.LogoffTime != nil {
			date := s.OperatorSessionLoginTeamDate
			shift, err := tx.FindShift(ctx, s.OperatorSessionTeamUserID, date)
			if err != nil {
				return err
			}
			if shift == nil {
				return apperr.Invalid("no shift found in calendar for %s", date.Format("2006-01-02"))
			}
			login := s.OperatorSessionLoginTeamTime
			if p.LoginTime != nil {
				login = *p.LoginTime
			}
			if !shift.Contains(login) {
				return apperr.InvalidField("login_team_time", "must be between %s and %s", shift.ShiftEntryStart, shift.ShiftEntryEnd)
			}
			if p.LogoffTime != nil && s.IsActive() {
				return apperr.InvalidField("logoff_team_time", "session is still active, log the operator out instead")
			}
			logoff := s.OperatorSessionLogoffTeamTime
			if p.LogoffTime != nil {
				logoff = p.LogoffTime
			}
			if logoff != nil && s.OperatorSessionStatus == sessModel.StatusCompleted {
				if !logoff.After(login.Time) || !shift.Contains(*logoff) {
					return apperr.InvalidField("logoff_team_time", "must be after login and not after %s", shift.ShiftEntryEnd)
				}
			}
			s.OperatorSessionLoginTeamTime = login
			if p.LogoffTime != nil {
				off := *p.LogoffTime
				s.OperatorSessionLogoffTeamTime = &off
			}
		}
		if p.BreakMinutes != nil {
			b := *p.BreakMinutes
			s.OperatorSessionBreakMinutes = &b
		}

		if err := tx.SaveSession(ctx, s); err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().
		Str("session_id", id.String()).
		Str("login_team_time", out.OperatorSessionLoginTeamTime.String()).
		Msg("session corrected")
	return out, nil
}

type Dashboard struct {
	Date          time.Time   `json:"date"`
	ShiftState    ShiftState  `json:"shift_state"`
	ShiftStart    *dbtime.Tod `json:"shift_start,omitempty"`
	ShiftEnd      *dbtime.Tod `json:"shift_end,omitempty"`
	ActiveCount   int         `json:"active_count"`
	FinishedCount int         `json:"finished_count"`
}

// TeamDashboard summarizes today's shift and sessions of a team.
func (e *Engine) TeamDashboard(ctx context.Context, teamUserID uuid.UUID) (*Dashboard, error) {
	now := e.zone.Now()
	shift, err := e.store.FindShift(ctx, teamUserID, now.Date)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{Date: now.Date, ShiftState: CurrentShiftState(shift, now)}
	if shift != nil {
		d.ShiftStart, d.ShiftEnd = &shift.ShiftEntryStart, &shift.ShiftEntryEnd
	}
	sessions, err := e.store.TeamSessions(ctx, teamUserID, now.Date, sessModel.StatusActive, sessModel.StatusCompleted)
	if err != nil {
		return nil, err
	}
	for _, s := range sessions {
		if s.IsActive() {
			d.ActiveCount++
		} else {
			d.FinishedCount++
		}
	}
	return d, nil
}
