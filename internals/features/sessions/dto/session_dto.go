package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	sessModel "shopfloor_backend/internals/features/sessions/model"
	"shopfloor_backend/internals/features/sessions/repository"
	"shopfloor_backend/internals/features/sessions/service"
	"shopfloor_backend/internals/helpers/apperr"
	"shopfloor_backend/internals/helpers/dbtime"
)

/* =========================
   Requests
========================= */

type BadgeLoginRequest struct {
	BadgeNum string `json:"badge_num" validate:"required,max=20"`
}

type ManualSessionRequest struct {
	TeamUserID     string  `json:"team_user_id" validate:"required,uuid"`
	OperatorID     string  `json:"operator_id" validate:"required,uuid"`
	Date           string  `json:"date" validate:"required,datetime=2006-01-02"`
	LoginTeamTime  string  `json:"login_team_time" validate:"required"`
	LogoffTeamTime *string `json:"logoff_team_time,omitempty"`
}

func (r ManualSessionRequest) ToInput() (service.ManualSession, error) {
	var in service.ManualSession
	var err error
	if in.TeamUserID, err = uuid.Parse(r.TeamUserID); err != nil {
		return in, apperr.InvalidField("team_user_id", "invalid uuid")
	}
	if in.OperatorID, err = uuid.Parse(r.OperatorID); err != nil {
		return in, apperr.InvalidField("operator_id", "invalid uuid")
	}
	if in.Date, err = dbtime.ParseDate(r.Date); err != nil {
		return in, apperr.InvalidField("date", "expected YYYY-MM-DD")
	}
	if in.LoginTime, err = dbtime.Parse(r.LoginTeamTime); err != nil {
		return in, apperr.InvalidField("login_team_time", "expected HH:mm")
	}
	if r.LogoffTeamTime != nil && strings.TrimSpace(*r.LogoffTeamTime) != "" {
		off, err := dbtime.Parse(*r.LogoffTeamTime)
		if err != nil {
			return in, apperr.InvalidField("logoff_team_time", "expected HH:mm")
		}
		in.LogoffTime = &off
	}
	return in, nil
}

// UpdateSessionRequest: PATCH /api/p/operator-sessions/:id
// set_break is the quick 0/30 switch and wins over break_minutes.
type UpdateSessionRequest struct {
	BreakMinutes   *int    `json:"break_minutes,omitempty" validate:"omitempty,min=0,max=30"`
	SetBreak       *string `json:"set_break,omitempty" validate:"omitempty,oneof=0 30"`
	LoginTeamTime  *string `json:"login_team_time,omitempty"`
	LogoffTeamTime *string `json:"logoff_team_time,omitempty"`
}

func (r UpdateSessionRequest) ToPatch() (service.SessionPatch, error) {
	var p service.SessionPatch
	if r.BreakMinutes != nil {
		b := *r.BreakMinutes
		p.BreakMinutes = &b
	}
	if r.SetBreak != nil {
		switch strings.TrimSpace(*r.SetBreak) {
		case "0":
			b := 0
			p.BreakMinutes = &b
		case "30":
			b := 30
			p.BreakMinutes = &b
		default:
			return p, apperr.InvalidField("set_break", "must be 0 or 30")
		}
	}
	if r.LoginTeamTime != nil && strings.TrimSpace(*r.LoginTeamTime) != "" {
		t, err := dbtime.Parse(*r.LoginTeamTime)
		if err != nil {
			return p, apperr.InvalidField("login_team_time", "expected HH:mm")
		}
		p.LoginTime = &t
	}
	if r.LogoffTeamTime != nil && strings.TrimSpace(*r.LogoffTeamTime) != "" {
		t, err := dbtime.Parse(*r.LogoffTeamTime)
		if err != nil {
			return p, apperr.InvalidField("logoff_team_time", "expected HH:mm")
		}
		p.LogoffTime = &t
	}
	return p, nil
}

// ListSessionsQuery: GET /api/p/operator-sessions?date=&team_user_id=&status=&badge=
type ListSessionsQuery struct {
	Date       string `query:"date"`
	TeamUserID string `query:"team_user_id"`
	Status     string `query:"status"`       // comma separated
	Badge      string `query:"badge"`
}

func (q ListSessionsQuery) ToFilter() (repository.SessionFilter, error) {
	var f repository.SessionFilter
	if s := strings.TrimSpace(q.Date); s != "" {
		d, err := dbtime.ParseDate(s)
		if err != nil {
			return f, apperr.InvalidField("date", "expected YYYY-MM-DD")
		}
		f.Date = &d
	}
	if s := strings.TrimSpace(q.TeamUserID); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return f, apperr.InvalidField("team_user_id", "invalid uuid")
		}
		f.TeamUserID = &id
	}
	for _, part := range strings.Split(q.Status, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		st := sessModel.SessionStatus(part)
		if !st.Valid() {
			return f, apperr.InvalidField("status", "unknown status %s", part)
		}
		f.Statuses = append(f.Statuses, st)
	}
	f.Badge = strings.TrimSpace(q.Badge)
	return f, nil
}

/* =========================
   Responses
========================= */

type SessionResponse struct {
	ID             uuid.UUID               `json:"id"`
	OperatorID     uuid.UUID               `json:"operator_id"`
	BadgeNum       string                  `json:"badge_num,omitempty"`
	OperatorName   string                  `json:"operator_name,omitempty"`
	TeamUserID     uuid.UUID               `json:"team_user_id"`
	TeamUsername   string                  `json:"team_username,omitempty"`
	LoginActual    time.Time               `json:"login_actual"`
	LoginTeamDate  string                  `json:"login_team_date"`
	LoginTeamTime  string                  `json:"login_team_time"`
	LogoffActual   *time.Time              `json:"logoff_actual,omitempty"`
	LogoffTeamDate *string                 `json:"logoff_team_date,omitempty"`
	LogoffTeamTime *string                 `json:"logoff_team_time,omitempty"`
	Status         sessModel.SessionStatus `json:"status"`
	BreakMinutes   *int                    `json:"break_minutes,omitempty"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

func FromModel(m *sessModel.OperatorSessionModel) SessionResponse {
	r := SessionResponse{
		ID:            m.OperatorSessionID,
		OperatorID:    m.OperatorSessionOperatorID,
		TeamUserID:    m.OperatorSessionTeamUserID,
		LoginActual:   m.OperatorSessionLoginActual,
		LoginTeamDate: m.OperatorSessionLoginTeamDate.Format("2006-01-02"),
		LoginTeamTime: m.OperatorSessionLoginTeamTime.String(),
		LogoffActual:  m.OperatorSessionLogoffActual,
		Status:        m.OperatorSessionStatus,
		BreakMinutes:  m.OperatorSessionBreakMinutes,
		UpdatedAt:     m.OperatorSessionUpdatedAt,
	}
	if m.OperatorSessionLogoffTeamDate != nil {
		s := m.OperatorSessionLogoffTeamDate.Format("2006-01-02")
		r.LogoffTeamDate = &s
	}
	if m.OperatorSessionLogoffTeamTime != nil {
		s := m.OperatorSessionLogoffTeamTime.String()
		r.LogoffTeamTime = &s
	}
	return r
}

func FromRows(rows []repository.SessionRow) []SessionResponse {
	out := make([]SessionResponse, 0, len(rows))
	for i := range rows {
		r := FromModel(&rows[i].OperatorSessionModel)
		r.BadgeNum = rows[i].OperatorBadgeNum
		r.OperatorName = rows[i].OperatorName
		r.TeamUsername = rows[i].TeamUserUsername
		out = append(out, r)
	}
	return out
}

type LoginResponse struct {
	Session SessionResponse   `json:"session"`
	Closed  []SessionResponse `json:"closed,omitempty"`
	Notice  string            `json:"notice,omitempty"`
}

func FromLogin(res *service.LoginResult) LoginResponse {
	s := FromModel(res.Session)
	if res.Operator != nil {
		s.BadgeNum = res.Operator.OperatorBadgeNum
		s.OperatorName = res.Operator.OperatorName
	}
	out := LoginResponse{Session: s, Notice: res.Notice}
	for i := range res.Closed {
		out.Closed = append(out.Closed, FromModel(&res.Closed[i]))
	}
	return out
}
