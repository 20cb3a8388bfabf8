package model

import (
	"time"

	"github.com/google/uuid"

	"shopfloor_backend/internals/helpers/dbtime"
)

type SessionStatus string

const (
	StatusActive    SessionStatus = "ACTIVE"
	StatusCompleted SessionStatus = "COMPLETED"
	StatusError     SessionStatus = "ERROR"
	StatusIgnore    SessionStatus = "IGNORE"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusError, StatusIgnore:
		return true
	}
	return false
}

// OperatorSessionModel is one operator login at a team.
// *_actual are UTC instants; *_team_* are shift-normalized local values.
type OperatorSessionModel struct {
	OperatorSessionID         uuid.UUID `gorm:"column:operator_session_id;type:uuid;default:gen_random_uuid();primaryKey" json:"operator_session_id"`
	OperatorSessionOperatorID uuid.UUID `gorm:"column:operator_session_operator_id;type:uuid;not null;index:idx_operator_session_operator_status" json:"operator_session_operator_id"`
	OperatorSessionTeamUserID uuid.UUID `gorm:"column:operator_session_team_user_id;type:uuid;not null;index:idx_operator_session_team_date" json:"operator_session_team_user_id"`

	OperatorSessionLoginActual   time.Time  `gorm:"column:operator_session_login_actual;type:timestamptz;not null" json:"operator_session_login_actual"`
	OperatorSessionLoginTeamDate time.Time  `gorm:"column:operator_session_login_team_date;type:date;not null;index:idx_operator_session_team_date" json:"operator_session_login_team_date"`
	OperatorSessionLoginTeamTime dbtime.Tod `gorm:"column:operator_session_login_team_time;type:time;not null" json:"operator_session_login_team_time"`

	OperatorSessionLogoffActual   *time.Time  `gorm:"column:operator_session_logoff_actual;type:timestamptz" json:"operator_session_logoff_actual,omitempty"`
	OperatorSessionLogoffTeamDate *time.Time  `gorm:"column:operator_session_logoff_team_date;type:date" json:"operator_session_logoff_team_date,omitempty"`
	OperatorSessionLogoffTeamTime *dbtime.Tod `gorm:"column:operator_session_logoff_team_time;type:time" json:"operator_session_logoff_team_time,omitempty"`

	OperatorSessionStatus       SessionStatus `gorm:"column:operator_session_status;type:varchar(20);not null;default:'ACTIVE';index:idx_operator_session_operator_status" json:"operator_session_status"`
	OperatorSessionBreakMinutes *int          `gorm:"column:operator_session_break_minutes" json:"operator_session_break_minutes,omitempty"`

	OperatorSessionCreatedAt time.Time `gorm:"column:operator_session_created_at;type:timestamptz;not null;autoCreateTime" json:"operator_session_created_at"`
	OperatorSessionUpdatedAt time.Time `gorm:"column:operator_session_updated_at;type:timestamptz;not null;autoUpdateTime" json:"operator_session_updated_at"`
}

func (OperatorSessionModel) TableName() string { return "operator_sessions" }

func (m OperatorSessionModel) IsActive() bool { return m.OperatorSessionStatus == StatusActive }

// TeamSpanMinutes is logoff minus login team time, ok=false when either side is missing
// or the span is not positive.
func (m *OperatorSessionModel) TeamSpanMinutes() (float64, bool) {
	if m.OperatorSessionLogoffTeamTime == nil {
		return 0, false
	}
	span := dbtime.Span(m.OperatorSessionLoginTeamTime, *m.OperatorSessionLogoffTeamTime)
	if span <= 0 {
		return 0, false
	}
	return span, true
}
