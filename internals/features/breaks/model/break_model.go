package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shopfloor_backend/internals/helpers/dbtime"
)

// BreakDurationMinutes is the only accepted length of a break type.
const BreakDurationMinutes = 30

var ErrBreakWindow = errors.New("break must start before it ends and last exactly 30 minutes")

// BreakModel is a break type (e.g. "Lunch 12:00-12:30").
type BreakModel struct {
	BreakID        uuid.UUID  `gorm:"column:break_id;type:uuid;default:gen_random_uuid();primaryKey" json:"break_id"`
	BreakName      string     `gorm:"column:break_name;type:varchar(50);not null" json:"break_name"`
	BreakTimeStart dbtime.Tod `gorm:"column:break_time_start;type:time;not null" json:"break_time_start"`
	BreakTimeEnd   dbtime.Tod `gorm:"column:break_time_end;type:time;not null" json:"break_time_end"`
}

func (BreakModel) TableName() string { return "breaks" }

func (m *BreakModel) BeforeSave(tx *gorm.DB) error {
	return m.Validate()
}

func (m *BreakModel) Validate() error {
	if !m.BreakTimeStart.Before(m.BreakTimeEnd.Time) {
		return ErrBreakWindow
	}
	if dbtime.Span(m.BreakTimeStart, m.BreakTimeEnd) != BreakDurationMinutes {
		return ErrBreakWindow
	}
	return nil
}

func (m BreakModel) Label() string {
	return m.BreakName + " " + m.BreakTimeStart.String() + "-" + m.BreakTimeEnd.String()
}

// OperatorBreakModel is a declared break; at most one per (date, operator).
type OperatorBreakModel struct {
	OperatorBreakID         uuid.UUID `gorm:"column:operator_break_id;type:uuid;default:gen_random_uuid();primaryKey" json:"operator_break_id"`
	OperatorBreakDate       time.Time `gorm:"column:operator_break_date;type:date;not null;uniqueIndex:uq_operator_break_date_operator" json:"operator_break_date"`
	OperatorBreakOperatorID uuid.UUID `gorm:"column:operator_break_operator_id;type:uuid;not null;uniqueIndex:uq_operator_break_date_operator" json:"operator_break_operator_id"`
	OperatorBreakTeamUserID uuid.UUID `gorm:"column:operator_break_team_user_id;type:uuid;not null;index" json:"operator_break_team_user_id"`
	OperatorBreakBreakID    uuid.UUID `gorm:"column:operator_break_break_id;type:uuid;not null" json:"operator_break_break_id"`

	OperatorBreakCreatedAt time.Time `gorm:"column:operator_break_created_at;type:timestamptz;not null;autoCreateTime" json:"operator_break_created_at"`
	OperatorBreakUpdatedAt time.Time `gorm:"column:operator_break_updated_at;type:timestamptz;not null;autoUpdateTime" json:"operator_break_updated_at"`
}

func (OperatorBreakModel) TableName() string { return "operator_breaks" }
