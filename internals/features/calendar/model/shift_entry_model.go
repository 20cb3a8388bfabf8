package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shopfloor_backend/internals/helpers/dbtime"
)

// ShiftEntryModel is the planned shift window of one team on one date.
type ShiftEntryModel struct {
	ShiftEntryID         uuid.UUID  `gorm:"column:shift_entry_id;type:uuid;default:gen_random_uuid();primaryKey" json:"shift_entry_id"`
	ShiftEntryTeamUserID uuid.UUID  `gorm:"column:shift_entry_team_user_id;type:uuid;not null;uniqueIndex:uq_shift_entry_team_date" json:"shift_entry_team_user_id"`
	ShiftEntryDate       time.Time  `gorm:"column:shift_entry_date;type:date;not null;uniqueIndex:uq_shift_entry_team_date" json:"shift_entry_date"`
	ShiftEntryStart      dbtime.Tod `gorm:"column:shift_entry_start;type:time;not null" json:"shift_entry_start"`
	ShiftEntryEnd        dbtime.Tod `gorm:"column:shift_entry_end;type:time;not null" json:"shift_entry_end"`

	ShiftEntryCreatedAt time.Time `gorm:"column:shift_entry_created_at;type:timestamptz;not null;autoCreateTime" json:"shift_entry_created_at"`
	ShiftEntryUpdatedAt time.Time `gorm:"column:shift_entry_updated_at;type:timestamptz;not null;autoUpdateTime" json:"shift_entry_updated_at"`
}

func (ShiftEntryModel) TableName() string { return "shift_entries" }

var ErrShiftWindow = errors.New("shift_start must be before shift_end")

func (m *ShiftEntryModel) BeforeSave(tx *gorm.DB) error {
	m.ShiftEntryDate = dbtime.DateOf(m.ShiftEntryDate)
	if !m.ShiftEntryStart.Before(m.ShiftEntryEnd.Time) {
		return ErrShiftWindow
	}
	return nil
}

// Contains reports whether t lies inside [start, end].
func (m *ShiftEntryModel) Contains(t dbtime.Tod) bool {
	return !t.Before(m.ShiftEntryStart.Time) && !t.After(m.ShiftEntryEnd.Time)
}

// Started reports whether the shift has begun at local wall time now on the entry's date.
func (m *ShiftEntryModel) Started(now dbtime.Moment) bool {
	if now.Date.After(m.ShiftEntryDate) {
		return true
	}
	if now.Date.Before(m.ShiftEntryDate) {
		return false
	}
	return !now.Time.Before(m.ShiftEntryStart.Time)
}

// Finished reports whether now is past the shift end.
func (m *ShiftEntryModel) Finished(now dbtime.Moment) bool {
	if now.Date.After(m.ShiftEntryDate) {
		return true
	}
	if now.Date.Before(m.ShiftEntryDate) {
		return false
	}
	return now.Time.After(m.ShiftEntryEnd.Time)
}
