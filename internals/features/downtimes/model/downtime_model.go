package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrFixedValueRequired = errors.New("fixed-duration downtime needs a positive downtime_value")
	ErrMinimumValue       = errors.New("downtime_value must be at least 0.01")
	ErrMinimumRepetition  = errors.New("repetition must be at least 1")
)

// MinimumValue is the smallest user-entered downtime duration in minutes.
var MinimumValue = decimal.RequireFromString("0.01")

// DowntimeModel is a downtime type scoped to a subdepartment.
type DowntimeModel struct {
	DowntimeID              uuid.UUID        `gorm:"column:downtime_id;type:uuid;default:gen_random_uuid();primaryKey" json:"downtime_id"`
	DowntimeName            string           `gorm:"column:downtime_name;type:varchar(100);not null" json:"downtime_name"`
	DowntimeSubdepartmentID uuid.UUID        `gorm:"column:downtime_subdepartment_id;type:uuid;not null;index" json:"downtime_subdepartment_id"`
	DowntimeFixedDuration   bool             `gorm:"column:downtime_fixed_duration;not null;default:false" json:"downtime_fixed_duration"`
	DowntimeValue           *decimal.Decimal `gorm:"column:downtime_value;type:numeric(10,2)" json:"downtime_value,omitempty"`
}

func (DowntimeModel) TableName() string { return "downtimes" }

func (m *DowntimeModel) BeforeSave(tx *gorm.DB) error {
	if m.DowntimeFixedDuration && (m.DowntimeValue == nil || !m.DowntimeValue.IsPositive()) {
		return ErrFixedValueRequired
	}
	return nil
}

// DowntimeDeclarationModel is downtime booked against one operator session.
type DowntimeDeclarationModel struct {
	DowntimeDeclarationID         uuid.UUID       `gorm:"column:downtime_declaration_id;type:uuid;default:gen_random_uuid();primaryKey" json:"downtime_declaration_id"`
	DowntimeDeclarationSessionID  uuid.UUID       `gorm:"column:downtime_declaration_session_id;type:uuid;not null;index" json:"downtime_declaration_session_id"`
	DowntimeDeclarationDowntimeID uuid.UUID       `gorm:"column:downtime_declaration_downtime_id;type:uuid;not null" json:"downtime_declaration_downtime_id"`
	DowntimeDeclarationValue      decimal.Decimal `gorm:"column:downtime_declaration_value;type:numeric(10,2);not null" json:"downtime_declaration_value"`
	DowntimeDeclarationRepetition int             `gorm:"column:downtime_declaration_repetition;not null;default:1;check:downtime_declaration_repetition >= 1" json:"downtime_declaration_repetition"`
	DowntimeDeclarationTotal      decimal.Decimal `gorm:"column:downtime_declaration_total;type:numeric(10,2);not null" json:"downtime_declaration_total"`

	DowntimeDeclarationCreatedAt time.Time `gorm:"column:downtime_declaration_created_at;type:timestamptz;not null;autoCreateTime" json:"downtime_declaration_created_at"`
	DowntimeDeclarationUpdatedAt time.Time `gorm:"column:downtime_declaration_updated_at;type:timestamptz;not null;autoUpdateTime" json:"downtime_declaration_updated_at"`
}

func (DowntimeDeclarationModel) TableName() string { return "downtime_declarations" }

// BeforeSave keeps the total derived from value and repetition.
func (m *DowntimeDeclarationModel) BeforeSave(tx *gorm.DB) error {
	m.Derive()
	return nil
}

func (m *DowntimeDeclarationModel) Derive() {
	m.DowntimeDeclarationTotal = m.DowntimeDeclarationValue.Mul(decimal.NewFromInt(int64(m.DowntimeDeclarationRepetition)))
}

// ApplyDuration sets value and repetition under the lock rules of the downtime type:
// fixed types lock the value and allow repetition; others force repetition to 1.
func ApplyDuration(dt *DowntimeModel, value *decimal.Decimal, repetition int) (decimal.Decimal, int, error) {
	if dt.DowntimeFixedDuration {
		if dt.DowntimeValue == nil || !dt.DowntimeValue.IsPositive() {
			return decimal.Zero, 0, ErrFixedValueRequired
		}
		if repetition < 1 {
			return decimal.Zero, 0, ErrMinimumRepetition
		}
		return *dt.DowntimeValue, repetition, nil
	}
	if value == nil || value.LessThan(MinimumValue) {
		return decimal.Zero, 0, ErrMinimumValue
	}
	return value.Round(2), 1, nil
}
