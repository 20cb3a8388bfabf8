package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WizardStateModel is the single pending slot of one wizard kind for one user.
type WizardStateModel struct {
	WizardStateUserID  uuid.UUID      `gorm:"column:wizard_state_user_id;type:uuid;primaryKey" json:"wizard_state_user_id"`
	WizardStateKind    string         `gorm:"column:wizard_state_kind;type:varchar(40);primaryKey" json:"wizard_state_kind"`
	WizardStateStep    int            `gorm:"column:wizard_state_step;not null;default:0" json:"wizard_state_step"`
	WizardStatePayload datatypes.JSON `gorm:"column:wizard_state_payload;type:jsonb;not null;default:'{}'" json:"wizard_state_payload"`

	WizardStateUpdatedAt time.Time `gorm:"column:wizard_state_updated_at;type:timestamptz;not null;autoUpdateTime" json:"wizard_state_updated_at"`
}

func (WizardStateModel) TableName() string { return "wizard_states" }
