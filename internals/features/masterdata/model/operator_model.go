package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OperatorModel is a badge-carrying worker. Populated by the upstream operator sync.
type OperatorModel struct {
	OperatorID       uuid.UUID `gorm:"column:operator_id;type:uuid;default:gen_random_uuid();primaryKey" json:"operator_id"`
	OperatorBadgeNum string    `gorm:"column:operator_badge_num;type:varchar(20);not null;uniqueIndex" json:"operator_badge_num"`
	OperatorName     string    `gorm:"column:operator_name;type:varchar(100);not null" json:"operator_name"`
	OperatorActive   bool      `gorm:"column:operator_active;not null;default:true" json:"operator_active"`
	OperatorPinCode  *string   `gorm:"column:operator_pin_code;type:varchar(10)" json:"-"`
	OperatorFunc     string    `gorm:"column:operator_func;type:varchar(50)" json:"operator_func"`

	OperatorCreatedAt time.Time `gorm:"column:operator_created_at;type:timestamptz;not null;autoCreateTime" json:"operator_created_at"`
	OperatorUpdatedAt time.Time `gorm:"column:operator_updated_at;type:timestamptz;not null;autoUpdateTime" json:"operator_updated_at"`
}

func (OperatorModel) TableName() string { return "operators" }

func (m *OperatorModel) BeforeSave(tx *gorm.DB) error {
	m.OperatorBadgeNum = NormalizeBadge(m.OperatorBadgeNum)
	m.OperatorName = strings.TrimSpace(m.OperatorName)
	return nil
}

// NormalizeBadge makes badge lookups case-insensitive.
func NormalizeBadge(b string) string {
	return strings.ToUpper(strings.TrimSpace(b))
}
