package model

import (
	"time"

	"github.com/google/uuid"
)

// ProModel is a production order, synced from the upstream PO summary.
type ProModel struct {
	ProID          uuid.UUID  `gorm:"column:pro_id;type:uuid;default:gen_random_uuid();primaryKey" json:"pro_id"`
	ProName        string     `gorm:"column:pro_name;type:varchar(20);not null;uniqueIndex" json:"pro_name"`
	ProSKU         string     `gorm:"column:pro_sku;type:varchar(50);not null;index" json:"pro_sku"`
	ProQty         int        `gorm:"column:pro_qty;not null;default:0" json:"pro_qty"`
	ProDelDate     *time.Time `gorm:"column:pro_del_date;type:date" json:"pro_del_date,omitempty"`
	ProStatus      bool       `gorm:"column:pro_status;not null;default:true" json:"pro_status"`
	ProDestination string     `gorm:"column:pro_destination;type:varchar(100)" json:"pro_destination"`
	ProTPP         string     `gorm:"column:pro_tpp;type:varchar(50)" json:"pro_tpp"`
	ProSkeda       string     `gorm:"column:pro_skeda;type:varchar(50)" json:"pro_skeda"`

	ProCreatedAt time.Time `gorm:"column:pro_created_at;type:timestamptz;not null;autoCreateTime" json:"pro_created_at"`
	ProUpdatedAt time.Time `gorm:"column:pro_updated_at;type:timestamptz;not null;autoUpdateTime" json:"pro_updated_at"`
}

func (ProModel) TableName() string { return "pros" }

// ProSubdepartmentModel links a PRO to the subdepartments that work on it.
type ProSubdepartmentModel struct {
	ProSubdepartmentID              uuid.UUID `gorm:"column:pro_subdepartment_id;type:uuid;default:gen_random_uuid();primaryKey" json:"pro_subdepartment_id"`
	ProSubdepartmentProID           uuid.UUID `gorm:"column:pro_subdepartment_pro_id;type:uuid;not null;uniqueIndex:uq_pro_subdepartment" json:"pro_subdepartment_pro_id"`
	ProSubdepartmentSubdepartmentID uuid.UUID `gorm:"column:pro_subdepartment_subdepartment_id;type:uuid;not null;uniqueIndex:uq_pro_subdepartment" json:"pro_subdepartment_subdepartment_id"`
	ProSubdepartmentActive          bool      `gorm:"column:pro_subdepartment_active;not null;default:true" json:"pro_subdepartment_active"`
}

func (ProSubdepartmentModel) TableName() string { return "pro_subdepartments" }
