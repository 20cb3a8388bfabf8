package model

import (
	"time"

	"github.com/google/uuid"
)

type OperationModel struct {
	OperationID              uuid.UUID `gorm:"column:operation_id;type:uuid;default:gen_random_uuid();primaryKey" json:"operation_id"`
	OperationName            string    `gorm:"column:operation_name;type:varchar(100);not null;uniqueIndex" json:"operation_name"`
	OperationSubdepartmentID uuid.UUID `gorm:"column:operation_subdepartment_id;type:uuid;not null;index" json:"operation_subdepartment_id"`
	OperationDescription     string    `gorm:"column:operation_description;type:text" json:"operation_description"`
	OperationStatus          bool      `gorm:"column:operation_status;not null;default:true" json:"operation_status"`

	OperationCreatedAt time.Time `gorm:"column:operation_created_at;type:timestamptz;not null;autoCreateTime" json:"operation_created_at"`
}

func (OperationModel) TableName() string { return "operations" }
