package model

import (
	"time"

	"github.com/google/uuid"
)

type SubdepartmentModel struct {
	SubdepartmentID   uuid.UUID `gorm:"column:subdepartment_id;type:uuid;default:gen_random_uuid();primaryKey" json:"subdepartment_id"`
	SubdepartmentName string    `gorm:"column:subdepartment_name;type:varchar(50);not null;uniqueIndex" json:"subdepartment_name"`

	SubdepartmentCreatedAt time.Time `gorm:"column:subdepartment_created_at;type:timestamptz;not null;autoCreateTime" json:"subdepartment_created_at"`
}

func (SubdepartmentModel) TableName() string { return "subdepartments" }
