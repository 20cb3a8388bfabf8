package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DeclarationType string

const (
	DeclarationOperator DeclarationType = "Operator"
	DeclarationTeam     DeclarationType = "Team"
)

// IsTeam compares case-insensitively; legacy rows carry "TEAM".
func (d DeclarationType) IsTeam() bool {
	return strings.EqualFold(strings.TrimSpace(string(d)), string(DeclarationTeam))
}

type RoutingModel struct {
	RoutingID                 uuid.UUID       `gorm:"column:routing_id;type:uuid;default:gen_random_uuid();primaryKey" json:"routing_id"`
	RoutingSKU                string          `gorm:"column:routing_sku;type:varchar(50);not null;uniqueIndex:uq_routing_sku_subdep_version" json:"routing_sku"`
	RoutingSubdepartmentID    uuid.UUID       `gorm:"column:routing_subdepartment_id;type:uuid;not null;uniqueIndex:uq_routing_sku_subdep_version" json:"routing_subdepartment_id"`
	RoutingVersion            string          `gorm:"column:routing_version;type:varchar(20);not null;uniqueIndex:uq_routing_sku_subdep_version" json:"routing_version"`
	RoutingVersionDescription string          `gorm:"column:routing_version_description;type:varchar(255)" json:"routing_version_description"`
	RoutingDeclarationType    DeclarationType `gorm:"column:routing_declaration_type;type:varchar(20);not null;default:'Operator'" json:"routing_declaration_type"`
	RoutingReady              bool            `gorm:"column:routing_ready;not null;default:false" json:"routing_ready"`
	RoutingStatus             bool            `gorm:"column:routing_status;not null;default:true" json:"routing_status"`

	RoutingCreatedAt time.Time `gorm:"column:routing_created_at;type:timestamptz;not null;autoCreateTime" json:"routing_created_at"`
	RoutingUpdatedAt time.Time `gorm:"column:routing_updated_at;type:timestamptz;not null;autoUpdateTime" json:"routing_updated_at"`
}

func (RoutingModel) TableName() string { return "routings" }

func (m *RoutingModel) BeforeSave(tx *gorm.DB) error {
	m.RoutingSKU = strings.TrimSpace(m.RoutingSKU)
	m.RoutingVersion = strings.TrimSpace(m.RoutingVersion)
	return nil
}

// RoutingOperationModel is one operation line of a routing.
type RoutingOperationModel struct {
	RoutingOperationID          uuid.UUID        `gorm:"column:routing_operation_id;type:uuid;default:gen_random_uuid();primaryKey" json:"routing_operation_id"`
	RoutingOperationRoutingID   uuid.UUID        `gorm:"column:routing_operation_routing_id;type:uuid;not null;uniqueIndex:uq_routing_operation" json:"routing_operation_routing_id"`
	RoutingOperationOperationID uuid.UUID        `gorm:"column:routing_operation_operation_id;type:uuid;not null;uniqueIndex:uq_routing_operation" json:"routing_operation_operation_id"`
	RoutingOperationDescription string           `gorm:"column:routing_operation_description;type:varchar(255)" json:"routing_operation_description"`
	RoutingOperationSMV         *decimal.Decimal `gorm:"column:routing_operation_smv;type:numeric(7,3)" json:"routing_operation_smv,omitempty"`
	RoutingOperationSMVIta      *decimal.Decimal `gorm:"column:routing_operation_smv_ita;type:numeric(7,3)" json:"routing_operation_smv_ita,omitempty"`
	RoutingOperationFinal       bool             `gorm:"column:routing_operation_final;not null;default:false" json:"routing_operation_final"`

	RoutingOperationCreatedAt time.Time `gorm:"column:routing_operation_created_at;type:timestamptz;not null;autoCreateTime" json:"routing_operation_created_at"`
	RoutingOperationUpdatedAt time.Time `gorm:"column:routing_operation_updated_at;type:timestamptz;not null;autoUpdateTime" json:"routing_operation_updated_at"`
}

func (RoutingOperationModel) TableName() string { return "routing_operations" }

// RoutingOperationLine is a routing operation joined with its operation name.
type RoutingOperationLine struct {
	RoutingOperationModel `gorm:"embedded"`
	OperationName string `gorm:"column:operation_name" json:"operation_name"`
}

func (l RoutingOperationLine) Label() string {
	if l.RoutingOperationFinal {
		return l.OperationName + " (final)"
	}
	return l.OperationName
}
