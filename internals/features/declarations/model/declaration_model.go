package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeclarationModel records quantity produced against a routing operation on a date.
type DeclarationModel struct {
	DeclarationID                 uuid.UUID        `gorm:"column:declaration_id;type:uuid;default:gen_random_uuid();primaryKey" json:"declaration_id"`
	DeclarationDate               time.Time        `gorm:"column:declaration_date;type:date;not null;index" json:"declaration_date"`
	DeclarationTeamUserID         uuid.UUID        `gorm:"column:declaration_team_user_id;type:uuid;not null;index" json:"declaration_team_user_id"`
	DeclarationSubdepartmentID    uuid.UUID        `gorm:"column:declaration_subdepartment_id;type:uuid;not null" json:"declaration_subdepartment_id"`
	DeclarationProID              uuid.UUID        `gorm:"column:declaration_pro_id;type:uuid;not null" json:"declaration_pro_id"`
	DeclarationRoutingID          uuid.UUID        `gorm:"column:declaration_routing_id;type:uuid;not null" json:"declaration_routing_id"`
	DeclarationRoutingOperationID *uuid.UUID       `gorm:"column:declaration_routing_operation_id;type:uuid" json:"declaration_routing_operation_id,omitempty"`
	DeclarationQty                int              `gorm:"column:declaration_qty;not null;check:declaration_qty > 0" json:"declaration_qty"`
	DeclarationSMV                *decimal.Decimal `gorm:"column:declaration_smv;type:numeric(7,3)" json:"declaration_smv,omitempty"`
	DeclarationSMVIta             *decimal.Decimal `gorm:"column:declaration_smv_ita;type:numeric(7,3)" json:"declaration_smv_ita,omitempty"`

	DeclarationCreatedAt time.Time `gorm:"column:declaration_created_at;type:timestamptz;not null" json:"declaration_created_at"`
	DeclarationUpdatedAt time.Time `gorm:"column:declaration_updated_at;type:timestamptz;not null" json:"declaration_updated_at"`

	Operators []DeclarationOperatorModel `gorm:"foreignKey:DeclarationOperatorDeclarationID;references:DeclarationID;constraint:OnDelete:CASCADE" json:"operators,omitempty"`
}

func (DeclarationModel) TableName() string { return "declarations" }

// DeclarationOperatorModel is the operator set of a declaration.
type DeclarationOperatorModel struct {
	DeclarationOperatorDeclarationID uuid.UUID `gorm:"column:declaration_operator_declaration_id;type:uuid;primaryKey" json:"declaration_id"`
	DeclarationOperatorOperatorID    uuid.UUID `gorm:"column:declaration_operator_operator_id;type:uuid;primaryKey;index" json:"operator_id"`
}

func (DeclarationOperatorModel) TableName() string { return "declaration_operators" }
