package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	declModel "shopfloor_backend/internals/features/declarations/model"
	"shopfloor_backend/internals/features/declarations/service"
	mdRepo "shopfloor_backend/internals/features/masterdata/repository"
	"shopfloor_backend/internals/helpers/dbtime"
)

// DeclarationRepository adds declaration writes and listings to the reference reads.
type DeclarationRepository struct {
	*mdRepo.ReferenceRepository
}

func NewDeclarationRepository(db *gorm.DB) *DeclarationRepository {
	return &DeclarationRepository{ReferenceRepository: mdRepo.NewReferenceRepository(db)}
}

var _ service.Store = (*DeclarationRepository)(nil)

func (r *DeclarationRepository) Transaction(ctx context.Context, fn func(tx service.Store) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewDeclarationRepository(tx))
	})
}

// CreateDeclaration inserts the declaration and its operator set.
func (r *DeclarationRepository) CreateDeclaration(ctx context.Context, m *declModel.DeclarationModel) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

// DeclarationRow is a declaration with the names a list shows.
type DeclarationRow struct {
	declModel.DeclarationModel `gorm:"embedded"`

	TeamUserUsername string `gorm:"column:team_user_username" json:"team_user_username"`
	ProName          string `gorm:"column:pro_name" json:"pro_name"`
	RoutingSKU       string `gorm:"column:routing_sku" json:"routing_sku"`
	RoutingVersion   string `gorm:"column:routing_version" json:"routing_version"`
	OperationName    string `gorm:"column:operation_name" json:"operation_name"`
	OperatorCount    int    `gorm:"column:operator_count" json:"operator_count"`
}

type DeclarationFilter struct {
	Date       *time.Time
	TeamUserID *uuid.UUID
}

func (r *DeclarationRepository) List(ctx context.Context, f DeclarationFilter, limit, offset int) ([]DeclarationRow, int64, error) {
	q := r.DB.WithContext(ctx).Table("declarations d")
	if f.Date != nil {
		q = q.Where("d.declaration_date = ?", dbtime.DateOf(*f.Date))
	}
	if f.TeamUserID != nil {
		q = q.Where("d.declaration_team_user_id = ?", *f.TeamUserID)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []DeclarationRow
	err := q.
		Select(`d.*, tu.team_user_username, p.pro_name, rt.routing_sku, rt.routing_version, o.operation_name,
			(SELECT COUNT(*) FROM declaration_operators dop WHERE dop.declaration_operator_declaration_id = d.declaration_id) AS operator_count`).
		Joins("JOIN team_users tu ON tu.team_user_id = d.declaration_team_user_id").
		Joins("JOIN pros p ON p.pro_id = d.declaration_pro_id").
		Joins("JOIN routings rt ON rt.routing_id = d.declaration_routing_id").
		Joins("LEFT JOIN routing_operations ro ON ro.routing_operation_id = d.declaration_routing_operation_id").
		Joins("LEFT JOIN operations o ON o.operation_id = ro.routing_operation_operation_id").
		Order("d.declaration_date DESC, d.declaration_created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	return rows, total, err
}
