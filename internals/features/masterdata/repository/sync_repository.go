package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	mdModel "shopfloor_backend/internals/features/masterdata/model"
	"shopfloor_backend/internals/features/masterdata/service"
)

type SyncRepository struct {
	DB *gorm.DB
}

func NewSyncRepository(db *gorm.DB) *SyncRepository { return &SyncRepository{DB: db} }

var _ service.SyncStore = (*SyncRepository)(nil)

func (r *SyncRepository) FindOperatorByBadge(ctx context.Context, badge string) (*mdModel.OperatorModel, error) {
	return First[mdModel.OperatorModel](r.DB.WithContext(ctx).
		Where("UPPER(operator_badge_num) = ?", mdModel.NormalizeBadge(badge)))
}

// UpsertOperator inserts or refreshes the operator keyed by badge.
func (r *SyncRepository) UpsertOperator(ctx context.Context, m *mdModel.OperatorModel) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "operator_badge_num"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"operator_name",
			"operator_active",
			"operator_pin_code",
			"operator_func",
			"operator_updated_at",
		}),
	}).Create(m).Error
}

func (r *SyncRepository) FindProByName(ctx context.Context, name string) (*mdModel.ProModel, error) {
	return First[mdModel.ProModel](r.DB.WithContext(ctx).Where("pro_name = ?", name))
}

func (r *SyncRepository) SavePro(ctx context.Context, m *mdModel.ProModel) error {
	return r.DB.WithContext(ctx).Save(m).Error
}
