package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	mdModel "shopfloor_backend/internals/features/masterdata/model"
	mdRepo "shopfloor_backend/internals/features/masterdata/repository"
	rtModel "shopfloor_backend/internals/features/routings/model"
	"shopfloor_backend/internals/features/routings/service"
)

type RoutingRepository struct {
	DB *gorm.DB
}

func NewRoutingRepository(db *gorm.DB) *RoutingRepository { return &RoutingRepository{DB: db} }

var _ service.Store = (*RoutingRepository)(nil)

func (r *RoutingRepository) Transaction(ctx context.Context, fn func(tx service.Store) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&RoutingRepository{DB: tx})
	})
}

func (r *RoutingRepository) FindRouting(ctx context.Context, id uuid.UUID, forUpdate bool) (*rtModel.RoutingModel, error) {
	q := r.DB.WithContext(ctx).Where("routing_id = ?", id)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return mdRepo.First[rtModel.RoutingModel](q)
}

func (r *RoutingRepository) FindRoutingByKey(ctx context.Context, sku string, subdepartmentID uuid.UUID, version string) (*rtModel.RoutingModel, error) {
	return mdRepo.First[rtModel.RoutingModel](r.DB.WithContext(ctx).
		Where("routing_sku = ? AND routing_subdepartment_id = ? AND routing_version = ?", sku, subdepartmentID, version))
}

func (r *RoutingRepository) CreateRouting(ctx context.Context, m *rtModel.RoutingModel) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *RoutingRepository) SaveRouting(ctx context.Context, m *rtModel.RoutingModel) error {
	return r.DB.WithContext(ctx).Save(m).Error
}

func (r *RoutingRepository) SetReady(ctx context.Context, routingID uuid.UUID, ready bool) error {
	return r.DB.WithContext(ctx).
		Model(&rtModel.RoutingModel{}).
		Where("routing_id = ?", routingID).
		Update("routing_ready", ready).Error
}

func (r *RoutingRepository) FindSubdepartment(ctx context.Context, id uuid.UUID) (*mdModel.SubdepartmentModel, error) {
	return mdRepo.First[mdModel.SubdepartmentModel](r.DB.WithContext(ctx).Where("subdepartment_id = ?", id))
}

func (r *RoutingRepository) FindOperation(ctx context.Context, id uuid.UUID) (*mdModel.OperationModel, error) {
	return mdRepo.First[mdModel.OperationModel](r.DB.WithContext(ctx).Where("operation_id = ?", id))
}

func (r *RoutingRepository) FindRoutingOperation(ctx context.Context, id uuid.UUID) (*rtModel.RoutingOperationModel, error) {
	return mdRepo.First[rtModel.RoutingOperationModel](r.DB.WithContext(ctx).Where("routing_operation_id = ?", id))
}

func (r *RoutingRepository) FindRoutingOperationByPair(ctx context.Context, routingID, operationID uuid.UUID) (*rtModel.RoutingOperationModel, error) {
	return mdRepo.First[rtModel.RoutingOperationModel](r.DB.WithContext(ctx).
		Where("routing_operation_routing_id = ? AND routing_operation_operation_id = ?", routingID, operationID))
}

func (r *RoutingRepository) RoutingOperations(ctx context.Context, routingID uuid.UUID) ([]rtModel.RoutingOperationModel, error) {
	var out []rtModel.RoutingOperationModel
	err := r.DB.WithContext(ctx).
		Where("routing_operation_routing_id = ?", routingID).
		Order("routing_operation_created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *RoutingRepository) CreateRoutingOperation(ctx context.Context, m *rtModel.RoutingOperationModel) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *RoutingRepository) SaveRoutingOperation(ctx context.Context, m *rtModel.RoutingOperationModel) error {
	return r.DB.WithContext(ctx).Save(m).Error
}

func (r *RoutingRepository) DeleteRoutingOperation(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("routing_operation_id = ?", id).Delete(&rtModel.RoutingOperationModel{}).Error
}

/* ===================== Lists ===================== */

type RoutingFilter struct {
	SKU             string
	SubdepartmentID *uuid.UUID
	Ready           *bool
	Status          *bool
}

var RoutingSortColumns = map[string]string{
	"sku":      "routing_sku",
	"version":  "routing_version",
	"ready":    "routing_ready",
	"created":  "routing_created_at",
	"modified": "routing_updated_at",
}

func (r *RoutingRepository) ListRoutings(ctx context.Context, f RoutingFilter, order string, limit, offset int) ([]rtModel.RoutingModel, int64, error) {
	q := r.DB.WithContext(ctx).Model(&rtModel.RoutingModel{})
	if s := strings.TrimSpace(f.SKU); s != "" {
		q = q.Where("routing_sku ILIKE ?", "%"+s+"%")
	}
	if f.SubdepartmentID != nil {
		q = q.Where("routing_subdepartment_id = ?", *f.SubdepartmentID)
	}
	if f.Ready != nil {
		q = q.Where("routing_ready = ?", *f.Ready)
	}
	if f.Status != nil {
		q = q.Where("routing_status = ?", *f.Status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []rtModel.RoutingModel
	err := q.Order(order).Limit(limit).Offset(offset).Find(&out).Error
	return out, total, err
}
