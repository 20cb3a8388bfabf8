package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shopfloor_backend/internals/constants"
	breakModel "shopfloor_backend/internals/features/breaks/model"
	calModel "shopfloor_backend/internals/features/calendar/model"
	dtModel "shopfloor_backend/internals/features/downtimes/model"
	mdModel "shopfloor_backend/internals/features/masterdata/model"
	rtModel "shopfloor_backend/internals/features/routings/model"
	sessModel "shopfloor_backend/internals/features/sessions/model"
	authModel "shopfloor_backend/internals/features/users/auth/model"
	"shopfloor_backend/internals/helpers/dbtime"
)

// ReferenceRepository reads the master data the wizards and reports select from.
// Feature repositories embed it so one transaction serves both.
type ReferenceRepository struct {
	DB *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) *ReferenceRepository {
	return &ReferenceRepository{DB: db}
}

// First returns (nil, nil) when q matches nothing.
func First[T any](q *gorm.DB) (*T, error) {
	var m T
	if err := q.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

/* ===================== Team users ===================== */

func (r *ReferenceRepository) FindTeamUser(ctx context.Context, id uuid.UUID) (*authModel.TeamUserModel, error) {
	return First[authModel.TeamUserModel](r.DB.WithContext(ctx).Where("team_user_id = ?", id))
}

// PlannableTeamUsers are active team accounts with a subdepartment.
func (r *ReferenceRepository) PlannableTeamUsers(ctx context.Context) ([]authModel.TeamUserModel, error) {
	var out []authModel.TeamUserModel
	err := r.DB.WithContext(ctx).
		Where("team_user_is_active = TRUE AND team_user_subdepartment_id IS NOT NULL").
		Where("team_user_role = ?", constants.RoleTeam).
		Order("team_user_username ASC").
		Find(&out).Error
	return out, err
}

func (r *ReferenceRepository) FindShift(ctx context.Context, teamUserID uuid.UUID, date time.Time) (*calModel.ShiftEntryModel, error) {
	return First[calModel.ShiftEntryModel](r.DB.WithContext(ctx).
		Where("shift_entry_team_user_id = ? AND shift_entry_date = ?", teamUserID, dbtime.DateOf(date)))
}

/* ===================== Subdepartments & operations ===================== */

func (r *ReferenceRepository) Subdepartments(ctx context.Context) ([]mdModel.SubdepartmentModel, error) {
	var out []mdModel.SubdepartmentModel
	err := r.DB.WithContext(ctx).Order("subdepartment_name ASC").Find(&out).Error
	return out, err
}

func (r *ReferenceRepository) FindSubdepartment(ctx context.Context, id uuid.UUID) (*mdModel.SubdepartmentModel, error) {
	return First[mdModel.SubdepartmentModel](r.DB.WithContext(ctx).Where("subdepartment_id = ?", id))
}

func (r *ReferenceRepository) Operations(ctx context.Context, subdepartmentID *uuid.UUID) ([]mdModel.OperationModel, error) {
	var out []mdModel.OperationModel
	q := r.DB.WithContext(ctx).Model(&mdModel.OperationModel{})
	if subdepartmentID != nil {
		q = q.Where("operation_subdepartment_id = ?", *subdepartmentID)
	}
	err := q.Order("operation_name ASC").Find(&out).Error
	return out, err
}

func (r *ReferenceRepository) FindOperation(ctx context.Context, id uuid.UUID) (*mdModel.OperationModel, error) {
	return First[mdModel.OperationModel](r.DB.WithContext(ctx).Where("operation_id = ?", id))
}

/* ===================== Operators ===================== */

type OperatorFilter struct {
	Q          string
	ActiveOnly bool
}

func (r *ReferenceRepository) Operators(ctx context.Context, f OperatorFilter, limit, offset int) ([]mdModel.OperatorModel, int64, error) {
	q := r.DB.WithContext(ctx).Model(&mdModel.OperatorModel{})
	if f.ActiveOnly {
		q = q.Where("operator_active = TRUE")
	}
	if s := strings.TrimSpace(f.Q); s != "" {
		like := "%" + s + "%"
		q = q.Where("operator_badge_num ILIKE ? OR operator_name ILIKE ?", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []mdModel.OperatorModel
	err := q.Order("operator_badge_num ASC").Limit(limit).Offset(offset).Find(&out).Error
	return out, total, err
}

func (r *ReferenceRepository) OperatorsByID(ctx context.Context, ids []uuid.UUID) ([]mdModel.OperatorModel, error) {
	var out []mdModel.OperatorModel
	if len(ids) == 0 {
		return out, nil
	}
	err := r.DB.WithContext(ctx).
		Where("operator_id IN ?", ids).
		Order("operator_badge_num ASC").
		Find(&out).Error
	return out, err
}

// OperatorsInSessions lists distinct operators with a session of the team on date in one of the statuses.
func (r *ReferenceRepository) OperatorsInSessions(ctx context.Context, teamUserID uuid.UUID, date time.Time, statuses ...sessModel.SessionStatus) ([]mdModel.OperatorModel, error) {
	sub := r.DB.Model(&sessModel.OperatorSessionModel{}).
		Select("operator_session_operator_id").
		Where("operator_session_team_user_id = ? AND operator_session_login_team_date = ?", teamUserID, dbtime.DateOf(date))
	if len(statuses) > 0 {
		sub = sub.Where("operator_session_status IN ?", statuses)
	}
	var out []mdModel.OperatorModel
	err := r.DB.WithContext(ctx).
		Where("operator_id IN (?)", sub).
		Order("operator_badge_num ASC").
		Find(&out).Error
	return out, err
}

/* ===================== PROs & routings ===================== */

func (r *ReferenceRepository) FindPro(ctx context.Context, id uuid.UUID) (*mdModel.ProModel, error) {
	return First[mdModel.ProModel](r.DB.WithContext(ctx).Where("pro_id = ?", id))
}

// ActivePros are open PROs with an active link to the subdepartment.
func (r *ReferenceRepository) ActivePros(ctx context.Context, subdepartmentID uuid.UUID) ([]mdModel.ProModel, error) {
	var out []mdModel.ProModel
	err := r.DB.WithContext(ctx).
		Where("pro_status = TRUE").
		Where(`EXISTS (
			SELECT 1 FROM pro_subdepartments ps
			WHERE ps.pro_subdepartment_pro_id = pros.pro_id
			  AND ps.pro_subdepartment_subdepartment_id = ?
			  AND ps.pro_subdepartment_active = TRUE)`, subdepartmentID).
		Order("pro_name ASC").
		Find(&out).Error
	return out, err
}

// ProInSubdepartment reports whether the PRO has an active link to the subdepartment.
func (r *ReferenceRepository) ProInSubdepartment(ctx context.Context, proID, subdepartmentID uuid.UUID) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&mdModel.ProSubdepartmentModel{}).
		Where("pro_subdepartment_pro_id = ? AND pro_subdepartment_subdepartment_id = ?", proID, subdepartmentID).
		Where("pro_subdepartment_active = TRUE").
		Count(&n).Error
	return n > 0, err
}

func (r *ReferenceRepository) FindRouting(ctx context.Context, id uuid.UUID) (*rtModel.RoutingModel, error) {
	return First[rtModel.RoutingModel](r.DB.WithContext(ctx).Where("routing_id = ?", id))
}

// ReadyRoutings are active, ready routings of the SKU (case-insensitive) in the subdepartment.
func (r *ReferenceRepository) ReadyRoutings(ctx context.Context, sku string, subdepartmentID uuid.UUID) ([]rtModel.RoutingModel, error) {
	var out []rtModel.RoutingModel
	err := r.DB.WithContext(ctx).
		Where("routing_status = TRUE AND routing_ready = TRUE").
		Where("LOWER(routing_sku) = LOWER(?)", strings.TrimSpace(sku)).
		Where("routing_subdepartment_id = ?", subdepartmentID).
		Order("routing_sku ASC, routing_version ASC").
		Find(&out).Error
	return out, err
}

func (r *ReferenceRepository) FindRoutingOperation(ctx context.Context, id uuid.UUID) (*rtModel.RoutingOperationModel, error) {
	return First[rtModel.RoutingOperationModel](r.DB.WithContext(ctx).Where("routing_operation_id = ?", id))
}

func (r *ReferenceRepository) RoutingOperationLines(ctx context.Context, routingID uuid.UUID) ([]rtModel.RoutingOperationLine, error) {
	var out []rtModel.RoutingOperationLine
	err := r.DB.WithContext(ctx).
		Table("routing_operations ro").
		Select("ro.*, o.operation_name").
		Joins("JOIN operations o ON o.operation_id = ro.routing_operation_operation_id").
		Where("ro.routing_operation_routing_id = ?", routingID).
		Order("ro.routing_operation_final ASC, o.operation_name ASC").
		Scan(&out).Error
	return out, err
}

/* ===================== Break & downtime types ===================== */

func (r *ReferenceRepository) Breaks(ctx context.Context) ([]breakModel.BreakModel, error) {
	var out []breakModel.BreakModel
	err := r.DB.WithContext(ctx).Order("break_time_start ASC").Find(&out).Error
	return out, err
}

func (r *ReferenceRepository) FindBreak(ctx context.Context, id uuid.UUID) (*breakModel.BreakModel, error) {
	return First[breakModel.BreakModel](r.DB.WithContext(ctx).Where("break_id = ?", id))
}

func (r *ReferenceRepository) Downtimes(ctx context.Context, subdepartmentID *uuid.UUID) ([]dtModel.DowntimeModel, error) {
	var out []dtModel.DowntimeModel
	q := r.DB.WithContext(ctx).Model(&dtModel.DowntimeModel{})
	if subdepartmentID != nil {
		q = q.Where("downtime_subdepartment_id = ?", *subdepartmentID)
	}
	err := q.Order("downtime_name ASC").Find(&out).Error
	return out, err
}

func (r *ReferenceRepository) FindDowntime(ctx context.Context, id uuid.UUID) (*dtModel.DowntimeModel, error) {
	return First[dtModel.DowntimeModel](r.DB.WithContext(ctx).Where("downtime_id = ?", id))
}
