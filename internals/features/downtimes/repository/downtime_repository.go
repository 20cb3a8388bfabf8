package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dtModel "shopfloor_backend/internals/features/downtimes/model"
	"shopfloor_backend/internals/features/downtimes/service"
	mdRepo "shopfloor_backend/internals/features/masterdata/repository"
	sessModel "shopfloor_backend/internals/features/sessions/model"
	"shopfloor_backend/internals/helpers/dbtime"
)

type DowntimeRepository struct {
	*mdRepo.ReferenceRepository
}

func NewDowntimeRepository(db *gorm.DB) *DowntimeRepository {
	return &DowntimeRepository{ReferenceRepository: mdRepo.NewReferenceRepository(db)}
}

var _ service.Store = (*DowntimeRepository)(nil)

func (r *DowntimeRepository) Transaction(ctx context.Context, fn func(tx service.Store) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewDowntimeRepository(tx))
	})
}

/* ===================== Types ===================== */

func (r *DowntimeRepository) CreateDowntime(ctx context.Context, m *dtModel.DowntimeModel) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *DowntimeRepository) SaveDowntime(ctx context.Context, m *dtModel.DowntimeModel) error {
	return r.DB.WithContext(ctx).Save(m).Error
}

func (r *DowntimeRepository) DeleteDowntime(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("downtime_id = ?", id).Delete(&dtModel.DowntimeModel{}).Error
}

func (r *DowntimeRepository) DowntimeInUse(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&dtModel.DowntimeDeclarationModel{}).
		Where("downtime_declaration_downtime_id = ?", id).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}

/* ===================== Sessions ===================== */

func (r *DowntimeRepository) SessionChoices(ctx context.Context, teamUserID uuid.UUID, date time.Time) ([]service.SessionChoice, error) {
	var out []service.SessionChoice
	err := r.DB.WithContext(ctx).
		Table("operator_sessions s").
		Select(`DISTINCT ON (s.operator_session_operator_id)
			s.operator_session_id AS session_id,
			s.operator_session_operator_id AS operator_id,
			o.operator_badge_num AS badge_num,
			o.operator_name AS operator_name,
			s.operator_session_login_team_time AS login_time`).
		Joins("JOIN operators o ON o.operator_id = s.operator_session_operator_id").
		Where("s.operator_session_team_user_id = ? AND s.operator_session_login_team_date = ?", teamUserID, dbtime.DateOf(date)).
		Where("s.operator_session_status <> ?", sessModel.StatusIgnore).
		Order("s.operator_session_operator_id, s.operator_session_login_actual ASC").
		Scan(&out).Error
	return out, err
}

func (r *DowntimeRepository) FindSession(ctx context.Context, id uuid.UUID) (*sessModel.OperatorSessionModel, error) {
	return mdRepo.First[sessModel.OperatorSessionModel](r.DB.WithContext(ctx).Where("operator_session_id = ?", id))
}

/* ===================== Declarations ===================== */

func (r *DowntimeRepository) CreateDowntimeDeclaration(ctx context.Context, m *dtModel.DowntimeDeclarationModel) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *DowntimeRepository) FindDowntimeDeclaration(ctx context.Context, id uuid.UUID) (*dtModel.DowntimeDeclarationModel, error) {
	return mdRepo.First[dtModel.DowntimeDeclarationModel](r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("downtime_declaration_id = ?", id))
}

func (r *DowntimeRepository) SaveDowntimeDeclaration(ctx context.Context, m *dtModel.DowntimeDeclarationModel) error {
	return r.DB.WithContext(ctx).Save(m).Error
}

func (r *DowntimeRepository) DeleteDowntimeDeclaration(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).
		Where("downtime_declaration_id = ?", id).
		Delete(&dtModel.DowntimeDeclarationModel{}).Error
}

// DowntimeDeclarationRow is a declaration with the names a list shows.
type DowntimeDeclarationRow struct {
	dtModel.DowntimeDeclarationModel `gorm:"embedded"`

	Date             time.Time `gorm:"column:date" json:"date"`
	OperatorBadgeNum string    `gorm:"column:operator_badge_num" json:"operator_badge_num"`
	OperatorName     string    `gorm:"column:operator_name" json:"operator_name"`
	TeamUserUsername string    `gorm:"column:team_user_username" json:"team_user_username"`
	DowntimeName     string    `gorm:"column:downtime_name" json:"downtime_name"`
	FixedDuration    bool      `gorm:"column:downtime_fixed_duration" json:"downtime_fixed_duration"`
}

type DowntimeDeclarationFilter struct {
	Date       *time.Time
	TeamUserID *uuid.UUID
}

func (r *DowntimeRepository) ListDowntimeDeclarations(ctx context.Context, f DowntimeDeclarationFilter, limit, offset int) ([]DowntimeDeclarationRow, int64, error) {
	q := r.DB.WithContext(ctx).
		Table("downtime_declarations dd").
		Joins("JOIN operator_sessions s ON s.operator_session_id = dd.downtime_declaration_session_id")
	if f.Date != nil {
		q = q.Where("s.operator_session_login_team_date = ?", dbtime.DateOf(*f.Date))
	}
	if f.TeamUserID != nil {
		q = q.Where("s.operator_session_team_user_id = ?", *f.TeamUserID)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []DowntimeDeclarationRow
	err := q.
		Select(`dd.*, s.operator_session_login_team_date AS date,
			o.operator_badge_num, o.operator_name, tu.team_user_username,
			d.downtime_name, d.downtime_fixed_duration`).
		Joins("JOIN operators o ON o.operator_id = s.operator_session_operator_id").
		Joins("JOIN team_users tu ON tu.team_user_id = s.operator_session_team_user_id").
		Joins("JOIN downtimes d ON d.downtime_id = dd.downtime_declaration_downtime_id").
		Order("dd.downtime_declaration_created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	return rows, total, err
}
