package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	breakModel "shopfloor_backend/internals/features/breaks/model"
	"shopfloor_backend/internals/features/breaks/service"
	mdRepo "shopfloor_backend/internals/features/masterdata/repository"
	"shopfloor_backend/internals/helpers/dbtime"
)

type BreakRepository struct {
	*mdRepo.ReferenceRepository
}

func NewBreakRepository(db *gorm.DB) *BreakRepository {
	return &BreakRepository{ReferenceRepository: mdRepo.NewReferenceRepository(db)}
}

var _ service.Store = (*BreakRepository)(nil)

func (r *BreakRepository) Transaction(ctx context.Context, fn func(tx service.Store) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewBreakRepository(tx))
	})
}

func (r *BreakRepository) CreateBreak(ctx context.Context, m *breakModel.BreakModel) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *BreakRepository) SaveBreak(ctx context.Context, m *breakModel.BreakModel) error {
	return r.DB.WithContext(ctx).Save(m).Error
}

func (r *BreakRepository) DeleteBreak(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("break_id = ?", id).Delete(&breakModel.BreakModel{}).Error
}

func (r *BreakRepository) OperatorBreaksOn(ctx context.Context, date time.Time, operatorIDs []uuid.UUID) ([]breakModel.OperatorBreakModel, error) {
	var out []breakModel.OperatorBreakModel
	if len(operatorIDs) == 0 {
		return out, nil
	}
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("operator_break_date = ? AND operator_break_operator_id IN ?", dbtime.DateOf(date), operatorIDs).
		Find(&out).Error
	return out, err
}

// UpsertOperatorBreak relies on uq_operator_break_date_operator; the update only fires for the same team.
func (r *BreakRepository) UpsertOperatorBreak(ctx context.Context, m *breakModel.OperatorBreakModel) (bool, error) {
	now := time.Now().UTC()
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "operator_break_date"}, {Name: "operator_break_operator_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"operator_break_break_id":   m.OperatorBreakBreakID,
				"operator_break_updated_at": now,
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Eq{Column: clause.Column{Table: "operator_breaks", Name: "operator_break_team_user_id"}, Value: m.OperatorBreakTeamUserID},
			}},
		}).
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// OperatorBreakRow is a declared break with the names a list shows.
type OperatorBreakRow struct {
	breakModel.OperatorBreakModel `gorm:"embedded"`

	OperatorBadgeNum string `gorm:"column:operator_badge_num" json:"operator_badge_num"`
	OperatorName     string `gorm:"column:operator_name" json:"operator_name"`
	TeamUserUsername string `gorm:"column:team_user_username" json:"team_user_username"`
	BreakName        string `gorm:"column:break_name" json:"break_name"`
}

type OperatorBreakFilter struct {
	Date       *time.Time
	TeamUserID *uuid.UUID
}

func (r *BreakRepository) ListOperatorBreaks(ctx context.Context, f OperatorBreakFilter, limit, offset int) ([]OperatorBreakRow, int64, error) {
	q := r.DB.WithContext(ctx).Table("operator_breaks ob")
	if f.Date != nil {
		q = q.Where("ob.operator_break_date = ?", dbtime.DateOf(*f.Date))
	}
	if f.TeamUserID != nil {
		q = q.Where("ob.operator_break_team_user_id = ?", *f.TeamUserID)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []OperatorBreakRow
	err := q.
		Select("ob.*, o.operator_badge_num, o.operator_name, tu.team_user_username, b.break_name").
		Joins("JOIN operators o ON o.operator_id = ob.operator_break_operator_id").
		Joins("JOIN team_users tu ON tu.team_user_id = ob.operator_break_team_user_id").
		Joins("JOIN breaks b ON b.break_id = ob.operator_break_break_id").
		Order("ob.operator_break_date DESC, o.operator_badge_num ASC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	return rows, total, err
}
