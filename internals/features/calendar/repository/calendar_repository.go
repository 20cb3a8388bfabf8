package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	calModel "shopfloor_backend/internals/features/calendar/model"
	"shopfloor_backend/internals/features/calendar/service"
	authModel "shopfloor_backend/internals/features/users/auth/model"
	"shopfloor_backend/internals/helpers/dbtime"
)

type CalendarRepository struct {
	DB *gorm.DB
}

func NewCalendarRepository(db *gorm.DB) *CalendarRepository { return &CalendarRepository{DB: db} }

var _ service.Store = (*CalendarRepository)(nil)

func (r *CalendarRepository) Transaction(ctx context.Context, fn func(tx service.Store) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&CalendarRepository{DB: tx})
	})
}

func (r *CalendarRepository) FindTeamUser(ctx context.Context, id uuid.UUID) (*authModel.TeamUserModel, error) {
	var m authModel.TeamUserModel
	if err := r.DB.WithContext(ctx).Where("team_user_id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *CalendarRepository) FindShift(ctx context.Context, teamUserID uuid.UUID, date time.Time) (*calModel.ShiftEntryModel, error) {
	var m calModel.ShiftEntryModel
	err := r.DB.WithContext(ctx).
		Where("shift_entry_team_user_id = ? AND shift_entry_date = ?", teamUserID, dbtime.DateOf(date)).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *CalendarRepository) ShiftsOn(ctx context.Context, teamUserID uuid.UUID, dates []time.Time) ([]calModel.ShiftEntryModel, error) {
	var out []calModel.ShiftEntryModel
	if len(dates) == 0 {
		return out, nil
	}
	err := r.DB.WithContext(ctx).
		Where("shift_entry_team_user_id = ? AND shift_entry_date IN ?", teamUserID, dates).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Order("shift_entry_date ASC").
		Find(&out).Error
	return out, err
}

func (r *CalendarRepository) ShiftsBetween(ctx context.Context, teamUserID *uuid.UUID, from, to time.Time) ([]calModel.ShiftEntryModel, error) {
	var out []calModel.ShiftEntryModel
	q := r.DB.WithContext(ctx).Where("shift_entry_date BETWEEN ? AND ?", from, to)
	if teamUserID != nil {
		q = q.Where("shift_entry_team_user_id = ?", *teamUserID)
	}
	err := q.Order("shift_entry_date ASC, shift_entry_team_user_id ASC").Find(&out).Error
	return out, err
}

// UpsertShifts relies on the (team_user_id, date) unique index.
func (r *CalendarRepository) UpsertShifts(ctx context.Context, entries []calModel.ShiftEntryModel) error {
	if len(entries) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shift_entry_team_user_id"}, {Name: "shift_entry_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"shift_entry_start", "shift_entry_end", "shift_entry_updated_at"}),
		}).
		Create(&entries).Error
}

func (r *CalendarRepository) DeleteShifts(ctx context.Context, teamUserID uuid.UUID, dates []time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("shift_entry_team_user_id = ? AND shift_entry_date IN ?", teamUserID, dates).
		Delete(&calModel.ShiftEntryModel{})
	return res.RowsAffected, res.Error
}
