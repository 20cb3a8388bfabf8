package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	calModel "shopfloor_backend/internals/features/calendar/model"
	mdModel "shopfloor_backend/internals/features/masterdata/model"
	sessModel "shopfloor_backend/internals/features/sessions/model"
	"shopfloor_backend/internals/features/sessions/service"
	authModel "shopfloor_backend/internals/features/users/auth/model"
	"shopfloor_backend/internals/helpers/dbtime"
)

// GormStore implements service.Store on PostgreSQL.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{DB: db} }

var _ service.Store = (*GormStore)(nil)

func (s *GormStore) Transaction(ctx context.Context, fn func(tx service.Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{DB: tx})
	})
}

func (s *GormStore) LockOperator(ctx context.Context, operatorID uuid.UUID) error {
	return s.DB.WithContext(ctx).Exec(`SELECT pg_advisory_xact_lock(hashtext(?))`, operatorID.String()).Error
}

func first[T any](q *gorm.DB) (*T, error) {
	var m T
	if err := q.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (s *GormStore) FindOperatorByBadge(ctx context.Context, badge string) (*mdModel.OperatorModel, error) {
	return first[mdModel.OperatorModel](s.DB.WithContext(ctx).
		Where("UPPER(operator_badge_num) = ?", mdModel.NormalizeBadge(badge)))
}

func (s *GormStore) FindOperator(ctx context.Context, id uuid.UUID) (*mdModel.OperatorModel, error) {
	return first[mdModel.OperatorModel](s.DB.WithContext(ctx).Where("operator_id = ?", id))
}

func (s *GormStore) OperatorLabels(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var ops []mdModel.OperatorModel
	if err := s.DB.WithContext(ctx).
		Select("operator_id", "operator_badge_num", "operator_name").
		Where("operator_id IN ?", ids).
		Find(&ops).Error; err != nil {
		return nil, err
	}
	for _, o := range ops {
		out[o.OperatorID] = o.OperatorBadgeNum + " " + o.OperatorName
	}
	return out, nil
}

func (s *GormStore) FindTeamUser(ctx context.Context, id uuid.UUID) (*authModel.TeamUserModel, error) {
	return first[authModel.TeamUserModel](s.DB.WithContext(ctx).Where("team_user_id = ?", id))
}

func (s *GormStore) FindShift(ctx context.Context, teamUserID uuid.UUID, date time.Time) (*calModel.ShiftEntryModel, error) {
	return first[calModel.ShiftEntryModel](s.DB.WithContext(ctx).
		Where("shift_entry_team_user_id = ? AND shift_entry_date = ?", teamUserID, dbtime.DateOf(date)))
}

func (s *GormStore) FindSession(ctx context.Context, id uuid.UUID, forUpdate bool) (*sessModel.OperatorSessionModel, error) {
	q := s.DB.WithContext(ctx).Where("operator_session_id = ?", id)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return first[sessModel.OperatorSessionModel](q)
}

func (s *GormStore) ActiveSessionsOfOperator(ctx context.Context, operatorID uuid.UUID) ([]sessModel.OperatorSessionModel, error) {
	var out []sessModel.OperatorSessionModel
	err := s.DB.WithContext(ctx).
		Where("operator_session_operator_id = ? AND operator_session_status = ?", operatorID, sessModel.StatusActive).
		Order("operator_session_login_actual ASC").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Find(&out).Error
	return out, err
}

func (s *GormStore) ActiveSessionsUpTo(ctx context.Context, date time.Time) ([]sessModel.OperatorSessionModel, error) {
	var out []sessModel.OperatorSessionModel
	err := s.DB.WithContext(ctx).
		Where("operator_session_status = ? AND operator_session_login_team_date <= ?", sessModel.StatusActive, dbtime.DateOf(date)).
		Order("operator_session_login_team_date ASC, operator_session_login_actual ASC, operator_session_id ASC").
		Find(&out).Error
	return out, err
}

func (s *GormStore) CompletedWithoutBreak(ctx context.Context, from, to time.Time) ([]sessModel.OperatorSessionModel, error) {
	var out []sessModel.OperatorSessionModel
	err := s.DB.WithContext(ctx).
		Where("operator_session_status = ?", sessModel.StatusCompleted).
		Where("operator_session_break_minutes IS NULL").
		Where("operator_session_logoff_team_time IS NOT NULL").
		Where("operator_session_login_team_date BETWEEN ? AND ?", dbtime.DateOf(from), dbtime.DateOf(to)).
		Order("operator_session_login_team_date ASC, operator_session_login_actual ASC, operator_session_id ASC").
		Find(&out).Error
	return out, err
}

func (s *GormStore) TeamSessions(ctx context.Context, teamUserID uuid.UUID, date time.Time, statuses ...sessModel.SessionStatus) ([]sessModel.OperatorSessionModel, error) {
	var out []sessModel.OperatorSessionModel
	q := s.DB.WithContext(ctx).
		Where("operator_session_team_user_id = ? AND operator_session_login_team_date = ?", teamUserID, dbtime.DateOf(date))
	if len(statuses) > 0 {
		q = q.Where("operator_session_status IN ?", statuses)
	}
	err := q.Order("operator_session_login_actual ASC").Find(&out).Error
	return out, err
}

func (s *GormStore) CreateSession(ctx context.Context, m *sessModel.OperatorSessionModel) error {
	return s.DB.WithContext(ctx).Create(m).Error
}

func (s *GormStore) SaveSession(ctx context.Context, m *sessModel.OperatorSessionModel) error {
	return s.DB.WithContext(ctx).Save(m).Error
}
