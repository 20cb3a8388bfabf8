package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	sessModel "shopfloor_backend/internals/features/sessions/model"
	"shopfloor_backend/internals/helpers/dbtime"
)

// SessionRow is a session joined with the labels the UI shows next to it.
type SessionRow struct {
	sessModel.OperatorSessionModel `gorm:"embedded"`

	OperatorBadgeNum string `gorm:"column:operator_badge_num"`
	OperatorName     string `gorm:"column:operator_name"`
	TeamUserUsername string `gorm:"column:team_user_username"`
}

type SessionFilter struct {
	Date       *time.Time
	TeamUserID *uuid.UUID
	Statuses   []sessModel.SessionStatus
	Badge      string
}

// SessionSortColumns whitelists sort_by values for the planner list.
var SessionSortColumns = map[string]string{
	"date":     "operator_sessions.operator_session_login_team_date",
	"login":    "operator_sessions.operator_session_login_actual",
	"badge":    "operators.operator_badge_num",
	"team":     "team_users.team_user_username",
	"status":   "operator_sessions.operator_session_status",
	"modified": "operator_sessions.operator_session_updated_at",
}

func (s *GormStore) sessionQuery(ctx context.Context, f SessionFilter) *gorm.DB {
	q := s.DB.WithContext(ctx).
		Table("operator_sessions").
		Joins("JOIN operators ON operators.operator_id = operator_sessions.operator_session_operator_id").
		Joins("JOIN team_users ON team_users.team_user_id = operator_sessions.operator_session_team_user_id")
	if f.Date != nil {
		q = q.Where("operator_sessions.operator_session_login_team_date = ?", dbtime.DateOf(*f.Date))
	}
	if f.TeamUserID != nil {
		q = q.Where("operator_sessions.operator_session_team_user_id = ?", *f.TeamUserID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("operator_sessions.operator_session_status IN ?", f.Statuses)
	}
	if f.Badge != "" {
		q = q.Where("operators.operator_badge_num ILIKE ?", "%"+f.Badge+"%")
	}
	return q
}

// ListSessions returns one page of sessions plus the unpaged total.
func (s *GormStore) ListSessions(ctx context.Context, f SessionFilter, order string, limit, offset int) ([]SessionRow, int64, error) {
	var total int64
	if err := s.sessionQuery(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []SessionRow
	err := s.sessionQuery(ctx, f).
		Select("operator_sessions.*, operators.operator_badge_num, operators.operator_name, team_users.team_user_username").
		Order(order).
		Order("operator_sessions.operator_session_id ASC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	return rows, total, err
}

// ActiveRows lists a team's ACTIVE sessions on date, oldest login first.
func (s *GormStore) ActiveRows(ctx context.Context, teamUserID uuid.UUID, date time.Time) ([]SessionRow, error) {
	var rows []SessionRow
	err := s.sessionQuery(ctx, SessionFilter{
		Date:       &date,
		TeamUserID: &teamUserID,
		Statuses:   []sessModel.SessionStatus{sessModel.StatusActive},
	}).
		Select("operator_sessions.*, operators.operator_badge_num, operators.operator_name, team_users.team_user_username").
		Order("operator_sessions.operator_session_login_actual ASC").
		Scan(&rows).Error
	return rows, err
}
