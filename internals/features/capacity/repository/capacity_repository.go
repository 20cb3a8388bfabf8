package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"shopfloor_backend/internals/features/capacity/service"
	sessModel "shopfloor_backend/internals/features/sessions/model"
	"shopfloor_backend/internals/helpers/dbtime"
)

type CapacityRepository struct {
	DB *gorm.DB
}

func NewCapacityRepository(db *gorm.DB) *CapacityRepository {
	return &CapacityRepository{DB: db}
}

var _ service.Loader = (*CapacityRepository)(nil)

type sessionRow struct {
	OperatorSessionID             uuid.UUID               `gorm:"column:operator_session_id"`
	OperatorSessionOperatorID     uuid.UUID               `gorm:"column:operator_session_operator_id"`
	OperatorSessionStatus         sessModel.SessionStatus `gorm:"column:operator_session_status"`
	OperatorSessionLoginTeamTime  dbtime.Tod              `gorm:"column:operator_session_login_team_time"`
	OperatorSessionLogoffTeamTime *dbtime.Tod             `gorm:"column:operator_session_logoff_team_time"`
	OperatorSessionBreakMinutes   *int                    `gorm:"column:operator_session_break_minutes"`
	TeamUserUsername              string                  `gorm:"column:team_user_username"`
}

type declarationRow struct {
	OperatorID uuid.UUID        `gorm:"column:operator_id"`
	Qty        int              `gorm:"column:declaration_qty"`
	SMV        *decimal.Decimal `gorm:"column:declaration_smv"`
	CreatedAt  time.Time        `gorm:"column:declaration_created_at"`
}

func idStrings(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// DayFacts loads every session of date and the breaks, downtime and declarations tied to them.
// Aggregate decides which statuses count toward session time.
func (r *CapacityRepository) DayFacts(ctx context.Context, date time.Time) (*service.Facts, error) {
	db := r.DB.WithContext(ctx)
	day := dbtime.DateOf(date)
	facts := &service.Facts{}

	var sessions []sessionRow
	err := db.Table("operator_sessions s").
		Select(`s.operator_session_id, s.operator_session_operator_id, s.operator_session_status,
			s.operator_session_login_team_time, s.operator_session_logoff_team_time,
			s.operator_session_break_minutes, tu.team_user_username`).
		Joins("JOIN team_users tu ON tu.team_user_id = s.operator_session_team_user_id").
		Where("s.operator_session_login_team_date = ?", day).
		Order("s.operator_session_login_team_time ASC").
		Scan(&sessions).Error
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return facts, nil
	}

	seen := map[uuid.UUID]bool{}
	var operatorIDs, sessionIDs []uuid.UUID
	for _, s := range sessions {
		facts.Sessions = append(facts.Sessions, service.SessionFact{
			SessionID:    s.OperatorSessionID,
			OperatorID:   s.OperatorSessionOperatorID,
			TeamName:     s.TeamUserUsername,
			Status:       s.OperatorSessionStatus,
			Login:        s.OperatorSessionLoginTeamTime,
			Logoff:       s.OperatorSessionLogoffTeamTime,
			BreakMinutes: s.OperatorSessionBreakMinutes,
		})
		sessionIDs = append(sessionIDs, s.OperatorSessionID)
		if !seen[s.OperatorSessionOperatorID] {
			seen[s.OperatorSessionOperatorID] = true
			operatorIDs = append(operatorIDs, s.OperatorSessionOperatorID)
		}
	}

	err = db.Table("operators").
		Select("operator_id, operator_badge_num AS badge_num, operator_name AS name").
		Where("operator_id = ANY(?::uuid[])", idStrings(operatorIDs)).
		Scan(&facts.Operators).Error
	if err != nil {
		return nil, err
	}

	err = db.Table("downtime_declarations").
		Select("downtime_declaration_session_id AS session_id, downtime_declaration_total AS total").
		Where("downtime_declaration_session_id = ANY(?::uuid[])", idStrings(sessionIDs)).
		Scan(&facts.Downtimes).Error
	if err != nil {
		return nil, err
	}

	var decls []declarationRow
	err = db.Table("declarations d").
		Select("dop.declaration_operator_operator_id AS operator_id, d.declaration_qty, d.declaration_smv, d.declaration_created_at").
		Joins("JOIN declaration_operators dop ON dop.declaration_operator_declaration_id = d.declaration_id").
		Where("d.declaration_date = ? AND d.declaration_smv IS NOT NULL", day).
		Where("dop.declaration_operator_operator_id = ANY(?::uuid[])", idStrings(operatorIDs)).
		Order("d.declaration_created_at ASC").
		Scan(&decls).Error
	if err != nil {
		return nil, err
	}
	for _, d := range decls {
		facts.Declarations = append(facts.Declarations, service.DeclarationFact{
			OperatorID: d.OperatorID,
			Qty:        d.Qty,
			SMV:        d.SMV,
			CreatedAt:  d.CreatedAt,
		})
	}
	return facts, nil
}
