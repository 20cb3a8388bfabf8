package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	breakModel "shopfloor_backend/internals/features/breaks/model"
	calModel "shopfloor_backend/internals/features/calendar/model"
	declModel "shopfloor_backend/internals/features/declarations/model"
	dtModel "shopfloor_backend/internals/features/downtimes/model"
	mdModel "shopfloor_backend/internals/features/masterdata/model"
	rtModel "shopfloor_backend/internals/features/routings/model"
	sessModel "shopfloor_backend/internals/features/sessions/model"
	authModel "shopfloor_backend/internals/features/users/auth/model"
	wizardModel "shopfloor_backend/internals/features/wizard/model"
)

// Models in dependency order.
func Models() []any {
	return []any{
		&mdModel.SubdepartmentModel{},
		&authModel.TeamUserModel{},
		&mdModel.OperatorModel{},
		&mdModel.OperationModel{},
		&mdModel.ProModel{},
		&mdModel.ProSubdepartmentModel{},
		&calModel.ShiftEntryModel{},
		&sessModel.OperatorSessionModel{},
		&rtModel.RoutingModel{},
		&rtModel.RoutingOperationModel{},
		&declModel.DeclarationModel{},
		&declModel.DeclarationOperatorModel{},
		&breakModel.BreakModel{},
		&breakModel.OperatorBreakModel{},
		&dtModel.DowntimeModel{},
		&dtModel.DowntimeDeclarationModel{},
		&wizardModel.WizardStateModel{},
	}
}

// extraDDL covers what struct tags cannot express.
var extraDDL = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_operators_badge_lower ON operators (LOWER(operator_badge_num))`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_team_users_username_lower ON team_users (LOWER(team_user_username))`,
	`CREATE INDEX IF NOT EXISTS idx_operator_sessions_status_date ON operator_sessions (operator_session_status, operator_session_login_team_date)`,
}

func Migrate(ctx context.Context, db *gorm.DB) error {
	tx := db.WithContext(ctx)
	if err := tx.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}
	if err := tx.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	for _, stmt := range extraDDL {
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migrate %q: %w", stmt, err)
		}
	}
	log.Info().Int("tables", len(Models())).Msg("migration finished")
	return nil
}
