package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"shopfloor_backend/internals/configs"
	"shopfloor_backend/internals/constants"
	breakRoute "shopfloor_backend/internals/features/breaks/route"
	calendarRoute "shopfloor_backend/internals/features/calendar/route"
	capacityRoute "shopfloor_backend/internals/features/capacity/route"
	declarationRoute "shopfloor_backend/internals/features/declarations/route"
	downtimeRoute "shopfloor_backend/internals/features/downtimes/route"
	masterdataRoute "shopfloor_backend/internals/features/masterdata/route"
	routingRoute "shopfloor_backend/internals/features/routings/route"
	sessionRoute "shopfloor_backend/internals/features/sessions/route"
	authRepo "shopfloor_backend/internals/features/users/auth/repository"
	authRoute "shopfloor_backend/internals/features/users/auth/route"
	authService "shopfloor_backend/internals/features/users/auth/service"
	wizardRepo "shopfloor_backend/internals/features/wizard/repository"
	wizardRoute "shopfloor_backend/internals/features/wizard/route"
	"shopfloor_backend/internals/middlewares"
	authMiddleware "shopfloor_backend/internals/middlewares/auth"
)

var startTime time.Time

// SetupRoutes mounts auth, the planner group /api/p and the team group /api/t.
func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *configs.AppConfig, tokens *authService.TokenService) {
	startTime = time.Now()

	BaseRoutes(app, db)

	log.Info().Msg("setting up auth routes")
	authRoute.AuthRoutes(app, db, tokens)

	jwt := authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
		Tokens: tokens,
		Users:  authService.NewService(authRepo.NewAuthRepository(db), tokens, log.Logger),
	})

	planner := app.Group("/api/p",
		middlewares.GlobalRateLimiter(),
		jwt,
		authMiddleware.OnlyRoles(constants.RoleErrorPlanner("planner routes"), constants.PlannerAndAbove...),
	)
	team := app.Group("/api/t",
		middlewares.GlobalRateLimiter(),
		jwt,
		authMiddleware.OnlyRoles(constants.RoleErrorTeam("team routes"), constants.TeamOnly...),
	)

	log.Info().Msg("mounting planner routes")
	masterdataRoute.PlannerRoutes(planner, db, cfg)
	calendarRoute.PlannerRoutes(planner, db)
	sessionRoute.PlannerRoutes(planner, db, cfg)
	routingRoute.PlannerRoutes(planner, db)
	declarationRoute.PlannerRoutes(planner, db)
	breakRoute.PlannerRoutes(planner, db)
	downtimeRoute.PlannerRoutes(planner, db)
	capacityRoute.PlannerRoutes(planner, db)

	log.Info().Msg("mounting team routes")
	calendarRoute.TeamRoutes(team, db)
	sessionRoute.TeamRoutes(team, db, cfg)
	declarationRoute.TeamRoutes(team, db)

	states := wizardRepo.NewGormStateStore(db)
	plannerDecl, teamDecl := declarationRoute.Wizards(db, states)
	plannerBreak, teamBreak := breakRoute.Wizards(db, states)
	plannerDown, teamDown := downtimeRoute.Wizards(db, states)

	wizardRoute.WizardRoutes(planner,
		sessionRoute.LogoutWizard(db, states),
		plannerDecl, plannerBreak, plannerDown,
	)
	wizardRoute.WizardRoutes(team, teamDecl, teamBreak, teamDown)
}
