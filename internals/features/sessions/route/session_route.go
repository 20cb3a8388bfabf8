package route

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"shopfloor_backend/internals/configs"
	mdRepo "shopfloor_backend/internals/features/masterdata/repository"
	"shopfloor_backend/internals/features/sessions/controller"
	"shopfloor_backend/internals/features/sessions/repository"
	"shopfloor_backend/internals/features/sessions/service"
	wizard "shopfloor_backend/internals/features/wizard/service"
	"shopfloor_backend/internals/helpers/dbtime"
)

// TeamRoutes mounts under /api/t.
func TeamRoutes(r fiber.Router, db *gorm.DB, cfg *configs.AppConfig) {
	h := controller.NewSessionController(db, cfg)

	ops := r.Group("/operators")
	ops.Post("/login", h.BadgeLogin)
	ops.Get("/active", h.ActiveOperators)
	ops.Post("/:id/logout", h.Logout)

	r.Get("/dashboard", h.Dashboard)
}

// PlannerRoutes mounts under /api/p.
func PlannerRoutes(r fiber.Router, db *gorm.DB, cfg *configs.AppConfig) {
	h := controller.NewSessionController(db, cfg)

	sessions := r.Group("/operator-sessions")
	sessions.Get("/", h.List)
	sessions.Post("/", h.CreateManual)
	sessions.Patch("/:id", h.Update)

	jobs := r.Group("/jobs")
	jobs.Post("/auto-logout", h.RunAutoLogout)
	jobs.Post("/auto-break", h.RunAutoBreak)
}

// LogoutWizard builds the planner bulk-logout wizard.
func LogoutWizard(db *gorm.DB, states wizard.StateStore) wizard.Runner {
	engine := service.NewEngine(repository.NewGormStore(db), dbtime.Default(), log.Logger)
	return wizard.New(service.LogoutFlow(engine, mdRepo.NewReferenceRepository(db)), states, log.Logger)
}
