package route

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"shopfloor_backend/internals/features/declarations/controller"
	"shopfloor_backend/internals/features/declarations/repository"
	"shopfloor_backend/internals/features/declarations/service"
	wizard "shopfloor_backend/internals/features/wizard/service"
	"shopfloor_backend/internals/helpers/dbtime"
)

// PlannerRoutes mounts under /api/p.
func PlannerRoutes(r fiber.Router, db *gorm.DB) {
	h := controller.NewDeclarationController(db)

	g := r.Group("/declarations")
	g.Get("/", h.List)
	g.Post("/", h.Create)
}

// TeamRoutes mounts under /api/t.
func TeamRoutes(r fiber.Router, db *gorm.DB) {
	h := controller.NewDeclarationController(db)
	r.Get("/declarations", h.Today)
}

// Wizards builds the planner and team declaration wizards.
func Wizards(db *gorm.DB, states wizard.StateStore) (planner, team wizard.Runner) {
	svc := service.NewService(repository.NewDeclarationRepository(db), dbtime.Default(), log.Logger)
	return wizard.New(service.PlannerFlow(svc), states, log.Logger),
		wizard.New(service.TeamFlow(svc), states, log.Logger)
}
