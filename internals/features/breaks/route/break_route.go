package route

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"shopfloor_backend/internals/features/breaks/controller"
	"shopfloor_backend/internals/features/breaks/repository"
	"shopfloor_backend/internals/features/breaks/service"
	wizard "shopfloor_backend/internals/features/wizard/service"
	"shopfloor_backend/internals/helpers/dbtime"
)

// PlannerRoutes mounts under /api/p.
func PlannerRoutes(r fiber.Router, db *gorm.DB) {
	h := controller.NewBreakController(db)

	types := r.Group("/breaks")
	types.Get("/", h.ListTypes)
	types.Post("/", h.CreateType)
	types.Put("/:id", h.UpdateType)
	types.Delete("/:id", h.DeleteType)

	ob := r.Group("/operator-breaks")
	ob.Get("/", h.List)
	ob.Post("/", h.Assign)
}

// Wizards builds the planner and team break wizards.
func Wizards(db *gorm.DB, states wizard.StateStore) (planner, team wizard.Runner) {
	svc := service.NewService(repository.NewBreakRepository(db), dbtime.Default(), log.Logger)
	return wizard.New(service.PlannerFlow(svc), states, log.Logger),
		wizard.New(service.TeamFlow(svc), states, log.Logger)
}
