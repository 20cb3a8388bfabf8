package route

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"shopfloor_backend/internals/features/downtimes/controller"
	"shopfloor_backend/internals/features/downtimes/repository"
	"shopfloor_backend/internals/features/downtimes/service"
	wizard "shopfloor_backend/internals/features/wizard/service"
	"shopfloor_backend/internals/helpers/dbtime"
)

// PlannerRoutes mounts under /api/p.
func PlannerRoutes(r fiber.Router, db *gorm.DB) {
	h := controller.NewDowntimeController(db)

	types := r.Group("/downtimes")
	types.Get("/", h.ListTypes)
	types.Post("/", h.CreateType)
	types.Put("/:id", h.UpdateType)
	types.Delete("/:id", h.DeleteType)

	dd := r.Group("/downtime-declarations")
	dd.Get("/", h.List)
	dd.Post("/", h.Declare)
	dd.Patch("/:id", h.Update)
	dd.Delete("/:id", h.Delete)
}

// Wizards builds the planner and team downtime wizards.
func Wizards(db *gorm.DB, states wizard.StateStore) (planner, team wizard.Runner) {
	svc := service.NewService(repository.NewDowntimeRepository(db), dbtime.Default(), log.Logger)
	return wizard.New(service.PlannerFlow(svc), states, log.Logger),
		wizard.New(service.TeamFlow(svc), states, log.Logger)
}
