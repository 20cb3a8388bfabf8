package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"shopfloor_backend/internals/configs"
	"shopfloor_backend/internals/features/masterdata/controller"
)

func PlannerRoutes(r fiber.Router, db *gorm.DB, cfg *configs.AppConfig) {
	h := controller.NewMasterdataController(db, cfg)

	r.Get("/subdepartments", h.Subdepartments)
	r.Get("/team-users", h.TeamUsers)
	r.Get("/operators", h.Operators)
	r.Get("/pros", h.Pros)
	r.Get("/operations", h.Operations)

	sync := r.Group("/sync")
	sync.Post("/operators", h.SyncOperators)
	sync.Post("/pros", h.SyncPros)
}
