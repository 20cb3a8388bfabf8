package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"shopfloor_backend/internals/features/routings/controller"
)

func PlannerRoutes(r fiber.Router, db *gorm.DB) {
	h := controller.NewRoutingController(db)

	routings := r.Group("/routings")
	routings.Get("/", h.List)
	routings.Post("/", h.Create)
	routings.Post("/copy", h.Copy)
	routings.Patch("/:id", h.Patch)
	routings.Get("/:id/operations", h.Lines)

	lines := r.Group("/routing-operations")
	lines.Post("/", h.CreateLine)
	lines.Patch("/:id", h.PatchLine)
	lines.Delete("/:id", h.DeleteLine)
}
