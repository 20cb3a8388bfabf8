package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"shopfloor_backend/internals/features/capacity/controller"
)

// PlannerRoutes mounts under /api/p.
func PlannerRoutes(r fiber.Router, db *gorm.DB) {
	h := controller.NewCapacityController(db)
	r.Get("/operator-capacity", h.Get)
}
