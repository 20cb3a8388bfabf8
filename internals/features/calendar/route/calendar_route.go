package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"shopfloor_backend/internals/features/calendar/controller"
)

func PlannerRoutes(r fiber.Router, db *gorm.DB) {
	h := controller.NewCalendarController(db)

	cal := r.Group("/calendar")
	cal.Get("/", h.List)
	cal.Post("/bulk", h.BulkUpsert)
	cal.Post("/bulk-delete", h.BulkDelete)
}

func TeamRoutes(r fiber.Router, db *gorm.DB) {
	h := controller.NewCalendarController(db)
	r.Get("/calendar/today", h.Today)
}
