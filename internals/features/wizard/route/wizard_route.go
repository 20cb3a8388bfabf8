package route

import (
	"github.com/gofiber/fiber/v2"

	"shopfloor_backend/internals/features/wizard/controller"
	"shopfloor_backend/internals/features/wizard/service"
)

// WizardRoutes mounts /wizards/:kind for the given runners under r.
func WizardRoutes(r fiber.Router, runners ...service.Runner) {
	h := controller.NewWizardController(runners...)

	w := r.Group("/wizards")
	w.Get("/:kind", h.View)
	w.Post("/:kind", h.Submit)
	w.Post("/:kind/commit", h.Commit)
	w.Post("/:kind/cancel", h.Cancel)
}
