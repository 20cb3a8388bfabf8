package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"shopfloor_backend/internals/features/capacity/repository"
	"shopfloor_backend/internals/features/capacity/service"
	helper "shopfloor_backend/internals/helpers"
	"shopfloor_backend/internals/helpers/dbtime"
)

type CapacityController struct {
	Service *service.Service
}

func NewCapacityController(db *gorm.DB) *CapacityController {
	return &CapacityController{
		Service: service.NewService(repository.NewCapacityRepository(db), dbtime.Default(), log.Logger),
	}
}

// GET /operator-capacity?date=YYYY-MM-DD
func (h *CapacityController) Get(c *fiber.Ctx) error {
	var date *time.Time
	if s := c.Query("date"); s != "" {
		d, err := dbtime.ParseDate(s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		date = &d
	}
	rep, err := h.Service.Report(c.Context(), date)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", rep)
}
