package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"shopfloor_backend/internals/features/calendar/dto"
	"shopfloor_backend/internals/features/calendar/repository"
	"shopfloor_backend/internals/features/calendar/service"
	helper "shopfloor_backend/internals/helpers"
	helperAuth "shopfloor_backend/internals/helpers/auth"
	"shopfloor_backend/internals/helpers/dbtime"
)

type CalendarController struct {
	Service  *service.Service
	Validate *validator.Validate
}

func NewCalendarController(db *gorm.DB) *CalendarController {
	return &CalendarController{
		Service:  service.NewService(repository.NewCalendarRepository(db), dbtime.Default(), log.Logger),
		Validate: validator.New(),
	}
}

/* =========================================================
   LIST
   GET /api/p/calendar?team_user_id=&from=&to=
   default window: today .. today+30
   ========================================================= */
func (h *CalendarController) List(c *fiber.Ctx) error {
	today := dbtime.Default().Today()
	from, to := today, today.AddDate(0, 0, 30)
	var err error
	if s := strings.TrimSpace(c.Query("from")); s != "" {
		if from, err = dbtime.ParseDate(s); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "from: expected YYYY-MM-DD")
		}
	}
	if s := strings.TrimSpace(c.Query("to")); s != "" {
		if to, err = dbtime.ParseDate(s); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "to: expected YYYY-MM-DD")
		}
	}
	var team *uuid.UUID
	if s := strings.TrimSpace(c.Query("team_user_id")); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid team_user_id")
		}
		team = &id
	}

	rows, err := h.Service.List(c.Context(), team, from, to)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromModels(rows), nil)
}

// POST /api/p/calendar/bulk
func (h *CalendarController) BulkUpsert(c *fiber.Ctx) error {
	var req dto.BulkUpsertRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return helper.FromError(c, err)
	}
	in, err := req.ToInput()
	if err != nil {
		return helper.FromError(c, err)
	}
	res, err := h.Service.BulkUpsert(c.Context(), in)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "calendar saved", res)
}

// POST /api/p/calendar/bulk-delete
func (h *CalendarController) BulkDelete(c *fiber.Ctx) error {
	var req dto.BulkDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return helper.FromError(c, err)
	}
	team, dates, err := req.Parse()
	if err != nil {
		return helper.FromError(c, err)
	}
	n, err := h.Service.BulkDelete(c.Context(), team, dates)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonDeleted(c, "calendar entries deleted", fiber.Map{"deleted": n})
}

// GET /api/t/calendar/today
func (h *CalendarController) Today(c *fiber.Ctx) error {
	teamID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	shift, err := h.Service.Today(c.Context(), teamID)
	if err != nil {
		return helper.FromError(c, err)
	}
	if shift == nil {
		return helper.JsonOK(c, "no shift planned for today", nil)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(shift))
}

