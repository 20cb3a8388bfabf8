package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"shopfloor_backend/internals/features/breaks/dto"
	"shopfloor_backend/internals/features/breaks/repository"
	"shopfloor_backend/internals/features/breaks/service"
	helper "shopfloor_backend/internals/helpers"
	"shopfloor_backend/internals/helpers/dbtime"
)

type BreakController struct {
	Repo     *repository.BreakRepository
	Service  *service.Service
	Validate *validator.Validate
}

func NewBreakController(db *gorm.DB) *BreakController {
	repo := repository.NewBreakRepository(db)
	return &BreakController{
		Repo:     repo,
		Service:  service.NewService(repo, dbtime.Default(), log.Logger),
		Validate: validator.New(),
	}
}

/* =========================================================
   BREAK TYPES
   ========================================================= */

// GET /breaks
func (h *BreakController) ListTypes(c *fiber.Ctx) error {
	out, err := h.Repo.Breaks(c.Context())
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

func (h *BreakController) parseType(c *fiber.Ctx) (service.BreakTypeInput, error) {
	var req dto.BreakTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return service.BreakTypeInput{}, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return service.BreakTypeInput{}, err
	}
	return req.ToInput()
}

// POST /breaks
func (h *BreakController) CreateType(c *fiber.Ctx) error {
	in, err := h.parseType(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.CreateBreakType(c.Context(), in)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "break type created", m)
}

// PUT /breaks/:id
func (h *BreakController) UpdateType(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid break id")
	}
	in, err := h.parseType(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.UpdateBreakType(c.Context(), id, in)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "break type updated", m)
}

// DELETE /breaks/:id
func (h *BreakController) DeleteType(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid break id")
	}
	if err := h.Service.DeleteBreakType(c.Context(), id); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonDeleted(c, "break type deleted", fiber.Map{"break_id": id})
}

/* =========================================================
   OPERATOR BREAKS
   ========================================================= */

// GET /operator-breaks?date=&team_user_id=
func (h *BreakController) List(c *fiber.Ctx) error {
	var q dto.ListOperatorBreaksQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	f, err := q.ToFilter()
	if err != nil {
		return helper.FromError(c, err)
	}
	p := helper.ParseFiber(c, "date", "desc", helper.DefaultOpts)
	rows, total, err := h.Repo.ListOperatorBreaks(c.Context(), f, p.Limit(), p.Offset())
	if err != nil {
		return helper.FromError(c, err)
	}
	meta := helper.BuildMeta(total, p)
	return helper.JsonList(c, "ok", rows, &meta)
}

// POST /operator-breaks
func (h *BreakController) Assign(c *fiber.Ctx) error {
	var req dto.AssignBreaksRequest
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
	res, err := h.Service.Assign(c.Context(), in)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "breaks declared", res)
}
