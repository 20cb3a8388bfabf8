package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"shopfloor_backend/internals/features/downtimes/dto"
	"shopfloor_backend/internals/features/downtimes/repository"
	"shopfloor_backend/internals/features/downtimes/service"
	helper "shopfloor_backend/internals/helpers"
	"shopfloor_backend/internals/helpers/dbtime"
)

type DowntimeController struct {
	Repo     *repository.DowntimeRepository
	Service  *service.Service
	Validate *validator.Validate
}

func NewDowntimeController(db *gorm.DB) *DowntimeController {
	repo := repository.NewDowntimeRepository(db)
	return &DowntimeController{
		Repo:     repo,
		Service:  service.NewService(repo, dbtime.Default(), log.Logger),
		Validate: validator.New(),
	}
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}

/* =========================================================
   DOWNTIME TYPES
   ========================================================= */

// GET /downtimes?subdepartment_id=
func (h *DowntimeController) ListTypes(c *fiber.Ctx) error {
	var sub *uuid.UUID
	if s := c.Query("subdepartment_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid subdepartment_id")
		}
		sub = &id
	}
	out, err := h.Repo.Downtimes(c.Context(), sub)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

func (h *DowntimeController) parseType(c *fiber.Ctx) (service.DowntimeTypeInput, error) {
	var req dto.DowntimeTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return service.DowntimeTypeInput{}, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return service.DowntimeTypeInput{}, err
	}
	return req.ToInput()
}

// POST /downtimes
func (h *DowntimeController) CreateType(c *fiber.Ctx) error {
	in, err := h.parseType(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.CreateDowntimeType(c.Context(), in)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "downtime type created", m)
}

// PUT /downtimes/:id
func (h *DowntimeController) UpdateType(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	in, err := h.parseType(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.UpdateDowntimeType(c.Context(), id, in)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "downtime type updated", m)
}

// DELETE /downtimes/:id
func (h *DowntimeController) DeleteType(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := h.Service.DeleteDowntimeType(c.Context(), id); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonDeleted(c, "downtime type deleted", fiber.Map{"downtime_id": id})
}

/* =========================================================
   DOWNTIME DECLARATIONS
   ========================================================= */

// GET /downtime-declarations?date=&team_user_id=
func (h *DowntimeController) List(c *fiber.Ctx) error {
	var q dto.ListDowntimeDeclarationsQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	f, err := q.ToFilter()
	if err != nil {
		return helper.FromError(c, err)
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)
	rows, total, err := h.Repo.ListDowntimeDeclarations(c.Context(), f, p.Limit(), p.Offset())
	if err != nil {
		return helper.FromError(c, err)
	}
	meta := helper.BuildMeta(total, p)
	return helper.JsonList(c, "ok", rows, &meta)
}

// POST /downtime-declarations
func (h *DowntimeController) Declare(c *fiber.Ctx) error {
	var req dto.DeclareDowntimeRequest
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
	res, err := h.Service.Declare(c.Context(), in)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "downtime declared", res)
}

// PATCH /downtime-declarations/:id
func (h *DowntimeController) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateDowntimeDeclarationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.UpdateDeclaration(c.Context(), id, req.DowntimeValue, req.Repetition)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "downtime declaration updated", m)
}

// DELETE /downtime-declarations/:id
func (h *DowntimeController) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := h.Service.DeleteDeclaration(c.Context(), id); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonDeleted(c, "downtime declaration deleted", fiber.Map{"downtime_declaration_id": id})
}
