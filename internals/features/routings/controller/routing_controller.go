package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	mdRepo "shopfloor_backend/internals/features/masterdata/repository"
	"shopfloor_backend/internals/features/routings/dto"
	"shopfloor_backend/internals/features/routings/repository"
	"shopfloor_backend/internals/features/routings/service"
	helper "shopfloor_backend/internals/helpers"
)

type RoutingController struct {
	Repo     *repository.RoutingRepository
	Ref      *mdRepo.ReferenceRepository
	Service  *service.Service
	Validate *validator.Validate
}

func NewRoutingController(db *gorm.DB) *RoutingController {
	repo := repository.NewRoutingRepository(db)
	return &RoutingController{
		Repo:     repo,
		Ref:      mdRepo.NewReferenceRepository(db),
		Service:  service.NewService(repo, log.Logger),
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
   GET /api/p/routings?sku=&subdepartment_id=&ready=&status=
   sort_by: sku|version|ready|created|modified
   ========================================================= */
func (h *RoutingController) List(c *fiber.Ctx) error {
	var q dto.ListRoutingsQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	f, err := q.ToFilter()
	if err != nil {
		return helper.FromError(c, err)
	}
	p := helper.ParseFiber(c, "sku", "asc", helper.DefaultOpts)
	order, err := p.OrderExpr(repository.RoutingSortColumns, "sku")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	rows, total, err := h.Repo.ListRoutings(c.Context(), f, order, p.Limit(), p.Offset())
	if err != nil {
		return helper.FromError(c, err)
	}
	meta := helper.BuildMeta(total, p)
	return helper.JsonList(c, "ok", rows, &meta)
}

// POST /api/p/routings
func (h *RoutingController) Create(c *fiber.Ctx) error {
	var req dto.CreateRoutingRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.CreateRouting(c.Context(), req.ToInput())
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "routing created", m)
}

// PATCH /api/p/routings/:id
func (h *RoutingController) Patch(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.PatchRoutingRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.UpdateRouting(c.Context(), id, req.ToPatch())
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "routing updated", m)
}

// GET /api/p/routings/:id/operations
func (h *RoutingController) Lines(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	rows, err := h.Ref.RoutingOperationLines(c.Context(), id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// POST /api/p/routings/copy
func (h *RoutingController) Copy(c *fiber.Ctx) error {
	var req dto.CopyRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return helper.FromError(c, err)
	}
	res, err := h.Service.Copy(c.Context(), req.ToInput())
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "routing operations copied", res)
}

/* =========================================================
   ROUTING OPERATIONS
   ========================================================= */

// POST /api/p/routing-operations
func (h *RoutingController) CreateLine(c *fiber.Ctx) error {
	var req dto.CreateLineRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return helper.FromError(c, err)
	}
	res, err := h.Service.CreateLine(c.Context(), req.ToInput())
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "routing operation created", res)
}

// PATCH /api/p/routing-operations/:id
func (h *RoutingController) PatchLine(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.PatchLineRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return helper.FromError(c, err)
	}
	res, err := h.Service.UpdateLine(c.Context(), id, req.ToPatch())
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "routing operation updated", res)
}

// DELETE /api/p/routing-operations/:id
func (h *RoutingController) DeleteLine(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ready, err := h.Service.DeleteLine(c.Context(), id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonDeleted(c, "routing operation deleted", fiber.Map{"routing_ready": ready})
}
