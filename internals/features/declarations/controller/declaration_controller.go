package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"shopfloor_backend/internals/features/declarations/dto"
	"shopfloor_backend/internals/features/declarations/repository"
	"shopfloor_backend/internals/features/declarations/service"
	helper "shopfloor_backend/internals/helpers"
	helperAuth "shopfloor_backend/internals/helpers/auth"
	"shopfloor_backend/internals/helpers/dbtime"
)

type DeclarationController struct {
	Repo     *repository.DeclarationRepository
	Service  *service.Service
	Validate *validator.Validate
}

func NewDeclarationController(db *gorm.DB) *DeclarationController {
	repo := repository.NewDeclarationRepository(db)
	return &DeclarationController{
		Repo:     repo,
		Service:  service.NewService(repo, dbtime.Default(), log.Logger),
		Validate: validator.New(),
	}
}

/* =========================================================
   PLANNER
   GET /api/p/declarations?date=&team_user_id=&page=&per_page=
   ========================================================= */
func (h *DeclarationController) List(c *fiber.Ctx) error {
	var q dto.ListDeclarationsQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	f, err := q.ToFilter()
	if err != nil {
		return helper.FromError(c, err)
	}
	return h.list(c, f)
}

// POST /api/p/declarations
func (h *DeclarationController) Create(c *fiber.Ctx) error {
	var req dto.CreateDeclarationRequest
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
	m, err := h.Service.Create(c.Context(), in)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "declaration created", m)
}

/* =========================================================
   TEAM
   GET /api/t/declarations  (today, own team)
   ========================================================= */
func (h *DeclarationController) Today(c *fiber.Ctx) error {
	teamID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	today := h.Service.Zone().Today()
	return h.list(c, repository.DeclarationFilter{Date: &today, TeamUserID: &teamID})
}

func (h *DeclarationController) list(c *fiber.Ctx, f repository.DeclarationFilter) error {
	p := helper.ParseFiber(c, "date", "desc", helper.DefaultOpts)
	rows, total, err := h.Repo.List(c.Context(), f, p.Limit(), p.Offset())
	if err != nil {
		return helper.FromError(c, err)
	}
	meta := helper.BuildMeta(total, p)
	return helper.JsonList(c, "ok", dto.FromRows(rows), &meta)
}
