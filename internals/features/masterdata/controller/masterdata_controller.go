package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"shopfloor_backend/internals/configs"
	"shopfloor_backend/internals/features/masterdata/dto"
	"shopfloor_backend/internals/features/masterdata/repository"
	"shopfloor_backend/internals/features/masterdata/service"
	helper "shopfloor_backend/internals/helpers"
	"shopfloor_backend/internals/helpers/dbtime"
	"shopfloor_backend/internals/helpers/joblog"
)

const (
	OperatorSyncLogFile = "OperatorSync.txt"
	ProSyncLogFile      = "PROsync.txt"
)

type MasterdataController struct {
	Ref      *repository.ReferenceRepository
	SyncRepo *repository.SyncRepository
	Cfg      *configs.AppConfig
	Validate *validator.Validate
}

func NewMasterdataController(db *gorm.DB, cfg *configs.AppConfig) *MasterdataController {
	return &MasterdataController{
		Ref:      repository.NewReferenceRepository(db),
		SyncRepo: repository.NewSyncRepository(db),
		Cfg:      cfg,
		Validate: validator.New(),
	}
}

func optionalUUID(c *fiber.Ctx, key string) (*uuid.UUID, error) {
	s := c.Query(key)
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" is not a valid id")
	}
	return &id, nil
}

// GET /api/p/subdepartments
func (h *MasterdataController) Subdepartments(c *fiber.Ctx) error {
	rows, err := h.Ref.Subdepartments(c.Context())
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// GET /api/p/team-users
func (h *MasterdataController) TeamUsers(c *fiber.Ctx) error {
	rows, err := h.Ref.PlannableTeamUsers(c.Context())
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromTeamUsers(rows))
}

// GET /api/p/operators?q=&active=&page=&per_page=
func (h *MasterdataController) Operators(c *fiber.Ctx) error {
	var q dto.ListOperatorsQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	p := helper.ParseFiber(c, "badge", "asc", helper.DefaultOpts)
	rows, total, err := h.Ref.Operators(c.Context(), repository.OperatorFilter{Q: q.Q, ActiveOnly: q.ActiveOnly()}, p.Limit(), p.Offset())
	if err != nil {
		return helper.FromError(c, err)
	}
	meta := helper.BuildMeta(total, p)
	return helper.JsonList(c, "ok", dto.FromOperators(rows), &meta)
}

// GET /api/p/pros?subdepartment_id=
func (h *MasterdataController) Pros(c *fiber.Ctx) error {
	sub, err := optionalUUID(c, "subdepartment_id")
	if err != nil {
		return err
	}
	if sub == nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "subdepartment_id is required")
	}
	rows, err := h.Ref.ActivePros(c.Context(), *sub)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// GET /api/p/operations?subdepartment_id=
func (h *MasterdataController) Operations(c *fiber.Ctx) error {
	sub, err := optionalUUID(c, "subdepartment_id")
	if err != nil {
		return err
	}
	rows, err := h.Ref.Operations(c.Context(), sub)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

func (h *MasterdataController) syncService(file string) (*service.SyncService, error) {
	w, err := joblog.Open(h.Cfg.JobLogDir, file)
	if err != nil {
		return nil, err
	}
	return service.NewSyncService(h.SyncRepo, dbtime.Default(), log.Logger, w), nil
}

// POST /api/p/sync/operators
func (h *MasterdataController) SyncOperators(c *fiber.Ctx) error {
	var req dto.SyncOperatorsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return helper.FromError(c, err)
	}
	svc, err := h.syncService(OperatorSyncLogFile)
	if err != nil {
		return helper.FromError(c, err)
	}
	rep, err := svc.SyncOperators(c.Context(), req.Records)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "operator sync finished", rep)
}

// POST /api/p/sync/pros
func (h *MasterdataController) SyncPros(c *fiber.Ctx) error {
	var req dto.SyncProsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return helper.FromError(c, err)
	}
	svc, err := h.syncService(ProSyncLogFile)
	if err != nil {
		return helper.FromError(c, err)
	}
	rep, err := svc.SyncPros(c.Context(), req.Records)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "PRO sync finished", rep)
}
