package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"shopfloor_backend/internals/configs"
	"shopfloor_backend/internals/features/sessions/dto"
	"shopfloor_backend/internals/features/sessions/repository"
	"shopfloor_backend/internals/features/sessions/scheduler"
	"shopfloor_backend/internals/features/sessions/service"
	helper "shopfloor_backend/internals/helpers"
	helperAuth "shopfloor_backend/internals/helpers/auth"
	"shopfloor_backend/internals/helpers/dbtime"
)

type SessionController struct {
	Store    *repository.GormStore
	Engine   *service.Engine
	Jobs     *scheduler.Jobs
	Validate *validator.Validate
}

func NewSessionController(db *gorm.DB, cfg *configs.AppConfig) *SessionController {
	store := repository.NewGormStore(db)
	return &SessionController{
		Store:    store,
		Engine:   service.NewEngine(store, dbtime.Default(), log.Logger),
		Jobs:     scheduler.NewJobs(db, cfg, log.Logger),
		Validate: validator.New(),
	}
}

/* =========================================================
   TEAM
   POST /api/t/operators/login
   ========================================================= */
func (h *SessionController) BadgeLogin(c *fiber.Ctx) error {
	teamID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	var req dto.BadgeLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return helper.FromError(c, err)
	}

	res, err := h.Engine.Login(c.Context(), teamID, req.BadgeNum)
	if err != nil {
		return helper.FromError(c, err)
	}
	msg := "operator logged in"
	if res.Notice != "" {
		msg = res.Notice
	}
	return helper.JsonCreated(c, msg, dto.FromLogin(res))
}

// POST /api/t/operators/:id/logout
func (h *SessionController) Logout(c *fiber.Ctx) error {
	teamID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid session id")
	}
	s, outcome, err := h.Engine.Logout(c.Context(), teamID, id)
	if err != nil {
		return helper.FromError(c, err)
	}
	msg := "operator logged out"
	if outcome == service.OutcomeUnchanged {
		msg = "session was already closed"
	}
	return helper.JsonUpdated(c, msg, dto.FromModel(s))
}

// GET /api/t/operators/active
func (h *SessionController) ActiveOperators(c *fiber.Ctx) error {
	teamID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	rows, err := h.Store.ActiveRows(c.Context(), teamID, h.Engine.Zone().Today())
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromRows(rows))
}

// GET /api/t/dashboard
func (h *SessionController) Dashboard(c *fiber.Ctx) error {
	teamID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	d, err := h.Engine.TeamDashboard(c.Context(), teamID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", d)
}

/* =========================================================
   PLANNER
   GET /api/p/operator-sessions?date=&team_user_id=&status=&badge=&page=&per_page=&sort_by=&order=
   sort_by: date|login|badge|team|status|modified
   ========================================================= */
func (h *SessionController) List(c *fiber.Ctx) error {
	var q dto.ListSessionsQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	filter, err := q.ToFilter()
	if err != nil {
		return helper.FromError(c, err)
	}
	p := helper.ParseFiber(c, "date", "desc", helper.DefaultOpts)
	order, err := p.OrderExpr(repository.SessionSortColumns, "date")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	rows, total, err := h.Store.ListSessions(c.Context(), filter, order, p.Limit(), p.Offset())
	if err != nil {
		return helper.FromError(c, err)
	}
	meta := helper.BuildMeta(total, p)
	return helper.JsonList(c, "ok", dto.FromRows(rows), &meta)
}

// POST /api/p/operator-sessions
func (h *SessionController) CreateManual(c *fiber.Ctx) error {
	var req dto.ManualSessionRequest
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
	s, err := h.Engine.CreateManual(c.Context(), in)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "session created", dto.FromModel(s))
}

// PATCH /api/p/operator-sessions/:id
func (h *SessionController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid session id")
	}
	var req dto.UpdateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return helper.FromError(c, err)
	}
	patch, err := req.ToPatch()
	if err != nil {
		return helper.FromError(c, err)
	}
	s, err := h.Engine.UpdateSession(c.Context(), id, patch)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "operator session updated", dto.FromModel(s))
}

// POST /api/p/jobs/auto-logout
func (h *SessionController) RunAutoLogout(c *fiber.Ctx) error {
	rep, err := h.Jobs.AutoLogout(c.Context(), nil)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "auto-logout finished", rep)
}

// POST /api/p/jobs/auto-break
func (h *SessionController) RunAutoBreak(c *fiber.Ctx) error {
	rep, err := h.Jobs.AutoBreak(c.Context(), nil)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "auto-break finished", rep)
}
