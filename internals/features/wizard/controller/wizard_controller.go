package controller

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"shopfloor_backend/internals/features/wizard/service"
	helper "shopfloor_backend/internals/helpers"
	helperAuth "shopfloor_backend/internals/helpers/auth"
)

// WizardController serves every wizard kind registered for one audience.
type WizardController struct {
	runners  map[string]service.Runner
	Validate *validator.Validate
}

func NewWizardController(runners ...service.Runner) *WizardController {
	h := &WizardController{runners: make(map[string]service.Runner, len(runners)), Validate: validator.New()}
	for _, r := range runners {
		h.runners[r.Kind()] = r
	}
	return h
}

type SubmitRequest struct {
	Step   int      `json:"step" validate:"required,min=1"`
	Values []string `json:"values"`
}

func (h *WizardController) resolve(c *fiber.Ctx) (service.Runner, service.Actor, error) {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return nil, service.Actor{}, err
	}
	r, ok := h.runners[c.Params("kind")]
	if !ok {
		return nil, service.Actor{}, fiber.NewError(fiber.StatusNotFound, "unknown wizard")
	}
	return r, service.Actor{UserID: userID, Role: helperAuth.GetRole(c)}, nil
}

// GET /wizards/:kind?step=N
func (h *WizardController) View(c *fiber.Ctx) error {
	r, actor, err := h.resolve(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	step := 1
	if raw := c.Query("step"); raw != "" {
		if step, err = strconv.Atoi(raw); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "step must be a number")
		}
	}
	v, err := r.View(c.Context(), actor, step)
	if err != nil {
		return h.fail(c, r, err)
	}
	return helper.JsonOK(c, "ok", v)
}

// POST /wizards/:kind {step, values}
func (h *WizardController) Submit(c *fiber.Ctx) error {
	r, actor, err := h.resolve(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return helper.FromError(c, err)
	}
	p, err := r.Submit(c.Context(), actor, req.Step, req.Values)
	if err != nil {
		return h.fail(c, r, err)
	}
	return helper.JsonOK(c, "saved", p)
}

// POST /wizards/:kind/commit
func (h *WizardController) Commit(c *fiber.Ctx) error {
	r, actor, err := h.resolve(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	out, err := r.Commit(c.Context(), actor)
	if err != nil {
		return h.fail(c, r, err)
	}
	if out.NoOp {
		return helper.JsonOK(c, "nothing to commit", out)
	}
	return helper.JsonCreated(c, "saved", out)
}

// POST /wizards/:kind/cancel
func (h *WizardController) Cancel(c *fiber.Ctx) error {
	r, actor, err := h.resolve(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := r.Cancel(c.Context(), actor); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "cancelled", fiber.Map{"landing": r.Landing()})
}

func (h *WizardController) fail(c *fiber.Ctx, r service.Runner, err error) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		extra := fiber.Map{"redirect_step": ve.Step}
		if ve.Field != "" {
			extra["errors"] = map[string][]string{ve.Field: {ve.Message}}
		}
		return helper.JsonErrorWith(c, fiber.StatusUnprocessableEntity, ve.Message, extra)
	}
	var ref *service.ReferenceError
	if errors.As(err, &ref) {
		return helper.JsonErrorWith(c, fiber.StatusConflict, ref.Error(), fiber.Map{"redirect": r.Landing()})
	}
	return helper.FromError(c, err)
}
