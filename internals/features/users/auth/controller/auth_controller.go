package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"shopfloor_backend/internals/features/users/auth/dto"
	"shopfloor_backend/internals/features/users/auth/repository"
	"shopfloor_backend/internals/features/users/auth/service"
	helper "shopfloor_backend/internals/helpers"
	helperAuth "shopfloor_backend/internals/helpers/auth"
)

type AuthController struct {
	Service  *service.Service
	Validate *validator.Validate
}

func NewAuthController(db *gorm.DB, tokens *service.TokenService) *AuthController {
	return &AuthController{
		Service:  service.NewService(repository.NewAuthRepository(db), tokens, log.Logger),
		Validate: validator.New(),
	}
}

// POST /api/auth/login
func (h *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return helper.FromError(c, err)
	}

	res, err := h.Service.Login(c.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "login successful", dto.LoginResponse{
		AccessToken: res.AccessToken,
		ExpiresAt:   res.ExpiresAt,
		Role:        res.User.TeamUserRole,
		TeamUser:    dto.FromTeamUser(res.User),
	})
}

// GET /api/auth/me
func (h *AuthController) Me(c *fiber.Ctx) error {
	id, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	u, err := h.Service.Me(c.Context(), id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromTeamUser(u))
}
