package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	authService "shopfloor_backend/internals/features/users/auth/service"
	helper "shopfloor_backend/internals/helpers"
	helperAuth "shopfloor_backend/internals/helpers/auth"
)

// ActiveUsers reports whether a team account may still use its token.
type ActiveUsers interface {
	IsActive(ctx context.Context, id uuid.UUID) (bool, error)
}

type AuthJWTOpts struct {
	Tokens *authService.TokenService
	// Users is optional; when set, disabled accounts are refused per request.
	Users ActiveUsers
}

// AuthJWT verifies the Bearer token and hydrates user_id, userRole and jwt_claims.
func AuthJWT(opts AuthJWTOpts) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := extractBearerToken(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
		}
		claims, err := opts.Tokens.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "unauthorized - invalid or expired token")
		}
		userID, _ := claims.UserID()

		if opts.Users != nil {
			ok, err := opts.Users.IsActive(c.Context(), userID)
			if err != nil {
				log.Error().Err(err).Str("team_user_id", userID.String()).Msg("auth: active check failed")
				return helper.JsonError(c, fiber.StatusInternalServerError, "internal error")
			}
			if !ok {
				return helper.JsonError(c, fiber.StatusForbidden, "account is disabled")
			}
		}

		c.Locals(helperAuth.LocUserID, userID.String())
		c.Locals(helperAuth.LocUserRole, claims.Role)
		c.Locals(helperAuth.LocClaims, claims)
		return c.Next()
	}
}
