package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"shopfloor_backend/internals/features/users/auth/controller"
	"shopfloor_backend/internals/features/users/auth/service"
	"shopfloor_backend/internals/middlewares"
	authMiddleware "shopfloor_backend/internals/middlewares/auth"
)

// AuthRoutes mounts /api/auth. The login route carries its own stricter limiter.
func AuthRoutes(app *fiber.App, db *gorm.DB, tokens *service.TokenService) {
	h := controller.NewAuthController(db, tokens)

	auth := app.Group("/api/auth")
	auth.Post("/login", middlewares.LoginRateLimiter(), h.Login)
	auth.Get("/me", authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{Tokens: tokens, Users: h.Service}), h.Me)
}
