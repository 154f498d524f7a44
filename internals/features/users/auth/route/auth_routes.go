package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authController "library_backend/internals/features/users/auth/controller"
	"library_backend/internals/middlewares"
	authMiddleware "library_backend/internals/middlewares/auth"
)

func AuthRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := authController.NewAuthController(db)

	api.Post("/register", middlewares.RegisterRateLimiter(), ctrl.Register)
	api.Post("/login", ctrl.Login)
	api.Post("/token/refresh", ctrl.RefreshToken)

	authed := api.Group("", authMiddleware.AuthJWT(db))
	authed.Post("/logout", ctrl.Logout)
	authed.Get("/me", ctrl.Me)
	authed.Post("/me/password", ctrl.ChangePassword)
}
