package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"library_backend/internals/configs"
	"library_backend/internals/features/users/auth/loginlimit"
	"library_backend/internals/features/users/auth/service"
)

type AuthController struct {
	DB      *gorm.DB
	Limiter loginlimit.Limiter
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{
		DB:      db,
		Limiter: loginlimit.New(configs.LoginRateLimitAttempts, configs.LoginRateLimitWindow),
	}
}

func (ac *AuthController) Register(c *fiber.Ctx) error {
	return service.Register(ac.DB, c)
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	return service.Login(ac.DB, ac.Limiter, c)
}

func (ac *AuthController) RefreshToken(c *fiber.Ctx) error {
	return service.RefreshToken(ac.DB, c)
}

func (ac *AuthController) Logout(c *fiber.Ctx) error {
	return service.Logout(ac.DB, c)
}

func (ac *AuthController) Me(c *fiber.Ctx) error {
	return service.Me(c)
}

func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	return service.ChangePassword(ac.DB, c)
}
