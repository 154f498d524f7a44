package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	userController "library_backend/internals/features/users/user/controller"
)

func UserRoutes(authed fiber.Router, db *gorm.DB) {
	ctrl := userController.NewUserController(db)

	authed.Get("/users/:id", ctrl.GetUser)
	authed.Put("/users/:id", ctrl.UpdateUser)
}

func UserAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctrl := userController.NewUserController(db)

	admin.Post("/users/:id/deactivate", ctrl.DeactivateUser)
}
