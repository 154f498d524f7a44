package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	bookController "library_backend/internals/features/library/books/controller"
)

func BookRoutes(public fiber.Router, db *gorm.DB) {
	ctrl := bookController.NewBookController(db)

	public.Get("/books", ctrl.ListBooks)
	public.Get("/books/:id", ctrl.GetBook)
}
