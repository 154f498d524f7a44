package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"library_backend/internals/features/library/reservations/controller"
)

// ReservationRoutes mounts the member-facing reservation endpoints.
func ReservationRoutes(authed fiber.Router, db *gorm.DB) {
	ctl := controller.NewReservationController(db)

	authed.Post("/reservations", ctl.CreateReservation)
	authed.Post("/reservations/:id/cancel", ctl.CancelReservation)
	authed.Get("/users/:id/reservations", ctl.ListForUser)
}

// ReservationAdminRoutes mounts queue management for admins.
func ReservationAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := controller.NewReservationController(db)

	admin.Post("/reservations/:id/status", ctl.UpdateStatus)
	admin.Post("/admin/reservations/expire", ctl.BulkExpire)
	admin.Get("/books/:id/reservations", ctl.ListForBook)
}
