package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"library_backend/internals/features/library/stats/controller"
)

// StatsAdminRoutes mounts the admin dashboard counters.
func StatsAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := controller.NewStatsController(db)

	admin.Get("/admin/stats", ctl.GetStats)
}
