package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	bookRoute "library_backend/internals/features/library/books/route"
	loanRoute "library_backend/internals/features/library/loans/route"
	reservationRoute "library_backend/internals/features/library/reservations/route"
	statsRoute "library_backend/internals/features/library/stats/route"
	authRoute "library_backend/internals/features/users/auth/route"
	userRoute "library_backend/internals/features/users/user/route"
	authMiddleware "library_backend/internals/middlewares/auth"
)

// SetupRoutes wires every feature under /api in three tiers: public,
// authenticated, and admin-only.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	api := app.Group("/api")

	// Public: catalog browsing and the auth entry points.
	bookRoute.BookRoutes(api, db)
	authRoute.AuthRoutes(api, db)

	// Authenticated members.
	authed := api.Group("", authMiddleware.AuthJWT(db))
	userRoute.UserRoutes(authed, db)
	loanRoute.LoanRoutes(authed, db)
	reservationRoute.ReservationRoutes(authed, db)

	// Admin.
	admin := api.Group("", authMiddleware.AuthJWT(db), authMiddleware.OnlyAdmin())
	userRoute.UserAdminRoutes(admin, db)
	loanRoute.LoanAdminRoutes(admin, db)
	reservationRoute.ReservationAdminRoutes(admin, db)
	statsRoute.StatsAdminRoutes(admin, db)
}
