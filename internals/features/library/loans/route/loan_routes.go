package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"library_backend/internals/features/library/loans/controller"
)

// LoanRoutes mounts the member-facing loan endpoints on the
// authenticated group.
func LoanRoutes(authed fiber.Router, db *gorm.DB) {
	ctl := controller.NewLoanController(db)

	authed.Post("/loans", ctl.CreateLoan)
	authed.Post("/loans/:id/return", ctl.ReturnLoan)
	authed.Post("/loans/:id/extend", ctl.ExtendLoan)
	authed.Get("/users/:id/loans", ctl.ListUserLoans)
}

// LoanAdminRoutes mounts the admin-only loan reports.
func LoanAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := controller.NewLoanController(db)

	admin.Get("/loans/overdue", ctl.ListOverdueLoans)
}
