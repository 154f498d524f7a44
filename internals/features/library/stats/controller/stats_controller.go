package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	helper "library_backend/internals/helpers"
)

type StatsController struct {
	DB *gorm.DB
}

func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{DB: db}
}

type statsRow struct {
	TotalUsers        int64 `gorm:"column:total_users" json:"total_users"`
	ActiveUsers       int64 `gorm:"column:active_users" json:"active_users"`
	TotalBooks        int64 `gorm:"column:total_books" json:"total_books"`
	TotalItems        int64 `gorm:"column:total_items" json:"total_items"`
	ActiveLoans       int64 `gorm:"column:active_loans" json:"active_loans"`
	OverdueLoans      int64 `gorm:"column:overdue_loans" json:"overdue_loans"`
	TotalReservations int64 `gorm:"column:total_reservations" json:"total_reservations"`
}

// GetStats returns the system-wide counters in a single round trip.
func (ctl *StatsController) GetStats(c *fiber.Ctx) error {
	const query = `
SELECT
  (SELECT COUNT(*) FROM users)                                                    AS total_users,
  (SELECT COUNT(*) FROM users WHERE is_active)                                    AS active_users,
  (SELECT COUNT(*) FROM books)                                                    AS total_books,
  (SELECT COUNT(*) FROM items)                                                    AS total_items,
  (SELECT COUNT(*) FROM loans WHERE return_date IS NULL)                          AS active_loans,
  (SELECT COUNT(*) FROM loans WHERE return_date IS NULL
     AND due_date < CURRENT_DATE)                                                 AS overdue_loans,
  (SELECT COUNT(*) FROM reservations)                                             AS total_reservations`

	var row statsRow
	if err := ctl.DB.WithContext(c.UserContext()).Raw(query).Scan(&row).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}
	return helper.JsonOK(c, row)
}
