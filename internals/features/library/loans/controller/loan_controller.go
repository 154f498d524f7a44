package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"library_backend/internals/configs"
	bookModel "library_backend/internals/features/library/books/model"
	"library_backend/internals/features/library/loans/dto"
	"library_backend/internals/features/library/loans/model"
	helper "library_backend/internals/helpers"
	authMiddleware "library_backend/internals/middlewares/auth"
)

type LoanController struct {
	DB *gorm.DB
}

func NewLoanController(db *gorm.DB) *LoanController {
	return &LoanController{DB: db}
}

// civilDate drops the time of day, keeping the civil date in UTC.
func civilDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CreateLoan issues a loan, either for an explicit item or by allocating
// a free copy of a book. All checks and the insert run in one
// transaction.
func (ctl *LoanController) CreateLoan(c *fiber.Ctx) error {
	var req dto.CreateLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, helper.ErrMissingFields, "Invalid request body.")
	}
	if req.ItemID == nil && req.BookID == nil {
		return helper.JsonError(c, fiber.StatusBadRequest, helper.ErrMissingFields,
			"Either item_id or book_id must be provided.")
	}

	loanDays := configs.DefaultLoanDays
	if req.LoanDays != nil {
		loanDays = *req.LoanDays
	}
	if loanDays <= 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid_loan_days",
			"loan_days must be a positive integer.")
	}

	cu, ok := authMiddleware.CurrentUser(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrUnauthorized, "Missing or invalid token.")
	}

	now := time.Now().UTC()
	dueDate := civilDate(now.AddDate(0, 0, loanDays))

	tx := ctl.DB.WithContext(c.UserContext()).Begin()
	if tx.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}

	var chosen bookModel.ItemModel
	var bookID *uint

	if req.ItemID != nil {
		// Direct item mode. Lock the item row before the open-loan check
		// so a concurrent create on the same item serializes here.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Take(&chosen, "id = ?", *req.ItemID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.JsonError(c, fiber.StatusNotFound, "item_not_found", "Item not found.")
			}
			return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
		}

		if cu.LibraryID != nil && *cu.LibraryID != chosen.LibraryID {
			tx.Rollback()
			return helper.JsonError(c, fiber.StatusBadRequest, "different_library",
				"User and item are from different libraries.")
		}

		var open model.LoanModel
		err := tx.Where("item_id = ? AND return_date IS NULL", chosen.ID).Take(&open).Error
		if err == nil {
			tx.Rollback()
			return helper.JsonError(c, fiber.StatusConflict, "item_already_loaned",
				"This item is already loaned out.")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			tx.Rollback()
			return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
		}
	} else {
		// Book mode: verify the book, then allocate a free copy.
		var book bookModel.BookModel
		if err := tx.Take(&book, "id = ?", *req.BookID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.JsonError(c, fiber.StatusNotFound, "book_not_found", "Book not found.")
			}
			return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
		}

		item, err := pickAvailableItem(tx, book.ID, cu.LibraryID)
		if err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.JsonError(c, fiber.StatusConflict, "no_available_item",
					"No available item for this book.")
			}
			return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
		}
		chosen = *item
	}
	bookID = &chosen.BookID

	loan := model.LoanModel{
		ItemID:   chosen.ID,
		UserID:   cu.UserID,
		LoanDate: now,
		DueDate:  datatypes.Date(dueDate),
		FinePaid: 0,
	}
	if err := tx.Create(&loan).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// The partial unique index caught a race the lock did not:
			// same business outcome as the explicit check.
			return helper.JsonError(c, fiber.StatusConflict, "item_already_loaned",
				"This item is already loaned out.")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}

	if err := tx.Commit().Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}

	resp := dto.ToLoanResponse(&loan)
	resp.BookID = bookID
	resp.Status = "active"
	return helper.JsonCreated(c, resp)
}

// ReturnLoan marks a loan returned. Only the owning user or an admin may
// return it; returning twice fails and never touches return_date again.
func (ctl *LoanController) ReturnLoan(c *fiber.Ctx) error {
	loanID, ok, err := helper.ParamID(c, "id")
	if !ok {
		return err
	}

	cu, ok := authMiddleware.CurrentUser(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrUnauthorized, "Missing or invalid token.")
	}

	tx := ctl.DB.WithContext(c.UserContext()).Begin()
	if tx.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}

	var loan model.LoanModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&loan, "id = ?", loanID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "loan_not_found", "Loan not found.")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}

	if !cu.IsAdmin() && loan.UserID != cu.UserID {
		tx.Rollback()
		return helper.JsonError(c, fiber.StatusForbidden, helper.ErrForbidden, "You can only return your own loans.")
	}
	if loan.ReturnDate != nil {
		tx.Rollback()
		return helper.JsonError(c, fiber.StatusBadRequest, "loan_already_returned", "Loan already returned.")
	}

	now := time.Now().UTC()
	if err := tx.Model(&loan).Update("return_date", now).Error; err != nil {
		tx.Rollback()
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}
	if err := tx.Commit().Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}

	loan.ReturnDate = &now
	return helper.JsonOK(c, dto.ToLoanResponse(&loan))
}

// ExtendLoan pushes due_date forward by extra_days. Overdue loans cannot
// be extended, even by admins: the only path left is return.
func (ctl *LoanController) ExtendLoan(c *fiber.Ctx) error {
	loanID, ok, err := helper.ParamID(c, "id")
	if !ok {
		return err
	}

	var req dto.ExtendLoanRequest
	if err := c.BodyParser(&req); err != nil || req.ExtraDays == nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid_extra_days", "extra_days must be an integer.")
	}
	if *req.ExtraDays <= 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid_extra_days",
			"extra_days must be a positive integer.")
	}

	cu, ok := authMiddleware.CurrentUser(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrUnauthorized, "Missing or invalid token.")
	}

	today := civilDate(time.Now())

	tx := ctl.DB.WithContext(c.UserContext()).Begin()
	if tx.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}

	var loan model.LoanModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&loan, "id = ?", loanID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "loan_not_found", "Loan not found.")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}

	if !cu.IsAdmin() && loan.UserID != cu.UserID {
		tx.Rollback()
		return helper.JsonError(c, fiber.StatusForbidden, helper.ErrForbidden, "You can only extend your own loans.")
	}
	if loan.ReturnDate != nil {
		tx.Rollback()
		return helper.JsonError(c, fiber.StatusBadRequest, "loan_already_returned", "Loan already returned.")
	}

	due := civilDate(time.Time(loan.DueDate))
	if due.Before(today) {
		tx.Rollback()
		return helper.JsonError(c, fiber.StatusBadRequest, "loan_overdue", "Overdue loans cannot be extended.")
	}

	newDue := due.AddDate(0, 0, *req.ExtraDays)
	if err := tx.Model(&loan).Update("due_date", datatypes.Date(newDue)).Error; err != nil {
		tx.Rollback()
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}
	if err := tx.Commit().Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}

	loan.DueDate = datatypes.Date(newDue)
	return helper.JsonOK(c, dto.ToLoanResponse(&loan))
}

// ListUserLoans lists a user's loans: active=true|false|all (default
// true), overdue=true narrows to open loans past due. Self or admin.
func (ctl *LoanController) ListUserLoans(c *fiber.Ctx) error {
	userID, ok, err := helper.ParamID(c, "id")
	if !ok {
		return err
	}

	cu, ok := authMiddleware.CurrentUser(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrUnauthorized, "Missing or invalid token.")
	}
	if !cu.IsAdmin() && cu.UserID != userID {
		return helper.JsonError(c, fiber.StatusForbidden, helper.ErrForbidden, "You can only list your own loans.")
	}

	q := ctl.DB.Where("user_id = ?", userID)

	switch strings.ToLower(c.Query("active", "true")) {
	case "true":
		q = q.Where("return_date IS NULL")
	case "false":
		q = q.Where("return_date IS NOT NULL")
	}
	if strings.EqualFold(c.Query("overdue", "false"), "true") {
		q = q.Where("return_date IS NULL AND due_date < CURRENT_DATE")
	}

	var loans []model.LoanModel
	if err := q.Order("loan_date DESC").Find(&loans).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}

	result := make([]dto.LoanResponse, 0, len(loans))
	for i := range loans {
		result = append(result, dto.ToLoanResponse(&loans[i]))
	}
	return helper.JsonOK(c, result)
}

// ListOverdueLoans is the admin-wide overdue report, soonest due first.
func (ctl *LoanController) ListOverdueLoans(c *fiber.Ctx) error {
	var loans []model.LoanModel
	if err := ctl.DB.
		Where("return_date IS NULL AND due_date < CURRENT_DATE").
		Order("due_date ASC").
		Find(&loans).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}

	result := make([]dto.LoanResponse, 0, len(loans))
	for i := range loans {
		result = append(result, dto.ToLoanResponse(&loans[i]))
	}
	return helper.JsonOK(c, result)
}
