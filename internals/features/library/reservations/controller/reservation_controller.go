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
	"library_backend/internals/features/library/reservations/dto"
	"library_backend/internals/features/library/reservations/model"
	userModel "library_backend/internals/features/users/user/model"
	helper "library_backend/internals/helpers"
	authMiddleware "library_backend/internals/middlewares/auth"
)

// queueRetries bounds the insert loop when two transactions race to the
// same queue_number despite the book-scoped lock.
const queueRetries = 3

type ReservationController struct {
	DB *gorm.DB
}

func NewReservationController(db *gorm.DB) *ReservationController {
	return &ReservationController{DB: db}
}

// CreateReservation appends the caller to a book's queue. Queue numbers
// are assigned under a lock on the book's existing reservation rows, so
// concurrent creates for the same book serialize and each gets MAX+1.
func (ctl *ReservationController) CreateReservation(c *fiber.Ctx) error {
	var req dto.CreateReservationRequest
	if err := c.BodyParser(&req); err != nil || req.BookID == nil {
		return helper.JsonError(c, fiber.StatusBadRequest, helper.ErrMissingFields, "book_id is required.")
	}

	cu, ok := authMiddleware.CurrentUser(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrUnauthorized, "Missing or invalid token.")
	}

	now := time.Now().UTC()
	expiry := now.AddDate(0, 0, configs.ReservationExpiryDays)
	expiryDate := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)

	var created model.ReservationModel

	for attempt := 0; attempt < queueRetries; attempt++ {
		tx := ctl.DB.WithContext(c.UserContext()).Begin()
		if tx.Error != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
		}

		var user userModel.UserModel
		if err := tx.Where("id = ? AND is_active = ?", cu.UserID, true).Take(&user).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.JsonError(c, fiber.StatusNotFound, "user_not_found", "User not found.")
			}
			return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
		}

		var book bookModel.BookModel
		if err := tx.Take(&book, "id = ?", *req.BookID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.JsonError(c, fiber.StatusNotFound, "book_not_found", "Book not found.")
			}
			return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
		}

		var existing model.ReservationModel
		err := tx.Where("book_id = ? AND user_id = ? AND status IN ?",
			book.ID, cu.UserID, []string{model.StatusPending, model.StatusReady}).
			Take(&existing).Error
		if err == nil {
			tx.Rollback()
			return helper.JsonError(c, fiber.StatusConflict, "reservation_exists",
				"You already have a reservation for this book.")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			tx.Rollback()
			return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
		}

		// Lock the book's reservation rows so MAX(queue_number) cannot
		// move under us. A book with no rows yet takes no lock; the
		// unique index plus the retry loop covers that window.
		var lockRows []model.ReservationModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("book_id = ?", book.ID).Find(&lockRows).Error; err != nil {
			tx.Rollback()
			return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
		}

		var nextQueue int
		if err := tx.Model(&model.ReservationModel{}).
			Where("book_id = ?", book.ID).
			Select("COALESCE(MAX(queue_number), 0) + 1").
			Scan(&nextQueue).Error; err != nil {
			tx.Rollback()
			return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
		}

		created = model.ReservationModel{
			BookID:          book.ID,
			UserID:          cu.UserID,
			QueueNumber:     nextQueue,
			ReservationDate: now,
			ExpiryDate:      datatypes.Date(expiryDate),
			Status:          model.StatusPending,
		}
		if err := tx.Create(&created).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
		}

		if err := tx.Commit().Error; err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
		}
		return helper.JsonCreated(c, dto.ToReservationResponse(&created))
	}

	return helper.JsonError(c, fiber.StatusConflict, "reservation_exists",
		"Could not reserve this book, please try again.")
}

// UpdateStatus sets a reservation's status. Transitions are not
// validated against the current state, so an admin can also pull a
// reservation back out of a terminal status.
func (ctl *ReservationController) UpdateStatus(c *fiber.Ctx) error {
	resID, ok, err := helper.ParamID(c, "id")
	if !ok {
		return err
	}

	var req dto.UpdateReservationStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, helper.ErrMissingFields, "Invalid request body.")
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if _, valid := model.ValidStatuses[status]; !valid {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid_status",
			"status must be one of pending, ready, expired, fulfilled.")
	}

	res := ctl.DB.WithContext(c.UserContext()).
		Model(&model.ReservationModel{}).
		Where("id = ?", resID).
		Update("status", status)
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "reservation_not_found", "Reservation not found.")
	}

	var reservation model.ReservationModel
	if err := ctl.DB.Take(&reservation, "id = ?", resID).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}
	return helper.JsonOK(c, dto.ToReservationResponse(&reservation))
}

// CancelReservation expires a reservation. Owner or admin; cancelling an
// already-expired reservation succeeds and stays expired.
func (ctl *ReservationController) CancelReservation(c *fiber.Ctx) error {
	resID, ok, err := helper.ParamID(c, "id")
	if !ok {
		return err
	}

	cu, ok := authMiddleware.CurrentUser(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrUnauthorized, "Missing or invalid token.")
	}

	var reservation model.ReservationModel
	if err := ctl.DB.Take(&reservation, "id = ?", resID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "reservation_not_found", "Reservation not found.")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}

	if !cu.IsAdmin() && reservation.UserID != cu.UserID {
		return helper.JsonError(c, fiber.StatusForbidden, helper.ErrForbidden,
			"You can only cancel your own reservations.")
	}

	if err := ctl.DB.Model(&reservation).Update("status", model.StatusExpired).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}

	reservation.Status = model.StatusExpired
	return helper.JsonOK(c, dto.ToReservationResponse(&reservation))
}

// BulkExpire expires every pending or ready reservation whose
// expiry_date has passed, in one statement.
func (ctl *ReservationController) BulkExpire(c *fiber.Ctx) error {
	res := ctl.DB.WithContext(c.UserContext()).
		Model(&model.ReservationModel{}).
		Where("status IN ? AND expiry_date < CURRENT_DATE",
			[]string{model.StatusPending, model.StatusReady}).
		Update("status", model.StatusExpired)
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}

	return helper.JsonOK(c, fiber.Map{"expired_count": res.RowsAffected})
}

// ListForUser lists a user's reservations, newest first. Self or admin.
func (ctl *ReservationController) ListForUser(c *fiber.Ctx) error {
	userID, ok, err := helper.ParamID(c, "id")
	if !ok {
		return err
	}

	cu, ok := authMiddleware.CurrentUser(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrUnauthorized, "Missing or invalid token.")
	}
	if !cu.IsAdmin() && cu.UserID != userID {
		return helper.JsonError(c, fiber.StatusForbidden, helper.ErrForbidden,
			"You can only list your own reservations.")
	}

	q := ctl.DB.Where("user_id = ?", userID)

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := strings.ToLower(raw)
		if status != "all" {
			if _, valid := model.ValidStatuses[status]; !valid {
				return helper.JsonError(c, fiber.StatusBadRequest, "invalid_status",
					"status must be one of pending, ready, expired, fulfilled, all.")
			}
			q = q.Where("status = ?", status)
		}
	}

	var reservations []model.ReservationModel
	if err := q.Order("reservation_date DESC").Find(&reservations).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}

	result := make([]dto.ReservationResponse, 0, len(reservations))
	for i := range reservations {
		result = append(result, dto.ToReservationResponse(&reservations[i]))
	}
	return helper.JsonOK(c, result)
}

// ListForBook lists a book's queue in queue order. Admin only.
func (ctl *ReservationController) ListForBook(c *fiber.Ctx) error {
	bookID, ok, err := helper.ParamID(c, "id")
	if !ok {
		return err
	}

	var reservations []model.ReservationModel
	if err := ctl.DB.Where("book_id = ?", bookID).
		Order("queue_number ASC").
		Find(&reservations).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}

	result := make([]dto.ReservationResponse, 0, len(reservations))
	for i := range reservations {
		result = append(result, dto.ToReservationResponse(&reservations[i]))
	}
	return helper.JsonOK(c, result)
}
