package dto

import (
	"time"

	"library_backend/internals/features/library/reservations/model"
	helper "library_backend/internals/helpers"
)

type CreateReservationRequest struct {
	BookID *uint `json:"book_id"`
}

type UpdateReservationStatusRequest struct {
	Status string `json:"status"`
}

type ReservationResponse struct {
	ReservationID   uint   `json:"reservation_id"`
	BookID          uint   `json:"book_id"`
	UserID          uint   `json:"user_id"`
	QueueNumber     int    `json:"queue_number"`
	ReservationDate string `json:"reservation_date"`
	ExpiryDate      string `json:"expiry_date"`
	Status          string `json:"status"`
}

func ToReservationResponse(r *model.ReservationModel) ReservationResponse {
	return ReservationResponse{
		ReservationID:   r.ID,
		BookID:          r.BookID,
		UserID:          r.UserID,
		QueueNumber:     r.QueueNumber,
		ReservationDate: r.ReservationDate.UTC().Format(time.RFC3339),
		ExpiryDate:      helper.FormatDate(time.Time(r.ExpiryDate)),
		Status:          r.Status,
	}
}
