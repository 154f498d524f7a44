package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusPending   = "pending"
	StatusReady     = "ready"
	StatusExpired   = "expired"
	StatusFulfilled = "fulfilled"
)

var ValidStatuses = map[string]struct{}{
	StatusPending:   {},
	StatusReady:     {},
	StatusExpired:   {},
	StatusFulfilled: {},
}

// ReservationModel queues one user for one book. queue_number is 1-based
// per book; uniqueness of (book_id, queue_number) is guaranteed by an
// index, assignment is serialized by a book-scoped row lock. Gaps may
// appear after cancellations; the queue is never compacted.
type ReservationModel struct {
	ID              uint           `gorm:"primaryKey" json:"reservation_id"`
	BookID          uint           `gorm:"not null;index:idx_reservations_book_queue,unique" json:"book_id"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	QueueNumber     int            `gorm:"not null;index:idx_reservations_book_queue,unique" json:"queue_number"`
	ReservationDate time.Time      `gorm:"not null" json:"reservation_date"`
	ExpiryDate      datatypes.Date `gorm:"type:date" json:"-"`
	Status          string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
}

func (ReservationModel) TableName() string {
	return "reservations"
}
