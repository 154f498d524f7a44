package model

import (
	"time"

	"gorm.io/datatypes"
)

// LoanModel binds one item to one user for [loan_date, due_date].
// return_date IS NULL means the loan is open. At most one open loan may
// exist per item; the allocator's row lock enforces it procedurally and a
// partial unique index on (item_id) WHERE return_date IS NULL backs it up.
type LoanModel struct {
	ID         uint           `gorm:"primaryKey" json:"loan_id"`
	ItemID     uint           `gorm:"not null;index" json:"item_id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	LoanDate   time.Time      `gorm:"not null" json:"loan_date"`
	DueDate    datatypes.Date `gorm:"type:date;not null" json:"-"`
	ReturnDate *time.Time     `json:"return_date"`
	FinePaid   float64        `gorm:"type:numeric(10,2);not null;default:0" json:"fine_paid"`
}

func (LoanModel) TableName() string {
	return "loans"
}

func (l *LoanModel) IsOpen() bool {
	return l.ReturnDate == nil
}
