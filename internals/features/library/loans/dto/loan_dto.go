package dto

import (
	"time"

	"library_backend/internals/features/library/loans/model"
	helper "library_backend/internals/helpers"
)

type CreateLoanRequest struct {
	ItemID   *uint `json:"item_id"`
	BookID   *uint `json:"book_id"`
	LoanDays *int  `json:"loan_days"`
}

type ExtendLoanRequest struct {
	ExtraDays *int `json:"extra_days"`
}

type LoanResponse struct {
	LoanID     uint    `json:"loan_id"`
	ItemID     uint    `json:"item_id"`
	BookID     *uint   `json:"book_id,omitempty"`
	UserID     uint    `json:"user_id"`
	LoanDate   string  `json:"loan_date"`
	DueDate    string  `json:"due_date"`
	ReturnDate *string `json:"return_date"`
	FinePaid   float64 `json:"fine_paid"`
	Status     string  `json:"status,omitempty"`
}

func ToLoanResponse(l *model.LoanModel) LoanResponse {
	resp := LoanResponse{
		LoanID:   l.ID,
		ItemID:   l.ItemID,
		UserID:   l.UserID,
		LoanDate: l.LoanDate.UTC().Format(time.RFC3339),
		DueDate:  helper.FormatDate(time.Time(l.DueDate)),
		FinePaid: l.FinePaid,
	}
	if l.ReturnDate != nil {
		s := l.ReturnDate.UTC().Format(time.RFC3339)
		resp.ReturnDate = &s
	}
	return resp
}
