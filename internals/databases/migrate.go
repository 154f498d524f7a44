package database

import (
	"gorm.io/gorm"

	authModel "library_backend/internals/features/users/auth/model"
	bookModel "library_backend/internals/features/library/books/model"
	loanModel "library_backend/internals/features/library/loans/model"
	resvModel "library_backend/internals/features/library/reservations/model"
	userModel "library_backend/internals/features/users/user/model"
)

// Migrate creates the schema. The partial unique index on open loans is
// defense in depth for the one-open-loan-per-item invariant: the allocator
// enforces it procedurally, the index catches residual races.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&bookModel.LibraryModel{},
		&bookModel.BookModel{},
		&bookModel.ItemModel{},
		&userModel.UserModel{},
		&loanModel.LoanModel{},
		&resvModel.ReservationModel{},
		&authModel.TokenBlacklist{},
	); err != nil {
		return err
	}

	// Partial index syntax is shared by postgres and sqlite.
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_loans_open_item ON loans (item_id) WHERE return_date IS NULL`,
	).Error
}
