package controller

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookModel "library_backend/internals/features/library/books/model"
)

// pickAvailableItem selects and locks exactly one free copy of a book,
// inside the caller's open write transaction.
//
//   - A copy is free when no loan row with return_date IS NULL points at it.
//   - libraryID, when set, restricts copies to that branch.
//   - Lowest item id wins, so allocation order is reproducible.
//   - FOR UPDATE SKIP LOCKED excludes rows locked by concurrent
//     transactions instead of waiting on them: under contention each
//     transaction either gets a distinct item immediately or learns
//     immediately that none is free.
//
// Returns gorm.ErrRecordNotFound when no free copy remains. Never
// commits or rolls back; the lock lives until the caller's transaction
// ends.
func pickAvailableItem(tx *gorm.DB, bookID uint, libraryID *uint) (*bookModel.ItemModel, error) {
	q := tx.Model(&bookModel.ItemModel{}).
		Where("items.book_id = ?", bookID).
		Where("NOT EXISTS (SELECT 1 FROM loans l WHERE l.item_id = items.id AND l.return_date IS NULL)")
	if libraryID != nil {
		q = q.Where("items.library_id = ?", *libraryID)
	}

	var item bookModel.ItemModel
	if err := q.Order("items.id ASC").
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Take(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}
