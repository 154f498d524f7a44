package controller

import (
	"errors"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	database "library_backend/internals/databases"
	bookModel "library_backend/internals/features/library/books/model"
	"library_backend/internals/features/library/loans/model"
)

func allocatorDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:allocdb?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestPickAvailableItem(t *testing.T) {
	db := allocatorDB(t)

	book := bookModel.BookModel{Title: "Ubik", Author: "Dick"}
	if err := db.Create(&book).Error; err != nil {
		t.Fatalf("book: %v", err)
	}
	libA := bookModel.LibraryModel{Name: "A"}
	libB := bookModel.LibraryModel{Name: "B"}
	for _, l := range []*bookModel.LibraryModel{&libA, &libB} {
		if err := db.Create(l).Error; err != nil {
			t.Fatalf("library: %v", err)
		}
	}

	itemA := bookModel.ItemModel{BookID: book.ID, LibraryID: libA.ID}
	itemB := bookModel.ItemModel{BookID: book.ID, LibraryID: libB.ID}
	for _, i := range []*bookModel.ItemModel{&itemA, &itemB} {
		if err := db.Create(i).Error; err != nil {
			t.Fatalf("item: %v", err)
		}
	}

	// Unscoped: lowest item id wins.
	got, err := pickAvailableItem(db, book.ID, nil)
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if got.ID != itemA.ID {
		t.Fatalf("picked %d, want %d", got.ID, itemA.ID)
	}

	// Library scope skips the other branch's copy.
	got, err = pickAvailableItem(db, book.ID, &libB.ID)
	if err != nil {
		t.Fatalf("pick scoped: %v", err)
	}
	if got.ID != itemB.ID {
		t.Fatalf("picked %d, want %d", got.ID, itemB.ID)
	}

	// An open loan removes the copy from the pool...
	now := time.Now().UTC()
	loan := model.LoanModel{
		ItemID: itemA.ID, UserID: 1,
		LoanDate: now, DueDate: datatypes.Date(now.AddDate(0, 0, 14)),
	}
	if err := db.Create(&loan).Error; err != nil {
		t.Fatalf("loan: %v", err)
	}
	got, err = pickAvailableItem(db, book.ID, nil)
	if err != nil {
		t.Fatalf("pick after loan: %v", err)
	}
	if got.ID != itemB.ID {
		t.Fatalf("picked %d, want %d", got.ID, itemB.ID)
	}

	// ... and a closed loan puts it back.
	if err := db.Model(&loan).Update("return_date", now).Error; err != nil {
		t.Fatalf("return: %v", err)
	}
	got, err = pickAvailableItem(db, book.ID, nil)
	if err != nil {
		t.Fatalf("pick after return: %v", err)
	}
	if got.ID != itemA.ID {
		t.Fatalf("picked %d, want %d", got.ID, itemA.ID)
	}

	// Nothing free in a scope reads as not found.
	loan2 := model.LoanModel{
		ItemID: itemB.ID, UserID: 1,
		LoanDate: now, DueDate: datatypes.Date(now.AddDate(0, 0, 14)),
	}
	if err := db.Create(&loan2).Error; err != nil {
		t.Fatalf("loan2: %v", err)
	}
	_, err = pickAvailableItem(db, book.ID, &libB.ID)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}
