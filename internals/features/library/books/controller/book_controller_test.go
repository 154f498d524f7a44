package controller_test

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	loanModel "library_backend/internals/features/library/loans/model"
	"library_backend/internals/testutil"
)

func catalog(t *testing.T) (*gorm.DB, uint) {
	t.Helper()
	db := testutil.NewTestDB(t)
	lib := testutil.CreateLibrary(t, db, "Central")
	return db, lib.ID
}

func bookEntry(t *testing.T, r testutil.Response, title string) map[string]interface{} {
	t.Helper()
	for _, raw := range r.List {
		entry := raw.(map[string]interface{})
		if entry["title"] == title {
			return entry
		}
	}
	t.Fatalf("book %q not in list: %s", title, r.Raw)
	return nil
}

func TestListBooksAvailabilityCounts(t *testing.T) {
	db, libID := catalog(t)
	app := testutil.NewApp(t, db)

	member := testutil.CreateMember(t, db, "m@example.com", &libID)

	full := testutil.CreateBook(t, db, "Anathem", "Stephenson")
	testutil.CreateItems(t, db, full.ID, libID, 3)
	testutil.CreateBook(t, db, "Zero Copies", "Nobody")

	// One copy of the first book is out on loan.
	items := []uint{}
	if err := db.Raw("SELECT id FROM items ORDER BY id").Scan(&items).Error; err != nil {
		t.Fatalf("items: %v", err)
	}
	due := time.Now().UTC().AddDate(0, 0, 14)
	loan := loanModel.LoanModel{
		ItemID: items[0], UserID: member.ID,
		LoanDate: time.Now().UTC(), DueDate: datatypes.Date(due),
	}
	if err := db.Create(&loan).Error; err != nil {
		t.Fatalf("loan: %v", err)
	}

	// The catalog is public: no token.
	r := testutil.Get(t, app, "/api/books", "")
	testutil.RequireStatus(t, r, http.StatusOK)
	if len(r.List) != 2 {
		t.Fatalf("list has %d entries, want 2", len(r.List))
	}

	entry := bookEntry(t, r, "Anathem")
	if entry["total_items"].(float64) != 3 || entry["available_items"].(float64) != 2 {
		t.Fatalf("counts = %v/%v, want 3/2", entry["total_items"], entry["available_items"])
	}

	entry = bookEntry(t, r, "Zero Copies")
	if entry["total_items"].(float64) != 0 || entry["available_items"].(float64) != 0 {
		t.Fatalf("bookless counts = %v/%v, want 0/0", entry["total_items"], entry["available_items"])
	}
}

func TestListBooksFilters(t *testing.T) {
	db, libID := catalog(t)
	app := testutil.NewApp(t, db)

	a := testutil.CreateBook(t, db, "The Left Hand of Darkness", "Le Guin")
	testutil.CreateBook(t, db, "Accelerando", "Stross")
	testutil.CreateItems(t, db, a.ID, libID, 1)

	r := testutil.Get(t, app, "/api/books?q=left+hand", "")
	testutil.RequireStatus(t, r, http.StatusOK)
	if len(r.List) != 1 {
		t.Fatalf("title search returned %d, want 1", len(r.List))
	}

	// Author substring, case-insensitive.
	r = testutil.Get(t, app, "/api/books?q=GUIN", "")
	testutil.RequireStatus(t, r, http.StatusOK)
	if len(r.List) != 1 {
		t.Fatalf("author search returned %d, want 1", len(r.List))
	}

	r = testutil.Get(t, app, "/api/books?q=zzzz", "")
	testutil.RequireStatus(t, r, http.StatusOK)
	if len(r.List) != 0 {
		t.Fatalf("no-match search returned %d, want 0", len(r.List))
	}

	r = testutil.Get(t, app, "/api/books?category=FICTION", "")
	testutil.RequireStatus(t, r, http.StatusOK)
	if len(r.List) != 2 {
		t.Fatalf("category filter returned %d, want 2", len(r.List))
	}

	r = testutil.Get(t, app, "/api/books?page=0", "")
	testutil.RequireError(t, r, http.StatusBadRequest, "invalid_pagination")
	r = testutil.Get(t, app, "/api/books?page_size=500", "")
	testutil.RequireError(t, r, http.StatusBadRequest, "invalid_pagination")
	r = testutil.Get(t, app, "/api/books?library_id=abc", "")
	testutil.RequireError(t, r, http.StatusBadRequest, "invalid_library_id")

	// page_size=1 with title ordering: Accelerando sorts first.
	r = testutil.Get(t, app, "/api/books?page_size=1", "")
	testutil.RequireStatus(t, r, http.StatusOK)
	if len(r.List) != 1 || r.List[0].(map[string]interface{})["title"] != "Accelerando" {
		t.Fatalf("first page = %s", r.Raw)
	}
}

func TestGetBook(t *testing.T) {
	db, libID := catalog(t)
	app := testutil.NewApp(t, db)

	b := testutil.CreateBook(t, db, "Hyperion", "Simmons")
	testutil.CreateItems(t, db, b.ID, libID, 2)

	r := testutil.Get(t, app, "/api/books/"+strconv.FormatUint(uint64(b.ID), 10), "")
	testutil.RequireStatus(t, r, http.StatusOK)
	if r.Body["title"] != "Hyperion" || r.Body["total_items"].(float64) != 2 {
		t.Fatalf("body = %s", r.Raw)
	}

	r = testutil.Get(t, app, "/api/books/9999", "")
	testutil.RequireError(t, r, http.StatusNotFound, "book_not_found")
}
