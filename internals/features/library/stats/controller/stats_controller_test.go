package controller_test

import (
	"net/http"
	"testing"
	"time"

	"gorm.io/datatypes"

	loanModel "library_backend/internals/features/library/loans/model"
	resModel "library_backend/internals/features/library/reservations/model"
	"library_backend/internals/testutil"
)

func TestGetStats(t *testing.T) {
	db := testutil.NewTestDB(t)
	app := testutil.NewApp(t, db)

	library := testutil.CreateLibrary(t, db, "Central")
	member := testutil.CreateMember(t, db, "m@example.com", &library.ID)
	inactive := testutil.CreateMember(t, db, "gone@example.com", &library.ID)
	admin := testutil.CreateAdmin(t, db, "a@example.com", &library.ID)
	if err := db.Model(inactive).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	book := testutil.CreateBook(t, db, "Foundation", "Asimov")
	items := testutil.CreateItems(t, db, book.ID, library.ID, 2)

	now := time.Now().UTC()
	open := loanModel.LoanModel{
		ItemID: items[0].ID, UserID: member.ID,
		LoanDate: now, DueDate: datatypes.Date(now.AddDate(0, 0, 7)),
	}
	overdue := loanModel.LoanModel{
		ItemID: items[1].ID, UserID: member.ID,
		LoanDate: now, DueDate: datatypes.Date(now.AddDate(0, 0, -2)),
	}
	for _, l := range []*loanModel.LoanModel{&open, &overdue} {
		if err := db.Create(l).Error; err != nil {
			t.Fatalf("loan: %v", err)
		}
	}

	res := resModel.ReservationModel{
		BookID: book.ID, UserID: member.ID, QueueNumber: 1,
		ReservationDate: now, ExpiryDate: datatypes.Date(now.AddDate(0, 0, 7)),
		Status: resModel.StatusPending,
	}
	if err := db.Create(&res).Error; err != nil {
		t.Fatalf("reservation: %v", err)
	}

	r := testutil.Get(t, app, "/api/admin/stats", testutil.Token(t, member))
	testutil.RequireStatus(t, r, http.StatusForbidden)

	r = testutil.Get(t, app, "/api/admin/stats", testutil.Token(t, admin))
	testutil.RequireStatus(t, r, http.StatusOK)

	want := map[string]float64{
		"total_users":        3,
		"active_users":       2,
		"total_books":        1,
		"total_items":        2,
		"active_loans":       2,
		"overdue_loans":      1,
		"total_reservations": 1,
	}
	for key, expect := range want {
		if got := r.Body[key].(float64); got != expect {
			t.Fatalf("%s = %v, want %v", key, got, expect)
		}
	}
}
