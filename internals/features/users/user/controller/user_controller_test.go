package controller_test

import (
	"net/http"
	"strconv"
	"testing"

	"library_backend/internals/testutil"
)

func userPath(id uint) string {
	return "/api/users/" + strconv.FormatUint(uint64(id), 10)
}

func TestGetUserVisibility(t *testing.T) {
	db := testutil.NewTestDB(t)
	app := testutil.NewApp(t, db)

	library := testutil.CreateLibrary(t, db, "Central")
	alice := testutil.CreateMember(t, db, "alice@example.com", &library.ID)
	bob := testutil.CreateMember(t, db, "bob@example.com", &library.ID)
	admin := testutil.CreateAdmin(t, db, "admin@example.com", &library.ID)

	aliceTok := testutil.Token(t, alice)

	r := testutil.Get(t, app, userPath(alice.ID), aliceTok)
	testutil.RequireStatus(t, r, http.StatusOK)
	if r.Body["email"] != "alice@example.com" {
		t.Fatalf("email = %v", r.Body["email"])
	}

	// Another member's profile is off limits; admins see everything.
	r = testutil.Get(t, app, userPath(bob.ID), aliceTok)
	testutil.RequireError(t, r, http.StatusForbidden, "forbidden")
	r = testutil.Get(t, app, userPath(bob.ID), testutil.Token(t, admin))
	testutil.RequireStatus(t, r, http.StatusOK)

	// Deactivated accounts read as missing.
	if err := db.Model(bob).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	r = testutil.Get(t, app, userPath(bob.ID), testutil.Token(t, admin))
	testutil.RequireError(t, r, http.StatusNotFound, "user_not_found")

	r = testutil.Get(t, app, "/api/users/abc", aliceTok)
	testutil.RequireError(t, r, http.StatusBadRequest, "invalid_ids")
}

func TestUpdateUserPartial(t *testing.T) {
	db := testutil.NewTestDB(t)
	app := testutil.NewApp(t, db)

	library := testutil.CreateLibrary(t, db, "Central")
	alice := testutil.CreateMember(t, db, "alice@example.com", &library.ID)
	tok := testutil.Token(t, alice)

	r := testutil.DoJSON(t, app, http.MethodPut, userPath(alice.ID), tok,
		map[string]interface{}{"name": "Alice Prime", "date_of_birth": "1991-02-03"})
	testutil.RequireStatus(t, r, http.StatusOK)
	if r.Body["name"] != "Alice Prime" {
		t.Fatalf("name = %v", r.Body["name"])
	}
	if r.Body["date_of_birth"] != "1991-02-03" {
		t.Fatalf("date_of_birth = %v", r.Body["date_of_birth"])
	}

	r = testutil.DoJSON(t, app, http.MethodPut, userPath(alice.ID), tok,
		map[string]interface{}{"date_of_birth": "03.02.1991"})
	testutil.RequireError(t, r, http.StatusBadRequest, "invalid_date_of_birth")

	r = testutil.DoJSON(t, app, http.MethodPut, userPath(alice.ID), tok,
		map[string]interface{}{})
	testutil.RequireError(t, r, http.StatusBadRequest, "no_fields_to_update")
}

func TestDeactivateUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	app := testutil.NewApp(t, db)

	library := testutil.CreateLibrary(t, db, "Central")
	alice := testutil.CreateMember(t, db, "alice@example.com", &library.ID)
	admin := testutil.CreateAdmin(t, db, "admin@example.com", &library.ID)
	adminTok := testutil.Token(t, admin)

	deactivate := userPath(alice.ID) + "/deactivate"

	// Members cannot deactivate anyone, not even themselves.
	r := testutil.Post(t, app, deactivate, testutil.Token(t, alice), nil)
	testutil.RequireStatus(t, r, http.StatusForbidden)

	r = testutil.Post(t, app, deactivate, adminTok, nil)
	testutil.RequireStatus(t, r, http.StatusOK)
	if r.Body["is_active"] != false {
		t.Fatalf("is_active = %v", r.Body["is_active"])
	}

	// Already inactive reads as missing on the second call.
	r = testutil.Post(t, app, deactivate, adminTok, nil)
	testutil.RequireError(t, r, http.StatusNotFound, "user_not_found")

	// The deactivated user's token is useless for data access now.
	r = testutil.Get(t, app, userPath(alice.ID), testutil.Token(t, alice))
	testutil.RequireError(t, r, http.StatusNotFound, "user_not_found")
}
