package service_test

import (
	"net/http"
	"testing"

	"library_backend/internals/configs"
	"library_backend/internals/testutil"
)

func registerBody(email string) map[string]interface{} {
	return map[string]interface{}{
		"email":         email,
		"password":      "Password1",
		"name":          "Ada Lovelace",
		"address":       "12 Analytical St",
		"date_of_birth": "1990-12-10",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := testutil.NewTestDB(t)
	app := testutil.NewApp(t, db)

	r := testutil.Post(t, app, "/api/register", "", registerBody("ada@example.com"))
	testutil.RequireStatus(t, r, http.StatusCreated)
	if r.Body["email"] != "ada@example.com" {
		t.Fatalf("email = %v", r.Body["email"])
	}

	// Same email again, case-insensitive.
	r = testutil.Post(t, app, "/api/register", "", registerBody("ADA@example.com"))
	testutil.RequireError(t, r, http.StatusConflict, "email_exists")

	r = testutil.Post(t, app, "/api/login", "", map[string]interface{}{
		"email": "Ada@Example.com", "password": "Password1",
	})
	testutil.RequireStatus(t, r, http.StatusOK)
	if r.Body["access_token"] == nil || r.Body["refresh_token"] == nil {
		t.Fatalf("missing tokens in login response: %s", r.Raw)
	}
	user := r.Body["user"].(map[string]interface{})
	if user["role"] != "member" {
		t.Fatalf("role = %v, want member", user["role"])
	}

	// The issued token works against a protected endpoint.
	tok := r.Body["access_token"].(string)
	me := testutil.Get(t, app, "/api/me", tok)
	testutil.RequireStatus(t, me, http.StatusOK)
}

func TestRegisterValidation(t *testing.T) {
	db := testutil.NewTestDB(t)
	app := testutil.NewApp(t, db)

	body := registerBody("bob@example.com")
	delete(body, "address")
	r := testutil.Post(t, app, "/api/register", "", body)
	testutil.RequireError(t, r, http.StatusBadRequest, "missing_fields")

	body = registerBody("bob@example.com")
	body["date_of_birth"] = "10/12/1990"
	r = testutil.Post(t, app, "/api/register", "", body)
	testutil.RequireError(t, r, http.StatusBadRequest, "invalid_date_of_birth")

	body = registerBody("bob@example.com")
	body["password"] = "abcdefgh"
	r = testutil.Post(t, app, "/api/register", "", body)
	testutil.RequireError(t, r, http.StatusBadRequest, "weak_password")
	meta := r.Body["meta"].(map[string]interface{})
	violations := meta["violations"].([]interface{})
	if len(violations) != 1 || violations[0] != "must_include_digit" {
		t.Fatalf("violations = %v", violations)
	}
}

func TestLoginFailuresAndLockout(t *testing.T) {
	db := testutil.NewTestDB(t)
	app := testutil.NewApp(t, db)

	library := testutil.CreateLibrary(t, db, "Central")
	testutil.CreateMember(t, db, "m@example.com", &library.ID)

	bad := map[string]interface{}{"email": "m@example.com", "password": "wrong"}

	for i := 0; i < configs.LoginRateLimitAttempts; i++ {
		r := testutil.Post(t, app, "/api/login", "", bad)
		testutil.RequireError(t, r, http.StatusUnauthorized, "invalid_credentials")
	}

	// Window full: even the correct password is rejected until it expires.
	good := map[string]interface{}{"email": "m@example.com", "password": "Password1"}
	r := testutil.Post(t, app, "/api/login", "", good)
	testutil.RequireError(t, r, http.StatusTooManyRequests, "too_many_attempts")

	// Unknown accounts and deactivated accounts read the same as a wrong
	// password.
	r = testutil.Post(t, app, "/api/login", "", map[string]interface{}{
		"email": "ghost@example.com", "password": "Password1",
	})
	testutil.RequireError(t, r, http.StatusUnauthorized, "invalid_credentials")

	r = testutil.Post(t, app, "/api/login", "", map[string]interface{}{"email": "m@example.com"})
	testutil.RequireError(t, r, http.StatusBadRequest, "missing_credentials")
}

func TestRefreshAndLogout(t *testing.T) {
	db := testutil.NewTestDB(t)
	app := testutil.NewApp(t, db)

	library := testutil.CreateLibrary(t, db, "Central")
	testutil.CreateMember(t, db, "m@example.com", &library.ID)

	login := testutil.Post(t, app, "/api/login", "", map[string]interface{}{
		"email": "m@example.com", "password": "Password1",
	})
	testutil.RequireStatus(t, login, http.StatusOK)
	access := login.Body["access_token"].(string)
	refresh := login.Body["refresh_token"].(string)

	// An access token is not accepted on the refresh endpoint.
	r := testutil.Post(t, app, "/api/token/refresh", access, nil)
	testutil.RequireStatus(t, r, http.StatusUnauthorized)

	r = testutil.Post(t, app, "/api/token/refresh", refresh, nil)
	testutil.RequireStatus(t, r, http.StatusOK)
	if r.Body["access_token"] == nil {
		t.Fatalf("no access_token in refresh response: %s", r.Raw)
	}

	// Logout blacklists the access token; it stops working immediately.
	r = testutil.Post(t, app, "/api/logout", access, nil)
	testutil.RequireStatus(t, r, http.StatusOK)
	r = testutil.Get(t, app, "/api/me", access)
	testutil.RequireStatus(t, r, http.StatusUnauthorized)
}

func TestChangePassword(t *testing.T) {
	db := testutil.NewTestDB(t)
	app := testutil.NewApp(t, db)

	library := testutil.CreateLibrary(t, db, "Central")
	member := testutil.CreateMember(t, db, "m@example.com", &library.ID)
	tok := testutil.Token(t, member)

	r := testutil.Post(t, app, "/api/me/password", tok, map[string]interface{}{
		"old_password": "nope", "new_password": "Password2",
	})
	testutil.RequireError(t, r, http.StatusUnauthorized, "invalid_credentials")

	r = testutil.Post(t, app, "/api/me/password", tok, map[string]interface{}{
		"old_password": "Password1", "new_password": "short1",
	})
	testutil.RequireError(t, r, http.StatusBadRequest, "weak_password")

	r = testutil.Post(t, app, "/api/me/password", tok, map[string]interface{}{
		"old_password": "Password1", "new_password": "Password2",
	})
	testutil.RequireStatus(t, r, http.StatusOK)

	// Old password no longer logs in, the new one does.
	r = testutil.Post(t, app, "/api/login", "", map[string]interface{}{
		"email": "m@example.com", "password": "Password1",
	})
	testutil.RequireStatus(t, r, http.StatusUnauthorized)
	r = testutil.Post(t, app, "/api/login", "", map[string]interface{}{
		"email": "m@example.com", "password": "Password2",
	})
	testutil.RequireStatus(t, r, http.StatusOK)
}
