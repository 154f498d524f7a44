// Package testutil wires an in-memory database and a fully routed app
// so feature tests can drive the real HTTP surface.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"library_backend/internals/configs"
	"library_backend/internals/constants"
	database "library_backend/internals/databases"
	bookModel "library_backend/internals/features/library/books/model"
	authService "library_backend/internals/features/users/auth/service"
	userModel "library_backend/internals/features/users/user/model"
	"library_backend/internals/route"
)

var dbSeq atomic.Uint64

func init() {
	configs.JWTSecret = "test-access-secret"
	configs.JWTRefreshSecret = "test-refresh-secret"
	configs.DefaultLoanDays = 14
	configs.ReservationExpiryDays = 7
	configs.DefaultLibraryID = 1
	configs.LoginRateLimitAttempts = 5
	configs.LoginRateLimitWindow = 15 * time.Minute
}

// NewTestDB opens a fresh in-memory sqlite database with the full schema.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// NewApp builds a fiber app with all routes mounted against db.
func NewApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
	})
	route.SetupRoutes(app, db)
	return app
}

// CreateLibrary inserts a library row.
func CreateLibrary(t *testing.T, db *gorm.DB, name string) *bookModel.LibraryModel {
	t.Helper()
	lib := bookModel.LibraryModel{Name: name}
	if err := db.Create(&lib).Error; err != nil {
		t.Fatalf("create library: %v", err)
	}
	return &lib
}

// CreateUser inserts an active user with the given role and library and
// password "Password1".
func CreateUser(t *testing.T, db *gorm.DB, email, role string, libraryID *uint) *userModel.UserModel {
	t.Helper()

	hash, err := authService.HashPassword("Password1")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := userModel.UserModel{
		Name:         "Test " + role,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		LibraryID:    libraryID,
		IsActive:     true,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &u
}

// CreateMember is CreateUser with the member role.
func CreateMember(t *testing.T, db *gorm.DB, email string, libraryID *uint) *userModel.UserModel {
	return CreateUser(t, db, email, constants.RoleMember, libraryID)
}

// CreateAdmin is CreateUser with the admin role.
func CreateAdmin(t *testing.T, db *gorm.DB, email string, libraryID *uint) *userModel.UserModel {
	return CreateUser(t, db, email, constants.RoleAdmin, libraryID)
}

// CreateBook inserts a catalog entry.
func CreateBook(t *testing.T, db *gorm.DB, title, author string) *bookModel.BookModel {
	t.Helper()
	b := bookModel.BookModel{Title: title, Author: author, Category: "fiction"}
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("create book: %v", err)
	}
	return &b
}

// CreateItems inserts n copies of a book in a library and returns them
// in id order.
func CreateItems(t *testing.T, db *gorm.DB, bookID, libraryID uint, n int) []bookModel.ItemModel {
	t.Helper()
	items := make([]bookModel.ItemModel, 0, n)
	for i := 0; i < n; i++ {
		item := bookModel.ItemModel{BookID: bookID, LibraryID: libraryID}
		if err := db.Create(&item).Error; err != nil {
			t.Fatalf("create item: %v", err)
		}
		items = append(items, item)
	}
	return items
}

// Token signs a real access token for u.
func Token(t *testing.T, u *userModel.UserModel) string {
	t.Helper()
	tok, err := authService.CreateAccessToken(u)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

// Response is a decoded API reply.
type Response struct {
	Status int
	Body   map[string]interface{}
	List   []interface{}
	Raw    []byte
}

// ErrorCode returns body["error"] or "".
func (r Response) ErrorCode() string {
	code, _ := r.Body["error"].(string)
	return code
}

// DoJSON sends a JSON request through the app. token may be empty;
// payload may be nil. Both object and array replies are decoded.
func DoJSON(t *testing.T, app *fiber.App, method, path, token string, payload interface{}) Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	out := Response{Status: resp.StatusCode, Raw: raw}
	if len(raw) == 0 {
		return out
	}
	switch raw[0] {
	case '{':
		if err := json.Unmarshal(raw, &out.Body); err != nil {
			t.Fatalf("decode object %s %s: %v (%s)", method, path, err, raw)
		}
	case '[':
		if err := json.Unmarshal(raw, &out.List); err != nil {
			t.Fatalf("decode array %s %s: %v (%s)", method, path, err, raw)
		}
	}
	return out
}

// Get is DoJSON with GET and no payload.
func Get(t *testing.T, app *fiber.App, path, token string) Response {
	t.Helper()
	return DoJSON(t, app, http.MethodGet, path, token, nil)
}

// Post is DoJSON with POST.
func Post(t *testing.T, app *fiber.App, path, token string, payload interface{}) Response {
	t.Helper()
	return DoJSON(t, app, http.MethodPost, path, token, payload)
}

// RequireStatus fails the test when the status differs, printing the body.
func RequireStatus(t *testing.T, r Response, want int) {
	t.Helper()
	if r.Status != want {
		t.Fatalf("status = %d, want %d (body: %s)", r.Status, want, r.Raw)
	}
}

// RequireError asserts a status and error code together.
func RequireError(t *testing.T, r Response, status int, code string) {
	t.Helper()
	RequireStatus(t, r, status)
	if got := r.ErrorCode(); got != code {
		t.Fatalf("error code = %q, want %q (body: %s)", got, code, r.Raw)
	}
}
