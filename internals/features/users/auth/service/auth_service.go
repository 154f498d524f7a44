package service

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"library_backend/internals/configs"
	"library_backend/internals/constants"
	authModel "library_backend/internals/features/users/auth/model"
	"library_backend/internals/features/users/auth/loginlimit"
	userModel "library_backend/internals/features/users/user/model"
	helper "library_backend/internals/helpers"
	authmw "library_backend/internals/middlewares/auth"
)

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	DateOfBirth string `json:"date_of_birth"`
}

// ========================== REGISTER ==========================
func Register(db *gorm.DB, c *fiber.Ctx) error {
	var input registerRequest
	if err := c.BodyParser(&input); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, helper.ErrMissingFields, "Invalid request body.")
	}

	var missing []string
	for field, v := range map[string]string{
		"email":         input.Email,
		"password":      input.Password,
		"name":          input.Name,
		"address":       input.Address,
		"date_of_birth": input.DateOfBirth,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, helper.ErrMissingFields,
			"Missing required fields: "+strings.Join(missing, ", ")+".")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	dob, err := helper.ParseDate(input.DateOfBirth)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid_date_of_birth",
			"date_of_birth must be in YYYY-MM-DD format.")
	}

	// Policy check before hashing.
	if ok, violations := IsStrongPassword(input.Password); !ok {
		return helper.JsonErrorMeta(c, fiber.StatusBadRequest, "weak_password",
			"Password too weak. Rules: min 8 chars, must include a letter and a digit.",
			fiber.Map{
				"rules":      []string{"min_length_8", "must_include_letter", "must_include_digit"},
				"violations": violations,
			})
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Failed to hash password.")
	}

	libraryID := uint(configs.DefaultLibraryID)
	user := userModel.UserModel{
		LibraryID:    &libraryID,
		Name:         strings.TrimSpace(input.Name),
		Address:      strings.TrimSpace(input.Address),
		DateOfBirth:  datatypes.Date(dob),
		Email:        email,
		PasswordHash: hash,
		Role:         constants.RoleMember,
		IsActive:     true,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var existing userModel.UserModel
		if err := tx.Where("LOWER(email) = ?", email).First(&existing).Error; err == nil {
			return gorm.ErrDuplicatedKey
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return helper.JsonError(c, fiber.StatusConflict, "email_exists",
				"A user with this email already exists.")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError,
			"Database error occurred during registration.")
	}

	return helper.JsonCreated(c, fiber.Map{
		"user_id": user.ID,
		"email":   user.Email,
		"name":    user.Name,
	})
}

// ========================== LOGIN ==========================
func Login(db *gorm.DB, limiter loginlimit.Limiter, c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "missing_credentials", "Email and password are required.")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "missing_credentials", "Email and password are required.")
	}

	blocked, retryAfter, remaining := limiter.Check(c.IP(), email)
	if blocked {
		return helper.JsonErrorMeta(c, fiber.StatusTooManyRequests, "too_many_attempts",
			"Too many login attempts. Try again later.", fiber.Map{"retry_after": retryAfter})
	}

	var user userModel.UserModel
	err := db.Where("LOWER(email) = ? AND is_active = ?", email, true).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError,
			"Database error occurred during login.")
	}

	if errors.Is(err, gorm.ErrRecordNotFound) || !VerifyPassword(input.Password, user.PasswordHash) {
		limiter.RecordFailure(c.IP(), email)
		left := remaining - 1
		if left < 0 {
			left = 0
		}
		return helper.JsonErrorMeta(c, fiber.StatusUnauthorized, helper.ErrInvalidCredentials,
			"Invalid email or password.", fiber.Map{"remaining_attempts": left})
	}

	limiter.Reset(c.IP(), email)

	accessToken, err := CreateAccessToken(&user)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Failed to issue token.")
	}
	refreshToken, err := CreateRefreshToken(&user)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Failed to issue token.")
	}

	return helper.JsonOK(c, fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user": fiber.Map{
			"user_id":    user.ID,
			"email":      user.Email,
			"name":       user.Name,
			"role":       user.Role,
			"library_id": user.LibraryID,
		},
	})
}

// ========================== REFRESH ==========================
func RefreshToken(db *gorm.DB, c *fiber.Ctx) error {
	authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	raw := ""
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		raw = strings.TrimSpace(authz[7:])
	}
	if raw == "" {
		return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrUnauthorized, "Missing or invalid token.")
	}

	claims, err := authmw.ParseToken(raw, configs.JWTRefreshSecret)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrUnauthorized, "Missing or invalid token.")
	}
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrUnauthorized, "Refresh token required.")
	}

	sub, _ := claims["sub"].(string)
	var user userModel.UserModel
	if err := db.Where("id = ? AND is_active = ?", sub, true).First(&user).Error; err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrUnauthorized, "Missing or invalid token.")
	}

	accessToken, err := CreateAccessToken(&user)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Failed to issue token.")
	}
	return helper.JsonOK(c, fiber.Map{"access_token": accessToken})
}

// ========================== LOGOUT ==========================
// Logout revokes the current access token by persisting it in the
// blacklist until its natural expiry; the sweeper prunes it afterwards.
func Logout(db *gorm.DB, c *fiber.Ctx) error {
	raw, _ := c.Locals("raw_token").(string)
	if raw == "" {
		return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrUnauthorized, "Missing or invalid token.")
	}

	expiredAt := time.Now().Add(AccessTokenTTL)
	if claims, err := authmw.ParseToken(raw, configs.JWTSecret); err == nil {
		if exp, ok := claims["exp"].(float64); ok {
			expiredAt = time.Unix(int64(exp), 0)
		}
	}

	entry := authModel.TokenBlacklist{Token: raw, ExpiredAt: expiredAt}
	if err := db.Create(&entry).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}

	return helper.JsonOK(c, fiber.Map{"status": "ok"})
}

// ========================== ME ==========================
func Me(c *fiber.Ctx) error {
	cu, ok := authmw.CurrentUser(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrUnauthorized, "Missing or invalid token.")
	}
	return helper.JsonOK(c, fiber.Map{
		"user_id":    cu.UserID,
		"role":       cu.Role,
		"library_id": cu.LibraryID,
	})
}

// ========================== CHANGE PASSWORD ==========================
func ChangePassword(db *gorm.DB, c *fiber.Ctx) error {
	var input struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&input); err != nil || input.OldPassword == "" || input.NewPassword == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, helper.ErrMissingFields,
			"old_password and new_password are required.")
	}

	cu, ok := authmw.CurrentUser(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrUnauthorized, "Missing or invalid token.")
	}

	var user userModel.UserModel
	if err := db.Where("id = ? AND is_active = ?", cu.UserID, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "user_not_found", "User not found or inactive.")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}

	if !VerifyPassword(input.OldPassword, user.PasswordHash) {
		return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrInvalidCredentials, "Old password is incorrect.")
	}

	if ok, violations := IsStrongPassword(input.NewPassword); !ok {
		return helper.JsonErrorMeta(c, fiber.StatusBadRequest, "weak_password",
			"New password too weak. Rules: min 8 chars, must include a letter and a digit.",
			fiber.Map{"violations": violations})
	}

	hash, err := HashPassword(input.NewPassword)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Failed to hash password.")
	}
	if err := db.Model(&userModel.UserModel{}).Where("id = ?", user.ID).
		Update("password_hash", hash).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}

	return helper.JsonOK(c, fiber.Map{"status": "ok"})
}
