package controller

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"library_backend/internals/features/users/user/dto"
	"library_backend/internals/features/users/user/model"
	helper "library_backend/internals/helpers"
	authMiddleware "library_backend/internals/middlewares/auth"
)

var validate = validator.New()

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// GetUser returns profile data. Non-admins may only view themselves.
func (ctl *UserController) GetUser(c *fiber.Ctx) error {
	userID, ok, err := helper.ParamID(c, "id")
	if !ok {
		return err
	}

	cu, ok := authMiddleware.CurrentUser(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrUnauthorized, "Missing or invalid token.")
	}
	if !cu.IsAdmin() && cu.UserID != userID {
		return helper.JsonError(c, fiber.StatusForbidden, helper.ErrForbidden, "You can only view your own profile.")
	}

	var user model.UserModel
	if err := ctl.DB.Where("id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "user_not_found", "User not found or not active.")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}

	return helper.JsonOK(c, dto.ToUserResponse(&user))
}

// UpdateUser applies a partial profile update (name, address,
// date_of_birth). Non-admins may only update themselves.
func (ctl *UserController) UpdateUser(c *fiber.Ctx) error {
	userID, ok, err := helper.ParamID(c, "id")
	if !ok {
		return err
	}

	cu, ok := authMiddleware.CurrentUser(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusUnauthorized, helper.ErrUnauthorized, "Missing or invalid token.")
	}
	if !cu.IsAdmin() && cu.UserID != userID {
		return helper.JsonError(c, fiber.StatusForbidden, helper.ErrForbidden, "You can only update your own profile.")
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, helper.ErrMissingFields, "Invalid request body.")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	fields := map[string]any{}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil && strings.TrimSpace(*req.Address) != "" {
		fields["address"] = strings.TrimSpace(*req.Address)
	}
	if req.DateOfBirth != nil {
		dob, err := helper.ParseDate(*req.DateOfBirth)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid_date_of_birth",
				"date_of_birth must be in YYYY-MM-DD format.")
		}
		fields["date_of_birth"] = datatypes.Date(dob)
	}
	if len(fields) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, helper.ErrNoFieldsToUpdate, "No updatable fields provided.")
	}

	res := ctl.DB.Model(&model.UserModel{}).
		Where("id = ? AND is_active = ?", userID, true).
		Updates(fields)
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "user_not_found", "User not found or not active.")
	}

	var user model.UserModel
	if err := ctl.DB.First(&user, userID).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}
	return helper.JsonOK(c, dto.ToUserResponse(&user))
}

// DeactivateUser soft-deactivates an account (admin only). Users are
// never hard-deleted.
func (ctl *UserController) DeactivateUser(c *fiber.Ctx) error {
	userID, ok, err := helper.ParamID(c, "id")
	if !ok {
		return err
	}

	res := ctl.DB.Model(&model.UserModel{}).
		Where("id = ? AND is_active = ?", userID, true).
		Update("is_active", false)
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "user_not_found", "User not found or not active.")
	}

	return helper.JsonOK(c, fiber.Map{"user_id": userID, "is_active": false})
}
