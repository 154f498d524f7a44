package dto

import (
	"time"

	"library_backend/internals/features/users/user/model"
	helper "library_backend/internals/helpers"
)

type UserResponse struct {
	UserID      uint    `json:"user_id"`
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	DateOfBirth *string `json:"date_of_birth"`
	LibraryID   *uint   `json:"library_id"`
	Role        string  `json:"role"`
}

type UpdateUserRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Address     *string `json:"address" validate:"omitempty,min=1,max=255"`
	DateOfBirth *string `json:"date_of_birth"`
}

func ToUserResponse(u *model.UserModel) UserResponse {
	resp := UserResponse{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Address:   u.Address,
		LibraryID: u.LibraryID,
		Role:      u.Role,
	}
	if dob := time.Time(u.DateOfBirth); !dob.IsZero() {
		s := helper.FormatDate(dob)
		resp.DateOfBirth = &s
	}
	return resp
}
