package model

import (
	"time"

	"gorm.io/datatypes"

	"library_backend/internals/constants"
)

// UserModel represents the users table. Users are never hard-deleted;
// admins flip is_active instead.
type UserModel struct {
	ID           uint           `gorm:"primaryKey" json:"user_id"`
	LibraryID    *uint          `gorm:"index" json:"library_id"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Address      string         `gorm:"size:255" json:"address"`
	DateOfBirth  datatypes.Date `gorm:"type:date" json:"-"`
	Email        string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"size:255;not null" json:"-"`
	Role         string         `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserModel) TableName() string {
	return "users"
}

func (u *UserModel) IsAdmin() bool {
	return u.Role == constants.RoleAdmin
}
