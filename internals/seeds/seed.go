package seeds

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"library_backend/internals/configs"
	"library_backend/internals/constants"
	bookModel "library_backend/internals/features/library/books/model"
	authService "library_backend/internals/features/users/auth/service"
	userModel "library_backend/internals/features/users/user/model"
)

// Run makes sure the default library exists and, when ADMIN_EMAIL and
// ADMIN_PASSWORD are set, that an active admin account exists. It is
// safe to call on every boot.
func Run(db *gorm.DB) error {
	if err := seedDefaultLibrary(db); err != nil {
		return err
	}
	return seedAdmin(db)
}

func seedDefaultLibrary(db *gorm.DB) error {
	var lib bookModel.LibraryModel
	err := db.Take(&lib, "id = ?", configs.DefaultLibraryID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	lib = bookModel.LibraryModel{
		ID:   uint(configs.DefaultLibraryID),
		Name: configs.GetEnv("DEFAULT_LIBRARY_NAME", "Main Library"),
	}
	if err := db.Create(&lib).Error; err != nil {
		return err
	}
	log.Printf("[SEED] created default library id=%d", lib.ID)
	return nil
}

func seedAdmin(db *gorm.DB) error {
	email := configs.GetEnv("ADMIN_EMAIL")
	password := configs.GetEnv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	var existing userModel.UserModel
	err := db.Where("LOWER(email) = LOWER(?)", email).Take(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := authService.HashPassword(password)
	if err != nil {
		return err
	}

	libID := uint(configs.DefaultLibraryID)
	admin := userModel.UserModel{
		Name:         configs.GetEnv("ADMIN_NAME", "Administrator"),
		Email:        email,
		PasswordHash: hash,
		Role:         constants.RoleAdmin,
		LibraryID:    &libID,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("[SEED] created admin user id=%d", admin.ID)
	return nil
}
