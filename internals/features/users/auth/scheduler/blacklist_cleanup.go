package scheduler

import (
	"log"
	"time"

	"gorm.io/gorm"

	"library_backend/internals/features/users/auth/model"
)

// StartBlacklistCleanupScheduler prunes blacklisted tokens that have
// passed their natural expiry. Runs once a day in the background.
func StartBlacklistCleanupScheduler(db *gorm.DB) {
	go func() {
		for {
			log.Println("[CLEANUP] Sweeping token_blacklist...")

			res := db.Where("expired_at < ?", time.Now()).Delete(&model.TokenBlacklist{})
			if res.Error != nil {
				log.Printf("[CLEANUP ERROR] failed to delete expired tokens: %v", res.Error)
			} else if res.RowsAffected > 0 {
				log.Printf("[CLEANUP] %d expired tokens removed", res.RowsAffected)
			}

			time.Sleep(24 * time.Hour)
		}
	}()
}
