package infra

import (
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"retailpos/internal/model"
)

// EnsureSeeded creates the default main register and an admin account when
// absent. Idempotent: safe to run on every startup.
func EnsureSeeded(db *gorm.DB) error {
	var reg model.Register
	err := db.Where("is_main = true").First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		reg = model.Register{
			Code:     "MAIN",
			Name:     "Main Register",
			Location: "Front desk",
			IsMain:   true,
			IsActive: true,
		}
		if err := db.Create(&reg).Error; err != nil {
			return err
		}
		log.Info().Str("code", reg.Code).Msg("seed: main register created")
	} else if err != nil {
		return err
	}

	var admin model.User
	err = db.Where("role = ?", model.RoleAdmin).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Default credentials for first login; must be rotated immediately.
		hash, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin = model.User{
			Email:        "admin@localhost",
			Name:         "Administrator",
			PasswordHash: string(hash),
			Role:         model.RoleAdmin,
			IsActive:     true,
		}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}
		log.Warn().Str("email", admin.Email).Msg("seed: default admin created, change the password")
	} else if err != nil {
		return err
	}

	return nil
}
