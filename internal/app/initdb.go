package app

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/haider-deku/3d-marketplace/internal/domain"
	"github.com/haider-deku/3d-marketplace/pkg/common"
)

const superUsername = "admin"

// checkSuper makes sure the default admin account exists and has a password.
func (a *Application) checkSuper() {
	password := common.IfEmptyStr(a.appConfig.System.AdminPassword, "marketplace")
	hashedPassword, err := common.HashPassword(password, a.appConfig.Commerce.BcryptCost)
	if err != nil {
		zap.L().Error("failed to hash default admin password", zap.Error(err))
		return
	}

	var admin domain.Admin
	err = a.gormDB.Where("username = ?", superUsername).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		now := time.Now()
		if err := a.gormDB.Create(&domain.Admin{
			ID:        common.UUIDint64(),
			Username:  superUsername,
			Password:  hashedPassword,
			CreatedAt: now,
			UpdatedAt: now,
		}).Error; err != nil {
			zap.L().Error("failed to create default admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query default admin", zap.Error(err))
		return
	}

	if strings.TrimSpace(admin.Password) != "" {
		return
	}
	if err := a.gormDB.Model(&domain.Admin{}).Where("id = ?", admin.ID).Updates(map[string]interface{}{
		"password":   hashedPassword,
		"updated_at": time.Now(),
	}).Error; err != nil {
		zap.L().Error("failed to repair default admin account", zap.Error(err))
		return
	}
	zap.L().Warn("repaired default admin account", zap.String("username", superUsername))
}
