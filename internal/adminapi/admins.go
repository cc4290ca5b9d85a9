package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/haider-deku/3d-marketplace/internal/domain"
	"github.com/haider-deku/3d-marketplace/internal/webserver"
	"github.com/haider-deku/3d-marketplace/pkg/common"
)

type adminPayload struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type adminUpdatePayload struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=30"`
	Password *string `json:"password" validate:"omitempty,min=6,max=128"`
}

// registerAdminRoutes registers admin account routes
func registerAdminRoutes() {
	webserver.ApiGET("/admin", listAdmins)
	webserver.ApiGET("/admin/:id", getAdmin)
	webserver.ApiPOST("/admin", createAdmin)
	webserver.ApiPUT("/admin/:id", updateAdmin)
	webserver.ApiDELETE("/admin/:id", deleteAdmin)
}

func adminTaken(c echo.Context, username string, exceptID int64) (bool, error) {
	var exists int64
	err := GetDB(c).Model(&domain.Admin{}).Where("username = ? AND id != ?", username, exceptID).Count(&exists).Error
	return exists > 0, err
}

func listAdmins(c echo.Context) error {
	var rows []domain.Admin
	if err := GetDB(c).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error fetching admins", err.Error())
	}
	return okList(c, rows, len(rows))
}

func getAdmin(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid admin ID", nil)
	}
	var admin domain.Admin
	if err := GetDB(c).First(&admin, id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "ADMIN_NOT_FOUND", "Admin not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error fetching admin", err.Error())
	}
	return ok(c, admin)
}

func createAdmin(c echo.Context) error {
	var payload adminPayload
	if next, err := bindAndValidate(c, &payload, "admin"); !next {
		return err
	}
	username := strings.TrimSpace(payload.Username)
	if taken, err := adminTaken(c, username, 0); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error creating admin", err.Error())
	} else if taken {
		return fail(c, http.StatusBadRequest, "ADMIN_EXISTS", "Admin with this username already exists", nil)
	}
	hashed, err := common.HashPassword(payload.Password, GetAppContext(c).Config().Commerce.BcryptCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "HASH_ERROR", "Error creating admin", err.Error())
	}
	now := time.Now()
	admin := domain.Admin{ID: common.UUIDint64(), Username: username, Password: hashed, CreatedAt: now, UpdatedAt: now}
	if err := GetDB(c).Create(&admin).Error; err != nil {
		if isDuplicateKey(err) {
			return fail(c, http.StatusBadRequest, "ADMIN_EXISTS", "Admin with this username already exists", nil)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error creating admin", err.Error())
	}
	return created(c, "Admin created successfully", admin)
}

func updateAdmin(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid admin ID", nil)
	}
	var payload adminUpdatePayload
	if next, err := bindAndValidate(c, &payload, "admin"); !next {
		return err
	}

	var admin domain.Admin
	if err := GetDB(c).First(&admin, id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "ADMIN_NOT_FOUND", "Admin not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error updating admin", err.Error())
	}

	if payload.Username != nil {
		username := strings.TrimSpace(*payload.Username)
		if username != admin.Username {
			if taken, err := adminTaken(c, username, id); err != nil {
				return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error updating admin", err.Error())
			} else if taken {
				return fail(c, http.StatusBadRequest, "ADMIN_EXISTS", "Username already in use by another admin", nil)
			}
		}
		admin.Username = username
	}
	if payload.Password != nil {
		hashed, err := common.HashPassword(*payload.Password, GetAppContext(c).Config().Commerce.BcryptCost)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "HASH_ERROR", "Error updating admin", err.Error())
		}
		admin.Password = hashed
	}
	admin.UpdatedAt = time.Now()
	if err := GetDB(c).Save(&admin).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error updating admin", err.Error())
	}
	return okMsg(c, "Admin updated successfully", admin)
}

func deleteAdmin(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid admin ID", nil)
	}
	res := GetDB(c).Delete(&domain.Admin{}, id)
	if res.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error deleting admin", res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "ADMIN_NOT_FOUND", "Admin not found", nil)
	}
	return okMsg(c, "Admin deleted successfully", nil)
}
