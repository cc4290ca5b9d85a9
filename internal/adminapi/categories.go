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

type categoryPayload struct {
	CategName string `json:"categName" validate:"required,min=1,max=200"`
}

// registerCategoryRoutes registers category CRUD routes
func registerCategoryRoutes() {
	webserver.ApiGET("/category", listCategories)
	webserver.ApiGET("/category/:id", getCategory)
	webserver.ApiPOST("/category", createCategory)
	webserver.ApiPUT("/category/:id", updateCategory)
	webserver.ApiDELETE("/category/:id", deleteCategory)
	webserver.ApiPOST("/category/:id/resync-products", resyncCategoryProducts)
}

func listCategories(c echo.Context) error {
	var rows []domain.Category
	if err := GetDB(c).Order("categ_name ASC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error fetching Category", err.Error())
	}
	return okList(c, rows, len(rows))
}

func getCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	var cat domain.Category
	if err := GetDB(c).First(&cat, id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error fetching Category", err.Error())
	}
	return ok(c, cat)
}

func categoryNameTaken(c echo.Context, name string, exceptID int64) (bool, error) {
	var exists int64
	err := GetDB(c).Model(&domain.Category{}).Where("categ_name = ? AND id != ?", name, exceptID).Count(&exists).Error
	return exists > 0, err
}

func createCategory(c echo.Context) error {
	var payload categoryPayload
	if next, err := bindAndValidate(c, &payload, "category"); !next {
		return err
	}
	name := strings.TrimSpace(payload.CategName)
	if name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Category name is required", nil)
	}
	if taken, err := categoryNameTaken(c, name, 0); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error creating Category", err.Error())
	} else if taken {
		return fail(c, http.StatusBadRequest, "CATEGORY_EXISTS", "Category with this name already exists", nil)
	}

	now := time.Now()
	cat := domain.Category{ID: common.UUIDint64(), CategName: name, CreatedAt: now, UpdatedAt: now}
	if err := GetDB(c).Create(&cat).Error; err != nil {
		if isDuplicateKey(err) {
			return fail(c, http.StatusBadRequest, "CATEGORY_EXISTS", "Category with this name already exists", nil)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error creating Category", err.Error())
	}
	return created(c, "Category created successfully", cat)
}

// updateCategory renames a category. Product snapshots keep the old name until resynced.
func updateCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	var payload categoryPayload
	if next, err := bindAndValidate(c, &payload, "category"); !next {
		return err
	}

	var cat domain.Category
	if err := GetDB(c).First(&cat, id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error updating Category", err.Error())
	}

	name := strings.TrimSpace(payload.CategName)
	if name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Category name is required", nil)
	}
	if taken, err := categoryNameTaken(c, name, id); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error updating Category", err.Error())
	} else if taken {
		return fail(c, http.StatusBadRequest, "CATEGORY_EXISTS", "Category with this name already exists", nil)
	}
	cat.CategName = name
	cat.UpdatedAt = time.Now()
	if err := GetDB(c).Save(&cat).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error updating Category", err.Error())
	}
	return okMsg(c, "Category updated successfully", cat)
}

func deleteCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	res := GetDB(c).Delete(&domain.Category{}, id)
	if res.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error deleting Category", res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found", nil)
	}
	return okMsg(c, "Category deleted successfully", nil)
}

func resyncCategoryProducts(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	n, err := GetAppContext(c).Commerce().ResyncCategoryProducts(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err, "Error resyncing category products")
	}
	return okMsg(c, "Category name resynced to products", map[string]int64{"updated": n})
}
