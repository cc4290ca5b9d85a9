package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/haider-deku/3d-marketplace/internal/commerce"
	"github.com/haider-deku/3d-marketplace/internal/domain"
	"github.com/haider-deku/3d-marketplace/internal/webserver"
	"github.com/haider-deku/3d-marketplace/pkg/common"
)

const invalidTypeMessage = `Type must be either "custom" or "catalogue"`

type pricingPayload struct {
	Size  string   `json:"size"`
	Price *float64 `json:"price"`
}

type productPayload struct {
	ProductName string           `json:"productName" validate:"required,min=1,max=200"`
	Type        string           `json:"type" validate:"required"`
	Category    string           `json:"category" validate:"required"`
	Pricing     []pricingPayload `json:"pricing"`
	Color       []string         `json:"color"`
	Images      []string         `json:"images"`
	Description string           `json:"description" validate:"omitempty,max=5000"`
	STLFile     string           `json:"stlFile" validate:"omitempty,max=1024"`
	Gcode       string           `json:"gcode" validate:"omitempty,max=1024"`
}

type productUpdatePayload struct {
	ProductName *string          `json:"productName" validate:"omitempty,min=1,max=200"`
	Type        *string          `json:"type"`
	Category    *string          `json:"category"`
	Pricing     []pricingPayload `json:"pricing"`
	Color       []string         `json:"color"`
	Images      []string         `json:"images"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	STLFile     *string          `json:"stlFile" validate:"omitempty,max=1024"`
	Gcode       *string          `json:"gcode" validate:"omitempty,max=1024"`
}

// registerProductRoutes registers product catalog routes
func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/products/:id", getProduct)
	webserver.ApiGET("/products/category/:categoryId", listProductsByCategory)
	webserver.ApiGET("/products/category-name/:categName", listProductsByCategoryName)
	webserver.ApiGET("/products/type/:type", listProductsByType)
	webserver.ApiPOST("/products", createProduct)
	webserver.ApiPUT("/products/:id", updateProduct)
	webserver.ApiDELETE("/products/:id", deleteProduct)
	webserver.ApiPOST("/products/:id/resync-category", resyncProductCategory)
}

func withPricing(db *gorm.DB) *gorm.DB {
	return db.Preload("Pricing", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") })
}

func toPricing(in []pricingPayload) ([]domain.ProductPricing, error) {
	out := make([]domain.ProductPricing, 0, len(in))
	for i, opt := range in {
		if opt.Price == nil {
			return nil, commerce.Invalid("INVALID_PRICING", "Each pricing option must have a valid price (>= 0)")
		}
		out = append(out, domain.ProductPricing{Size: strings.TrimSpace(opt.Size), Price: *opt.Price, Position: i})
	}
	if err := commerce.ValidatePricing(out); err != nil {
		return nil, err
	}
	return out, nil
}

func findCategory(c echo.Context, raw string) (*domain.Category, error) {
	id, err := common.ParseID(raw)
	if err != nil {
		return nil, commerce.Invalid("INVALID_ID", "Invalid category ID")
	}
	var cat domain.Category
	if err := GetDB(c).First(&cat, id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, commerce.NotFound("CATEGORY_NOT_FOUND", "Category not found")
	} else if err != nil {
		return nil, err
	}
	return &cat, nil
}

func listProducts(c echo.Context) error {
	var rows []domain.Product
	if err := withPricing(GetDB(c)).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error fetching products", err.Error())
	}
	return okList(c, rows, len(rows))
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := withPricing(GetDB(c)).First(&p, id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error fetching product", err.Error())
	}
	return ok(c, p)
}

func listProductsByCategory(c echo.Context) error {
	cat, err := findCategory(c, c.Param("categoryId"))
	if err != nil {
		return failErr(c, err, "Error fetching products by category")
	}
	var rows []domain.Product
	if err := withPricing(GetDB(c)).Where("category_id = ?", cat.ID).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error fetching products by category", err.Error())
	}
	return okList(c, rows, len(rows))
}

func listProductsByCategoryName(c echo.Context) error {
	name := strings.TrimSpace(c.Param("categName"))
	var rows []domain.Product
	if err := withPricing(GetDB(c)).Where("categ_name = ?", name).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error fetching products by category name", err.Error())
	}
	return okList(c, rows, len(rows))
}

func listProductsByType(c echo.Context) error {
	productType := c.Param("type")
	if !domain.IsProductType(productType) {
		return fail(c, http.StatusBadRequest, "INVALID_TYPE", invalidTypeMessage, nil)
	}
	var rows []domain.Product
	if err := withPricing(GetDB(c)).Where("type = ?", productType).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error fetching products by type", err.Error())
	}
	return okList(c, rows, len(rows))
}

// createProduct stores a product and snapshots its category name
func createProduct(c echo.Context) error {
	var payload productPayload
	if next, err := bindAndValidate(c, &payload, "product"); !next {
		return err
	}
	if !domain.IsProductType(payload.Type) {
		return fail(c, http.StatusBadRequest, "INVALID_TYPE", invalidTypeMessage, nil)
	}
	cat, err := findCategory(c, payload.Category)
	if err != nil {
		return failErr(c, err, "Error creating product")
	}
	pricing, err := toPricing(payload.Pricing)
	if err != nil {
		return failErr(c, err, "Error creating product")
	}

	now := time.Now()
	p := domain.Product{
		ID:          common.UUIDint64(),
		ProductName: strings.TrimSpace(payload.ProductName),
		Type:        payload.Type,
		CategoryID:  cat.ID,
		CategName:   cat.CategName,
		Pricing:     pricing,
		Color:       domain.StringList(payload.Color),
		Images:      domain.StringList(payload.Images),
		Description: payload.Description,
		STLFile:     strings.TrimSpace(payload.STLFile),
		Gcode:       strings.TrimSpace(payload.Gcode),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Color == nil {
		p.Color = domain.StringList{}
	}
	if p.Images == nil {
		p.Images = domain.StringList{}
	}
	if err := GetDB(c).Create(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error creating product", err.Error())
	}
	return created(c, "Product created successfully", p)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload productUpdatePayload
	if next, err := bindAndValidate(c, &payload, "product"); !next {
		return err
	}

	var p domain.Product
	if err := withPricing(GetDB(c)).First(&p, id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error updating product", err.Error())
	}

	if payload.Category != nil {
		cat, err := findCategory(c, *payload.Category)
		if err != nil {
			return failErr(c, err, "Error updating product")
		}
		p.CategoryID = cat.ID
		p.CategName = cat.CategName
	}
	var pricing []domain.ProductPricing
	replacePricing := payload.Pricing != nil
	if replacePricing {
		if pricing, err = toPricing(payload.Pricing); err != nil {
			return failErr(c, err, "Error updating product")
		}
	}
	if payload.Type != nil {
		if !domain.IsProductType(*payload.Type) {
			return fail(c, http.StatusBadRequest, "INVALID_TYPE", invalidTypeMessage, nil)
		}
		p.Type = *payload.Type
	}
	if payload.ProductName != nil {
		p.ProductName = strings.TrimSpace(*payload.ProductName)
	}
	if payload.Color != nil {
		p.Color = domain.StringList(payload.Color)
	}
	if payload.Images != nil {
		p.Images = domain.StringList(payload.Images)
	}
	if payload.Description != nil {
		p.Description = *payload.Description
	}
	if payload.STLFile != nil {
		p.STLFile = strings.TrimSpace(*payload.STLFile)
	}
	if payload.Gcode != nil {
		p.Gcode = strings.TrimSpace(*payload.Gcode)
	}
	p.UpdatedAt = time.Now()

	err = GetDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&p).Error; err != nil {
			return err
		}
		if !replacePricing {
			return nil
		}
		if err := tx.Where("product_id = ?", p.ID).Delete(&domain.ProductPricing{}).Error; err != nil {
			return err
		}
		for i := range pricing {
			pricing[i].ProductID = p.ID
		}
		if err := tx.Create(&pricing).Error; err != nil {
			return err
		}
		p.Pricing = pricing
		return nil
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error updating product", err.Error())
	}
	GetAppContext(c).Commerce().InvalidateProducts(c.Request().Context(), p.ID)
	return okMsg(c, "Product updated successfully", p)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var deleted int64
	err = GetDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&domain.ProductPricing{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Product{}, id)
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Error deleting product", err.Error())
	}
	if deleted == 0 {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	}
	GetAppContext(c).Commerce().InvalidateProducts(c.Request().Context(), id)
	return okMsg(c, "Product deleted successfully", nil)
}

func resyncProductCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := GetAppContext(c).Commerce().ResyncProductCategory(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err, "Error resyncing product category")
	}
	return okMsg(c, "Product category name resynced", p)
}
