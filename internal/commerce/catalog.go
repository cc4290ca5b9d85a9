package commerce

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/haider-deku/3d-marketplace/internal/domain"
)

var errCategoryNotFound = NotFound("CATEGORY_NOT_FOUND", "Category not found")

func (s *Service) category(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	err := s.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errCategoryNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query category")
	}
	return &c, nil
}

// ResyncProductCategory refreshes the product's categName snapshot from its category.
func (s *Service) ResyncProductCategory(ctx context.Context, productID int64) (*domain.Product, error) {
	products := s.repos().products
	p, err := products.GetByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errProductMissing
	}
	if err != nil {
		return nil, errors.Wrap(err, "query product")
	}
	c, err := s.category(ctx, p.CategoryID)
	if err != nil {
		return nil, err
	}
	if p.CategName != c.CategName {
		now := time.Now()
		err = s.db.WithContext(ctx).Model(&domain.Product{}).
			Where("id = ?", p.ID).
			Updates(map[string]interface{}{"categ_name": c.CategName, "updated_at": now}).Error
		if err != nil {
			return nil, errors.Wrap(err, "update product category name")
		}
		p.CategName = c.CategName
		p.UpdatedAt = now
	}
	s.InvalidateProducts(ctx, p.ID)
	return p, nil
}

// ResyncCategoryProducts rewrites categName on every product of the category and
// returns how many products it touched.
func (s *Service) ResyncCategoryProducts(ctx context.Context, categoryID int64) (int64, error) {
	c, err := s.category(ctx, categoryID)
	if err != nil {
		return 0, err
	}
	var ids []int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Product{}).Where("category_id = ?", categoryID).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&domain.Product{}).
			Where("category_id = ?", categoryID).
			Updates(map[string]interface{}{"categ_name": c.CategName, "updated_at": time.Now()}).Error
	})
	if err != nil {
		return 0, errors.Wrap(err, "resync category products")
	}
	s.InvalidateProducts(ctx, ids...)
	return int64(len(ids)), nil
}
