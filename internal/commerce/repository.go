package commerce

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/haider-deku/3d-marketplace/internal/domain"
	"github.com/haider-deku/3d-marketplace/pkg/common"
)

// ClientRepository is the read side of the client store used by the cart engine.
type ClientRepository interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// ProductRepository resolves products with their pricing. Missing rows yield gorm.ErrRecordNotFound.
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

// CartRepository persists carts with revision guarded writes.
type CartRepository interface {
	// GetByClient returns gorm.ErrRecordNotFound when the client has no cart
	GetByClient(ctx context.Context, clientID int64) (*domain.Cart, error)

	// EnsureForClient returns the client's cart, inserting an empty one if absent
	EnsureForClient(ctx context.Context, clientID int64) (*domain.Cart, error)

	// SaveItems replaces the item rows if cart.Revision is still current and bumps
	// the revision. A stale revision yields ErrCartConflict.
	SaveItems(ctx context.Context, cart *domain.Cart) error
}

// OrderRepository handles database operations for orders
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	ListByClient(ctx context.Context, clientID int64) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) (bool, error)
}

func orderedPricing(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

// GormClientRepository is the GORM implementation of ClientRepository
type GormClientRepository struct {
	db *gorm.DB
}

func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

func (r *GormClientRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Client{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// GormProductRepository is the GORM implementation of ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Preload("Pricing", orderedPricing).First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GormCartRepository is the GORM implementation of CartRepository
type GormCartRepository struct {
	db *gorm.DB
}

func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) GetByClient(ctx context.Context, clientID int64) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		Where("client_id = ?", clientID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return &cart, nil
}

func (r *GormCartRepository) EnsureForClient(ctx context.Context, clientID int64) (*domain.Cart, error) {
	cart, err := r.GetByClient(ctx, clientID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	now := time.Now()
	fresh := &domain.Cart{ID: common.UUIDint64(), ClientID: clientID, CreatedAt: now, UpdatedAt: now}
	err = r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "client_id"}}, DoNothing: true}).
		Create(fresh).Error
	if err != nil {
		return nil, err
	}
	// a concurrent insert may have won; read back whichever row exists
	return r.GetByClient(ctx, clientID)
}

func (r *GormCartRepository) SaveItems(ctx context.Context, cart *domain.Cart) error {
	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Cart{}).
			Where("id = ? AND revision = ?", cart.ID, cart.Revision).
			Updates(map[string]interface{}{
				"revision":   gorm.Expr("revision + 1"),
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCartConflict
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&domain.CartItem{}).Error; err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return nil
		}
		for i := range cart.Items {
			cart.Items[i].ID = 0
			cart.Items[i].CartID = cart.ID
			cart.Items[i].Position = i
		}
		return tx.Create(&cart.Items).Error
	})
	if err != nil {
		return err
	}
	cart.Revision++
	cart.UpdatedAt = now
	return nil
}

// GormOrderRepository is the GORM implementation of OrderRepository
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func preloadOrderItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") })
}

func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(order).Error; err != nil {
		return err
	}
	for i := range order.Items {
		order.Items[i].ID = 0
		order.Items[i].OrderID = order.ID
		order.Items[i].Position = i
	}
	if len(order.Items) == 0 {
		return nil
	}
	return db.Create(&order.Items).Error
}

func (r *GormOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	if err := preloadOrderItems(r.db.WithContext(ctx)).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	var rows []*domain.Order
	err := preloadOrderItems(r.db.WithContext(ctx)).Order("created_at DESC, id DESC").Find(&rows).Error
	return rows, err
}

func (r *GormOrderRepository) ListByClient(ctx context.Context, clientID int64) ([]*domain.Order, error) {
	var rows []*domain.Order
	err := preloadOrderItems(r.db.WithContext(ctx)).
		Where("client_id = ?", clientID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

func (r *GormOrderRepository) Delete(ctx context.Context, id int64) (bool, error) {
	db := r.db.WithContext(ctx)
	var deleted bool
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&domain.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Order{}, id)
		deleted = res.RowsAffected > 0
		return res.Error
	})
	return deleted, err
}
