package commerce

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/haider-deku/3d-marketplace/internal/domain"
)

// CartView is a cart priced against the current catalog.
type CartView struct {
	ClientID   int64          `json:"clientId,string"`
	Items      []CartViewItem `json:"items"`
	TotalPrice float64        `json:"totalPrice"`
}

type CartViewItem struct {
	ProductID    int64    `json:"productId,string"`
	ProductName  string   `json:"productName"`
	CategName    string   `json:"categName"`
	Size         string   `json:"size"`
	Quantity     int      `json:"quantity"`
	PricePerUnit float64  `json:"pricePerUnit"`
	ItemTotal    float64  `json:"itemTotal"`
	Images       []string `json:"images"`
}

// GetCart returns the priced view of the client's cart, creating an empty cart on
// first access. Lines whose product or size no longer exists are left out of the view
// but stay stored.
func (s *Service) GetCart(ctx context.Context, clientID int64) (*CartView, error) {
	r := s.repos()
	if err := s.requireClient(ctx, r, clientID); err != nil {
		return nil, err
	}
	cart, err := r.carts.EnsureForClient(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}

	view := &CartView{ClientID: clientID, Items: make([]CartViewItem, 0, len(cart.Items))}
	total := decimal.Zero
	for _, item := range cart.Items {
		product, err := s.cachedProduct(ctx, item.ProductID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "load cart product")
		}
		price, ok := product.PriceFor(item.Size)
		if !ok {
			continue
		}
		line := LineTotal(price, item.Quantity)
		total = total.Add(line)
		images := []string(product.Images)
		if images == nil {
			images = []string{}
		}
		view.Items = append(view.Items, CartViewItem{
			ProductID:    product.ID,
			ProductName:  product.ProductName,
			CategName:    product.CategName,
			Size:         item.Size,
			Quantity:     item.Quantity,
			PricePerUnit: price,
			ItemTotal:    Money(line),
			Images:       images,
		})
	}
	view.TotalPrice = Money(total)
	return view, nil
}

// AddItem puts quantity units of (productID, size) into the cart, merging with an
// existing line. A zero quantity means one unit.
func (s *Service) AddItem(ctx context.Context, clientID, productID int64, size string, quantity int) (*domain.Cart, error) {
	if quantity < 0 {
		return nil, errBadQuantity
	}
	if quantity == 0 {
		quantity = 1
	}
	r := s.repos()
	if err := s.requireClient(ctx, r, clientID); err != nil {
		return nil, err
	}
	product, err := r.products.GetByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errProductMissing
	}
	if err != nil {
		return nil, errors.Wrap(err, "query product")
	}
	if _, ok := product.PriceFor(size); !ok {
		return nil, Invalid("INVALID_SIZE", "Size '%s' not available for this product. Available sizes: %s", size, product.SizeList())
	}

	var cart *domain.Cart
	err = s.withRetry(ctx, "add_item", clientID, func() error {
		c, err := r.carts.EnsureForClient(ctx, clientID)
		if err != nil {
			return errors.Wrap(err, "load cart")
		}
		if i := c.FindItem(productID, size); i >= 0 {
			c.Items[i].Quantity += quantity
		} else {
			c.Items = append(c.Items, domain.CartItem{ProductID: productID, Size: size, Quantity: quantity})
		}
		if err := r.carts.SaveItems(ctx, c); err != nil {
			return err
		}
		cart = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateItemQuantity sets the quantity of an existing line.
func (s *Service) UpdateItemQuantity(ctx context.Context, clientID, productID int64, size string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, errBadQuantity
	}
	return s.mutateCart(ctx, "update_item", clientID, func(c *domain.Cart) error {
		i := c.FindItem(productID, size)
		if i < 0 {
			return errItemNotFound
		}
		c.Items[i].Quantity = quantity
		return nil
	})
}

// RemoveItem deletes the (productID, size) line.
func (s *Service) RemoveItem(ctx context.Context, clientID, productID int64, size string) (*domain.Cart, error) {
	return s.mutateCart(ctx, "remove_item", clientID, func(c *domain.Cart) error {
		kept := make([]domain.CartItem, 0, len(c.Items))
		for _, item := range c.Items {
			if item.ProductID == productID && item.Size == size {
				continue
			}
			kept = append(kept, item)
		}
		if len(kept) == len(c.Items) {
			return errItemNotFound
		}
		c.Items = kept
		return nil
	})
}

// ClearCart empties the cart but keeps it.
func (s *Service) ClearCart(ctx context.Context, clientID int64) (*domain.Cart, error) {
	return s.mutateCart(ctx, "clear_cart", clientID, func(c *domain.Cart) error {
		c.Items = []domain.CartItem{}
		return nil
	})
}

// mutateCart runs a revision guarded read-modify-write on an existing cart.
func (s *Service) mutateCart(ctx context.Context, op string, clientID int64, mutate func(c *domain.Cart) error) (*domain.Cart, error) {
	r := s.repos()
	var cart *domain.Cart
	err := s.withRetry(ctx, op, clientID, func() error {
		c, err := s.requireCart(ctx, r, clientID)
		if err != nil {
			return err
		}
		if err := mutate(c); err != nil {
			return err
		}
		if err := r.carts.SaveItems(ctx, c); err != nil {
			return err
		}
		cart = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}
