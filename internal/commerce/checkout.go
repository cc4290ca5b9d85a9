package commerce

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/haider-deku/3d-marketplace/internal/domain"
	"github.com/haider-deku/3d-marketplace/internal/events"
	"github.com/haider-deku/3d-marketplace/pkg/common"
)

// OrderCreatedEvent is the payload of order.created.
type OrderCreatedEvent struct {
	OrderID    int64              `json:"orderId,string"`
	ClientID   int64              `json:"clientId,string"`
	TotalPrice float64            `json:"totalPrice"`
	Status     string             `json:"status"`
	Items      []domain.OrderItem `json:"items"`
	CreatedAt  time.Time          `json:"createdAt"`
}

// Checkout converts the client's cart into a pending order priced at the current
// catalog, then empties the cart. Order insert, cart clear and the order.created event
// commit together. Any unresolvable line aborts with nothing written.
func (s *Service) Checkout(ctx context.Context, clientID int64) (*domain.Order, error) {
	r := s.repos()
	if err := s.requireClient(ctx, r, clientID); err != nil {
		return nil, err
	}

	var order *domain.Order
	err := s.withRetry(ctx, "checkout", clientID, func() error {
		o, err := s.checkoutOnce(ctx, r, clientID)
		if err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("client_id", clientID),
		zap.Int("items", len(order.Items)),
		zap.Float64("total", order.TotalPrice),
	)
	return order, nil
}

func (s *Service) checkoutOnce(ctx context.Context, r repositories, clientID int64) (*domain.Order, error) {
	cart, err := r.carts.GetByClient(ctx, clientID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errEmptyCart
	}
	if err != nil {
		return nil, errors.Wrap(err, "query cart")
	}
	if len(cart.Items) == 0 {
		return nil, errEmptyCart
	}

	items := make([]domain.OrderItem, 0, len(cart.Items))
	total := decimal.Zero
	for _, line := range cart.Items {
		// checkout always prices from the database, never from the cache
		product, err := r.products.GetByID(ctx, line.ProductID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("PRODUCT_NOT_FOUND", "Product %d not found", line.ProductID)
		}
		if err != nil {
			return nil, errors.Wrap(err, "query product")
		}
		price, ok := product.PriceFor(line.Size)
		if !ok {
			return nil, Invalid("INVALID_SIZE", "Size '%s' not available for %s", line.Size, product.ProductName)
		}
		total = total.Add(LineTotal(price, line.Quantity))
		items = append(items, domain.OrderItem{
			ProductID: line.ProductID,
			Size:      line.Size,
			Quantity:  line.Quantity,
			Price:     price,
		})
	}

	now := time.Now()
	order := &domain.Order{
		ID:         common.UUIDint64(),
		ClientID:   clientID,
		Items:      items,
		TotalPrice: Money(total),
		Status:     domain.OrderStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.transaction(ctx, func(tx repositories) error {
		if err := tx.orders.Create(ctx, order); err != nil {
			return errors.Wrap(err, "create order")
		}
		cart.Items = []domain.CartItem{}
		if err := tx.carts.SaveItems(ctx, cart); err != nil {
			return err
		}
		event, err := events.NewEvent(domain.EventOrderCreated, strconv.FormatInt(order.ID, 10), OrderCreatedEvent{
			OrderID:    order.ID,
			ClientID:   order.ClientID,
			TotalPrice: order.TotalPrice,
			Status:     order.Status,
			Items:      order.Items,
			CreatedAt:  order.CreatedAt,
		})
		if err != nil {
			return err
		}
		return errors.Wrap(tx.outbox.Create(ctx, event), "record order event")
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
