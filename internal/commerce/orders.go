package commerce

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/haider-deku/3d-marketplace/internal/domain"
	"github.com/haider-deku/3d-marketplace/internal/events"
)

// OrderStatusChangedEvent is the payload of order.status_changed.
type OrderStatusChangedEvent struct {
	OrderID   int64     `json:"orderId,string"`
	ClientID  int64     `json:"clientId,string"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Nominal   bool      `json:"nominal"`
	ChangedAt time.Time `json:"changedAt"`
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := s.repos().orders.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query order")
	}
	return o, nil
}

// ListOrders returns every order, newest first.
func (s *Service) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	rows, err := s.repos().orders.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	return rows, nil
}

// ListClientOrders returns a client's orders, newest first.
func (s *Service) ListClientOrders(ctx context.Context, clientID int64) ([]*domain.Order, error) {
	r := s.repos()
	if err := s.requireClient(ctx, r, clientID); err != nil {
		return nil, err
	}
	rows, err := r.orders.ListByClient(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	return rows, nil
}

func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	deleted, err := s.repos().orders.Delete(ctx, id)
	if err != nil {
		return errors.Wrap(err, "delete order")
	}
	if !deleted {
		return errOrderNotFound
	}
	return nil
}

// UpdateOrderStatus sets any legal status regardless of the current one. Changes off
// the nominal lifecycle are allowed as an admin override and logged.
func (s *Service) UpdateOrderStatus(ctx context.Context, id int64, status string) (*domain.Order, error) {
	if !domain.IsOrderStatus(status) {
		return nil, Invalid("INVALID_STATUS", "Invalid status. Must be one of: %s", domain.OrderStatusList())
	}

	var order *domain.Order
	err := s.transaction(ctx, func(tx repositories) error {
		o, err := tx.orders.GetByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errOrderNotFound
		}
		if err != nil {
			return errors.Wrap(err, "query order")
		}
		from := o.Status
		nominal := domain.IsNominalTransition(from, status)
		if !nominal {
			zap.L().Warn("order status override",
				zap.Int64("order_id", id),
				zap.String("from", from),
				zap.String("to", status),
			)
		}
		if err := tx.orders.UpdateStatus(ctx, id, status); err != nil {
			return errors.Wrap(err, "update order status")
		}
		now := time.Now()
		event, err := events.NewEvent(domain.EventOrderStatusChanged, strconv.FormatInt(id, 10), OrderStatusChangedEvent{
			OrderID:   id,
			ClientID:  o.ClientID,
			From:      from,
			To:        status,
			Nominal:   nominal,
			ChangedAt: now,
		})
		if err != nil {
			return err
		}
		if err := tx.outbox.Create(ctx, event); err != nil {
			return errors.Wrap(err, "record status event")
		}
		o.Status = status
		o.UpdatedAt = now
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
