package domain

import (
	"strings"
	"time"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// OrderStatuses lists the legal status values.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// orderTransitions is the nominal lifecycle. Status updates are not restricted to it;
// it only classifies a change as nominal or an override.
var orderTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted:  {},
	OrderStatusCancelled:  {},
}

func IsOrderStatus(s string) bool {
	_, ok := orderTransitions[s]
	return ok
}

// IsNominalTransition reports whether from -> to follows the nominal lifecycle.
// Setting the current status again counts as nominal.
func IsNominalTransition(from, to string) bool {
	if from == to {
		return IsOrderStatus(from)
	}
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func OrderStatusList() string {
	return strings.Join(OrderStatuses, ", ")
}

// Order is created only by checkout. Items carry the unit price captured at checkout.
type Order struct {
	ID         int64       `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	ClientID   int64       `json:"clientId,string" gorm:"index;not null"`
	Items      []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalPrice float64     `json:"totalPrice" gorm:"not null"`
	Status     string      `json:"status" gorm:"size:20;index;not null;default:'pending'"`
	CreatedAt  time.Time   `json:"createdAt" gorm:"index"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "orders"
}

// OrderItem is a price snapshot of one cart line.
type OrderItem struct {
	ID        int64   `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   int64   `json:"-" gorm:"index;not null"`
	ProductID int64   `json:"productId,string" gorm:"not null"`
	Size      string  `json:"size" gorm:"size:32;not null"`
	Quantity  int     `json:"quantity" gorm:"not null"`
	Price     float64 `json:"price" gorm:"not null"`
	Position  int     `json:"-"`
}

// TableName Specify table name
func (OrderItem) TableName() string {
	return "order_item"
}
