package domain

import "time"

// Cart holds the mutable line items of one client. Revision is bumped on every
// write and used as a compare-and-swap token.
type Cart struct {
	ID        int64      `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	ClientID  int64      `json:"clientId,string" gorm:"uniqueIndex;not null"`
	Revision  int64      `json:"revision" gorm:"not null;default:0"`
	Items     []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// TableName Specify table name
func (Cart) TableName() string {
	return "cart"
}

// CartItem is one (product, size, quantity) line. A cart holds at most one line per
// (ProductID, Size).
type CartItem struct {
	ID        int64  `json:"-" gorm:"primaryKey;autoIncrement"`
	CartID    int64  `json:"-" gorm:"index;not null"`
	ProductID int64  `json:"productId,string" gorm:"not null"`
	Size      string `json:"size" gorm:"size:32;not null"`
	Quantity  int    `json:"quantity" gorm:"not null"`
	Position  int    `json:"-"`
}

// TableName Specify table name
func (CartItem) TableName() string {
	return "cart_item"
}

// FindItem returns the index of the (productID, size) line or -1.
func (c *Cart) FindItem(productID int64, size string) int {
	for i, item := range c.Items {
		if item.ProductID == productID && item.Size == size {
			return i
		}
	}
	return -1
}
