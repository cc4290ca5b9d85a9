package domain

import "time"

// Category groups catalog products. CategName is unique.
type Category struct {
	ID        int64     `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	CategName string    `json:"categName" gorm:"size:200;uniqueIndex;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName Specify table name
func (Category) TableName() string {
	return "category"
}
