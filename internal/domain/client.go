package domain

import "time"

// Client is a marketplace buyer. Password holds a bcrypt hash and is never serialized.
type Client struct {
	ID          int64     `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	Username    string    `json:"username" gorm:"size:30;uniqueIndex;not null"`
	Email       string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Password    string    `json:"-" gorm:"size:255;not null"`
	PhoneNumber string    `json:"phoneNumber" gorm:"size:50"`
	Address     string    `json:"address" gorm:"size:500"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName Specify table name
func (Client) TableName() string {
	return "client"
}

// Admin is a catalog operator account.
type Admin struct {
	ID        int64     `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	Username  string    `json:"username" gorm:"size:30;uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"size:255;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName Specify table name
func (Admin) TableName() string {
	return "admin"
}
