package domain

import "time"

const (
	OutboxPending   = "pending"
	OutboxPublished = "published"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OutboxEvent is written in the same transaction as the state change it describes
// and relayed to the broker afterwards.
type OutboxEvent struct {
	ID          int64      `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	EventID     string     `json:"eventId" gorm:"size:64;uniqueIndex;not null"`
	Topic       string     `json:"topic" gorm:"size:100;index;not null"`
	Key         string     `json:"key" gorm:"size:100"`
	Payload     string     `json:"payload" gorm:"type:text"`
	Status      string     `json:"status" gorm:"size:20;index;not null"`
	Attempts    int        `json:"attempts" gorm:"not null;default:0"`
	LastError   string     `json:"lastError" gorm:"type:text"`
	CreatedAt   time.Time  `json:"createdAt" gorm:"index"`
	PublishedAt *time.Time `json:"publishedAt"`
}

// TableName Specify table name
func (OutboxEvent) TableName() string {
	return "outbox_event"
}
