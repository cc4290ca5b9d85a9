package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/haider-deku/3d-marketplace/internal/domain"
	"github.com/haider-deku/3d-marketplace/pkg/common"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NewEvent builds a pending outbox event with a JSON encoded payload.
func NewEvent(topic, key string, payload interface{}) (*domain.OutboxEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s payload", topic)
	}
	return &domain.OutboxEvent{
		ID:        common.UUIDint64(),
		EventID:   uuid.NewString(),
		Topic:     topic,
		Key:       key,
		Payload:   string(data),
		Status:    domain.OutboxPending,
		CreatedAt: time.Now(),
	}, nil
}

// OutboxRepository handles database operations for outbox events
type OutboxRepository interface {
	// Create inserts a new event
	Create(ctx context.Context, event *domain.OutboxEvent) error

	// GetPending retrieves up to limit pending events, oldest first
	GetPending(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)

	// MarkPublished flags an event as delivered
	MarkPublished(ctx context.Context, id int64, at time.Time) error

	// MarkFailed increments the attempt counter and records the error
	MarkFailed(ctx context.Context, id int64, errMsg string) error

	// DeletePublishedBefore removes delivered events older than the cutoff
	DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// GormOutboxRepository is the GORM implementation of OutboxRepository
type GormOutboxRepository struct {
	db *gorm.DB
}

// NewGormOutboxRepository creates a repository bound to db, which may be a transaction.
func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

func (r *GormOutboxRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *GormOutboxRepository) GetPending(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	var rows []*domain.OutboxEvent
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.OutboxPending).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *GormOutboxRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       domain.OutboxPublished,
			"published_at": at,
			"last_error":   "",
		}).Error
}

func (r *GormOutboxRepository) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	return r.db.WithContext(ctx).
		Model(&domain.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": errMsg,
		}).Error
}

func (r *GormOutboxRepository) DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND published_at < ?", domain.OutboxPublished, cutoff).
		Delete(&domain.OutboxEvent{})
	return res.RowsAffected, res.Error
}
