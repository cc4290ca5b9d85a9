package app

import (
	"context"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/haider-deku/3d-marketplace/config"
	"github.com/haider-deku/3d-marketplace/internal/commerce"
	"github.com/haider-deku/3d-marketplace/internal/events"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// CommerceProvider provides the cart, checkout and order service
type CommerceProvider interface {
	Commerce() *commerce.Service
}

// PublisherProvider provides the outbox event publisher
type PublisherProvider interface {
	Publisher() events.Publisher
}

// AppContext combines all provider interfaces for full application context
// Services should depend on specific providers or this combined interface
type AppContext interface {
	DBProvider
	ConfigProvider
	SchedulerProvider
	CommerceProvider
	PublisherProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
	// RunOutboxRelay publishes one batch of pending outbox events immediately
	RunOutboxRelay(ctx context.Context) (int, error)
}
