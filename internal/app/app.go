package app

import (
	"context"
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/haider-deku/3d-marketplace/config"
	"github.com/haider-deku/3d-marketplace/internal/cache"
	"github.com/haider-deku/3d-marketplace/internal/commerce"
	"github.com/haider-deku/3d-marketplace/internal/domain"
	"github.com/haider-deku/3d-marketplace/internal/events"
)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	sched     *cron.Cron
	redis     *redis.Client
	publisher events.Publisher
	relay     *events.Relay
	commerce  *commerce.Service
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ CommerceProvider  = (*Application)(nil)
	_ PublisherProvider = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) Commerce() *commerce.Service {
	return a.commerce
}

func (a *Application) Publisher() events.Publisher {
	return a.publisher
}

func (a *Application) Init(cfg *config.AppConfig) error {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	initLogger(cfg)

	a.gormDB, err = getDatabase(cfg.Database, cfg.System.Workdir)
	if err != nil {
		return err
	}

	if err := a.MigrateDB(cfg.Database.Debug); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}
	a.checkSuper()

	a.InitServices()
	a.initJob()
	return nil
}

func initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	if cfg.System.Debug {
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

// InitServices wires the product cache, event publisher and commerce service on top
// of the current database handle. Optional backends that fail to start are skipped.
func (a *Application) InitServices() {
	cfg := a.appConfig

	var opts []commerce.Option
	opts = append(opts, commerce.WithMaxRetries(cfg.Commerce.MaxRetries))
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			zap.L().Warn("product cache disabled", zap.Error(err))
		} else {
			a.redis = client
			ttl := time.Duration(cfg.Redis.ProductTTL) * time.Second
			opts = append(opts, commerce.WithProductCache(cache.NewRedisProductCache(client, ttl)))
		}
	}
	a.commerce = commerce.NewService(a.gormDB, opts...)

	a.publisher = events.LogPublisher{}
	if cfg.Kafka.Enabled {
		pub, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix)
		if err != nil {
			zap.L().Warn("kafka publisher disabled, events go to the log", zap.Error(err))
		} else {
			a.publisher = pub
			zap.L().Info("kafka publisher ready", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	}
	a.relay = events.NewRelay(events.NewGormOutboxRepository(a.gormDB), a.publisher, cfg.Commerce.OutboxBatch)
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	db := a.gormDB
	if track {
		db = db.Debug()
	}
	return db.Migrator().AutoMigrate(domain.Tables...)
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

// InitDb drops and recreates every table, then seeds the super admin again.
func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
		return
	}
	a.checkSuper()
}

// RunOutboxRelay publishes one batch of pending outbox events.
func (a *Application) RunOutboxRelay(ctx context.Context) (int, error) {
	return a.relay.RunOnce(ctx)
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.gormDB != nil {
		if sqlDB, err := a.gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = zap.L().Sync()
}
