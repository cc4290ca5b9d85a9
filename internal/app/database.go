package app

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/haider-deku/3d-marketplace/config"
)

func getDatabase(cfg config.DBConfig, workdir string) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if cfg.Debug {
		gormCfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch cfg.Type {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name)
		dialector = postgres.Open(dsn)
	case "sqlite", "":
		dir := path.Join(workdir, "data")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create data dir")
		}
		dialector = sqlite.Open(path.Join(dir, cfg.Name+".db") + "?_foreign_keys=1&_busy_timeout=5000")
	default:
		return nil, errors.Errorf("unsupported database type %q", cfg.Type)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", cfg.Type)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Type == "postgres" {
		sqlDB.SetMaxOpenConns(cfg.MaxConn)
		sqlDB.SetMaxIdleConns(cfg.IdleConn)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	}
	zap.S().Infof("Database connection successful, type: %s", db.Name())
	return db, nil
}
