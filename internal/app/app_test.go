package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/haider-deku/3d-marketplace/config"
	"github.com/haider-deku/3d-marketplace/internal/domain"
	"github.com/haider-deku/3d-marketplace/internal/events"
	"github.com/haider-deku/3d-marketplace/pkg/common"
)

func newTestApp(t *testing.T) *Application {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := config.DefaultAppConfig()
	cfg.Commerce.BcryptCost = bcrypt.MinCost
	a := NewApplication(cfg)
	a.OverrideDB(db)
	require.NoError(t, a.MigrateDB(false))
	return a
}

func TestCheckSuperCreatesDefaultAdmin(t *testing.T) {
	a := newTestApp(t)
	a.checkSuper()
	a.checkSuper()

	var admins []domain.Admin
	require.NoError(t, a.DB().Where("username = ?", superUsername).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.True(t, common.CheckPassword(admins[0].Password, "marketplace"))
}

func TestCheckSuperRepairsEmptyPassword(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.DB().Create(&domain.Admin{ID: common.UUIDint64(), Username: superUsername, Password: " "}).Error)
	a.checkSuper()

	var admin domain.Admin
	require.NoError(t, a.DB().Where("username = ?", superUsername).First(&admin).Error)
	assert.True(t, common.CheckPassword(admin.Password, "marketplace"))
}

func TestInitServicesDefaultsToLogPublisher(t *testing.T) {
	a := newTestApp(t)
	a.InitServices()
	require.NotNil(t, a.Commerce())
	assert.IsType(t, events.LogPublisher{}, a.Publisher())

	ev, err := events.NewEvent(domain.EventOrderCreated, "1", map[string]string{"k": "v"})
	require.NoError(t, err)
	require.NoError(t, a.DB().Create(ev).Error)

	n, err := a.RunOutboxRelay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// cleanup keeps recently published events
	a.SchedOutboxCleanupTask()
	var count int64
	require.NoError(t, a.DB().Model(&domain.OutboxEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestInitDbRecreatesTables(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.DB().Create(&domain.Category{ID: 1, CategName: "x"}).Error)
	a.InitDb()
	var count int64
	require.NoError(t, a.DB().Model(&domain.Category{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	require.NoError(t, a.DB().Model(&domain.Admin{}).Where("username = ?", superUsername).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetDatabase(t *testing.T) {
	db, err := getDatabase(config.DBConfig{Type: "sqlite", Name: "test"}, t.TempDir())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
	_ = sqlDB.Close()

	_, err = getDatabase(config.DBConfig{Type: "oracle"}, t.TempDir())
	assert.Error(t, err)
}

func TestInitJobRegistersTasks(t *testing.T) {
	a := newTestApp(t)
	a.InitServices()
	a.initJob()
	defer a.sched.Stop()
	assert.Len(t, a.Scheduler().Entries(), 2)
}
