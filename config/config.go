package config

import (
	"os"
	"path"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const envPrefix = "MARKETPLACE_"

// DBConfig database config
type DBConfig struct {
	Type     string `yaml:"type"` // postgres or sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// SysConfig system config
type SysConfig struct {
	Appid         string `yaml:"appid"`
	Location      string `yaml:"location"`
	Workdir       string `yaml:"workdir"`
	Debug         bool   `yaml:"debug"`
	AdminPassword string `yaml:"admin_password"`
}

// WebConfig admin api server config
type WebConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	ReadTimeout  int    `yaml:"read_timeout"`  // seconds
	WriteTimeout int    `yaml:"write_timeout"` // seconds
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// RedisConfig enables the product read cache used by the cart view
type RedisConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	ProductTTL int    `yaml:"product_ttl"` // seconds
}

// KafkaConfig enables publishing outbox events to Kafka
type KafkaConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Brokers     []string `yaml:"brokers"`
	TopicPrefix string   `yaml:"topic_prefix"`
}

// CommerceConfig tunes the cart engine, checkout and outbox relay
type CommerceConfig struct {
	MaxRetries          int    `yaml:"max_retries"`
	OutboxBatch         int    `yaml:"outbox_batch"`
	OutboxInterval      string `yaml:"outbox_interval"` // cron spec
	OutboxRetentionDays int    `yaml:"outbox_retention_days"`
	BcryptCost          int    `yaml:"bcrypt_cost"`
}

type AppConfig struct {
	System   SysConfig      `yaml:"system"`
	Web      WebConfig      `yaml:"web"`
	Database DBConfig       `yaml:"database"`
	Logger   LogConfig      `yaml:"logger"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Commerce CommerceConfig `yaml:"commerce"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

// DefaultAppConfig returns the built-in defaults: sqlite storage under the workdir,
// no cache, no broker.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:         "Marketplace",
			Location:      "UTC",
			Workdir:       "/var/marketplace",
			AdminPassword: "marketplace",
		},
		Web: WebConfig{
			Host:         "0.0.0.0",
			Port:         3000,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Database: DBConfig{
			Type:     "sqlite",
			Host:     "127.0.0.1",
			Port:     5432,
			Name:     "marketplace",
			User:     "postgres",
			MaxConn:  50,
			IdleConn: 10,
		},
		Logger: LogConfig{
			Mode:     "development",
			Filename: "/var/marketplace/logs/marketplace.log",
		},
		Redis: RedisConfig{
			Addr:       "127.0.0.1:6379",
			ProductTTL: 60,
		},
		Kafka: KafkaConfig{
			Brokers:     []string{"127.0.0.1:9092"},
			TopicPrefix: "marketplace",
		},
		Commerce: CommerceConfig{
			MaxRetries:          5,
			OutboxBatch:         100,
			OutboxInterval:      "@every 10s",
			OutboxRetentionDays: 7,
			BcryptCost:          10,
		},
	}
}

// LoadConfig reads the yaml file at cfile on top of the defaults and then applies
// MARKETPLACE_* environment overrides. A missing file is not an error.
func LoadConfig(cfile string) (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := DefaultAppConfig()
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrapf(err, "parse config %s", cfile)
			}
		case !os.IsNotExist(err):
			return nil, errors.Wrapf(err, "read config %s", cfile)
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	setString("SYSTEM_APPID", &cfg.System.Appid)
	setString("SYSTEM_LOCATION", &cfg.System.Location)
	setString("SYSTEM_WORKDIR", &cfg.System.Workdir)
	setBool("SYSTEM_DEBUG", &cfg.System.Debug)
	setString("SYSTEM_ADMIN_PASSWORD", &cfg.System.AdminPassword)

	setString("WEB_HOST", &cfg.Web.Host)
	setInt("WEB_PORT", &cfg.Web.Port)
	setInt("WEB_READ_TIMEOUT", &cfg.Web.ReadTimeout)
	setInt("WEB_WRITE_TIMEOUT", &cfg.Web.WriteTimeout)

	setString("DB_TYPE", &cfg.Database.Type)
	setString("DB_HOST", &cfg.Database.Host)
	setInt("DB_PORT", &cfg.Database.Port)
	setString("DB_NAME", &cfg.Database.Name)
	setString("DB_USER", &cfg.Database.User)
	setString("DB_PWD", &cfg.Database.Passwd)
	setInt("DB_MAX_CONN", &cfg.Database.MaxConn)
	setInt("DB_IDLE_CONN", &cfg.Database.IdleConn)
	setBool("DB_DEBUG", &cfg.Database.Debug)

	setString("LOGGER_MODE", &cfg.Logger.Mode)
	setBool("LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)
	setString("LOGGER_FILENAME", &cfg.Logger.Filename)

	setBool("REDIS_ENABLED", &cfg.Redis.Enabled)
	setString("REDIS_ADDR", &cfg.Redis.Addr)
	setString("REDIS_PASSWORD", &cfg.Redis.Password)
	setInt("REDIS_DB", &cfg.Redis.DB)
	setInt("REDIS_PRODUCT_TTL", &cfg.Redis.ProductTTL)

	setBool("KAFKA_ENABLED", &cfg.Kafka.Enabled)
	if v, ok := lookup("KAFKA_BROKERS"); ok {
		cfg.Kafka.Brokers = splitList(v)
	}
	setString("KAFKA_TOPIC_PREFIX", &cfg.Kafka.TopicPrefix)

	setInt("COMMERCE_MAX_RETRIES", &cfg.Commerce.MaxRetries)
	setInt("COMMERCE_OUTBOX_BATCH", &cfg.Commerce.OutboxBatch)
	setString("COMMERCE_OUTBOX_INTERVAL", &cfg.Commerce.OutboxInterval)
	setInt("COMMERCE_OUTBOX_RETENTION_DAYS", &cfg.Commerce.OutboxRetentionDays)
	setInt("COMMERCE_BCRYPT_COST", &cfg.Commerce.BcryptCost)
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func setString(name string, dst *string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

func setInt(name string, dst *int) {
	if v, ok := lookup(name); ok {
		if n, err := cast.ToIntE(v); err == nil {
			*dst = n
		}
	}
}

func setBool(name string, dst *bool) {
	if v, ok := lookup(name); ok {
		if b, err := cast.ToBoolE(v); err == nil {
			*dst = b
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
