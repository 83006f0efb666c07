package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Stripe       StripeConfig
	Webhooks     WebhooksConfig
	Backups      BackupsConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ENLACEHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"ENLACEHUB_APP_PORT" required:"true"`
	PublicURL    string `envconfig:"ENLACEHUB_PUBLIC_URL" default:"https://enlacehub.com"`
	LogLevel     string `envconfig:"ENLACEHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ENLACEHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ENLACEHUB_DB_DSN"`
	Driver string `envconfig:"ENLACEHUB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ENLACEHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"ENLACEHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ENLACEHUB_DB_USER"`
	LegacyPassword string `envconfig:"ENLACEHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"ENLACEHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"ENLACEHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ENLACEHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ENLACEHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ENLACEHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ENLACEHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ENLACEHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ENLACEHUB_REDIS_ADDR"`
	Password     string        `envconfig:"ENLACEHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"ENLACEHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ENLACEHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ENLACEHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ENLACEHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ENLACEHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ENLACEHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig verifies bearer tokens minted by the external identity provider.
type JWTConfig struct {
	Secret   string `envconfig:"ENLACEHUB_JWT_SECRET" required:"true"`
	Issuer   string `envconfig:"ENLACEHUB_JWT_ISSUER" default:"enlacehub"`
	Audience string `envconfig:"ENLACEHUB_JWT_AUDIENCE"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ENLACEHUB_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ENLACEHUB_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey             string `envconfig:"ENLACEHUB_STRIPE_API_KEY"`
	Secret             string `envconfig:"ENLACEHUB_STRIPE_WEBHOOK_SECRET"`
	Env                string `envconfig:"ENLACEHUB_STRIPE_ENV" default:"test"`
	CheckoutSuccessURL string `envconfig:"ENLACEHUB_STRIPE_SUCCESS_URL" default:"https://enlacehub.com/dashboard?success=true"`
	CheckoutCancelURL  string `envconfig:"ENLACEHUB_STRIPE_CANCEL_URL" default:"https://enlacehub.com/dashboard?canceled=true"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type WebhooksConfig struct {
	DeliveryTimeout time.Duration `envconfig:"ENLACEHUB_WEBHOOK_DELIVERY_TIMEOUT" default:"10s"`
	EventTTL        time.Duration `envconfig:"ENLACEHUB_WEBHOOK_EVENT_TTL" default:"720h"`
}

type BackupsConfig struct {
	AnalyticsRowLimit int `envconfig:"ENLACEHUB_BACKUP_ANALYTICS_ROWS" default:"1000"`
	KeepLast          int `envconfig:"ENLACEHUB_BACKUP_KEEP_LAST" default:"10"`
}

type CronConfig struct {
	Interval              time.Duration `envconfig:"ENLACEHUB_CRON_INTERVAL" default:"24h"`
	NotificationRetention int           `envconfig:"ENLACEHUB_CRON_NOTIFICATION_RETENTION_DAYS" default:"30"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
