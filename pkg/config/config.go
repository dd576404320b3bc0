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
	FeatureFlags FeatureFlagsConfig
	Stripe       StripeConfig
	Payouts      PayoutsConfig
	Tickets      TicketsConfig
	Documents    DocumentsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Payouts.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BOXOFFICE_APP_ENV" required:"true"`
	Port         string `envconfig:"BOXOFFICE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BOXOFFICE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BOXOFFICE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BOXOFFICE_DB_DSN"`
	Driver string `envconfig:"BOXOFFICE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BOXOFFICE_DB_HOST"`
	LegacyPort     int    `envconfig:"BOXOFFICE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BOXOFFICE_DB_USER"`
	LegacyPassword string `envconfig:"BOXOFFICE_DB_PASSWORD"`
	LegacyName     string `envconfig:"BOXOFFICE_DB_NAME"`
	LegacySSLMode  string `envconfig:"BOXOFFICE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BOXOFFICE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BOXOFFICE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BOXOFFICE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BOXOFFICE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BOXOFFICE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BOXOFFICE_REDIS_ADDR"`
	Password     string        `envconfig:"BOXOFFICE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOXOFFICE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOXOFFICE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOXOFFICE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOXOFFICE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOXOFFICE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOXOFFICE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BOXOFFICE_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey string `envconfig:"BOXOFFICE_STRIPE_API_KEY"`
	Secret string `envconfig:"BOXOFFICE_STRIPE_SECRET"`
	Env    string `envconfig:"BOXOFFICE_STRIPE_ENV" default:"test"`

	// WebhookEventTTL bounds how long processed gateway event ids are
	// remembered for duplicate suppression.
	WebhookEventTTL time.Duration `envconfig:"BOXOFFICE_STRIPE_WEBHOOK_EVENT_TTL" default:"72h"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type PayoutsConfig struct {
	// DestinationAccount is the connected account that receives the
	// proportional fee transfer for every confirmed order.
	DestinationAccount string `envconfig:"BOXOFFICE_PAYOUT_DESTINATION_ACCOUNT"`

	// FeePercent is the share of an order total moved to the destination
	// account, expressed as a percentage (4 means 4%).
	FeePercent float64 `envconfig:"BOXOFFICE_PAYOUT_FEE_PERCENT" default:"4"`
}

func (p PayoutsConfig) validate() error {
	if p.FeePercent < 0 || p.FeePercent > 100 {
		return fmt.Errorf("payout fee percent must be within [0, 100], got %v", p.FeePercent)
	}
	return nil
}

type TicketsConfig struct {
	// DefaultBundleMultiplier is used when a bundle tier does not declare
	// its own multiplier.
	DefaultBundleMultiplier int `envconfig:"BOXOFFICE_TICKETS_BUNDLE_MULTIPLIER" default:"3"`
}

type DocumentsConfig struct {
	EmbedScanPayload bool `envconfig:"BOXOFFICE_DOCUMENTS_EMBED_SCAN_PAYLOAD" default:"true"`
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
