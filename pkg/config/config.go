package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Session      SessionConfig
	Booking      BookingConfig
	GoogleMaps   GoogleMapsConfig
	Recaptcha    RecaptchaConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	CORS         CORSConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Booking.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BOOKING_APP_ENV" required:"true"`
	Port         string `envconfig:"BOOKING_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BOOKING_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"BOOKING_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"BOOKING_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"BOOKING_DB_DSN"`

	LegacyHost     string `envconfig:"BOOKING_DB_HOST"`
	LegacyPort     int    `envconfig:"BOOKING_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BOOKING_DB_USER"`
	LegacyPassword string `envconfig:"BOOKING_DB_PASSWORD"`
	LegacyName     string `envconfig:"BOOKING_DB_NAME"`
	LegacySSLMode  string `envconfig:"BOOKING_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BOOKING_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BOOKING_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BOOKING_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BOOKING_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"BOOKING_DB_SLOW_QUERY" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BOOKING_REDIS_URL"`
	Address      string        `envconfig:"BOOKING_REDIS_ADDR"`
	Password     string        `envconfig:"BOOKING_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOOKING_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOOKING_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOOKING_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOOKING_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOOKING_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOOKING_REDIS_WRITE_TIMEOUT" default:"5s"`
	KeyPrefix    string        `envconfig:"BOOKING_REDIS_KEY_PREFIX" default:"bk"`
}

// SessionConfig controls the signed booking session handles.
type SessionConfig struct {
	Secret   string        `envconfig:"BOOKING_SESSION_SECRET" required:"true"`
	Issuer   string        `envconfig:"BOOKING_SESSION_ISSUER" default:"booking-api"`
	TTL      time.Duration `envconfig:"BOOKING_SESSION_TTL" default:"6h"`
	LockTTL  time.Duration `envconfig:"BOOKING_SESSION_LOCK_TTL" default:"10s"`
	StateTTL time.Duration `envconfig:"BOOKING_SESSION_STATE_TTL" default:"6h"`
}

// BookingConfig holds the pricing constants that are not catalog data.
// A zero ContactForPriceSqft disables the contact-for-price override.
type BookingConfig struct {
	TaxRate             decimal.Decimal `envconfig:"BOOKING_TAX_RATE" default:"0.13"`
	ContactForPriceSqft int             `envconfig:"BOOKING_CONTACT_FOR_PRICE_SQFT" default:"5000"`
	QuantityMin         int             `envconfig:"BOOKING_QUANTITY_MIN" default:"1"`
	QuantityMax         int             `envconfig:"BOOKING_QUANTITY_MAX" default:"99"`
	CatalogCacheTTL     time.Duration   `envconfig:"BOOKING_CATALOG_CACHE_TTL" default:"5m"`
	StrictPricing       bool            `envconfig:"BOOKING_STRICT_PRICING" default:"false"`
	NotifyTimeout       time.Duration   `envconfig:"BOOKING_NOTIFY_TIMEOUT" default:"10s"`
}

func (b BookingConfig) validate() error {
	if b.TaxRate.IsNegative() || b.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s must be within [0, 1), got %s", EnvTaxRate, b.TaxRate.String())
	}
	if b.ContactForPriceSqft < 0 {
		return fmt.Errorf("%s must not be negative", EnvContactForPriceSqft)
	}
	if b.QuantityMin < 1 {
		return fmt.Errorf("%s must be at least 1", EnvQuantityMin)
	}
	if b.QuantityMax < b.QuantityMin {
		return fmt.Errorf("%s must be >= %s", EnvQuantityMax, EnvQuantityMin)
	}
	return nil
}

type GoogleMapsConfig struct {
	APIKey     string `envconfig:"BOOKING_GOOGLE_MAPS_API_KEY"`
	RegionCode string `envconfig:"BOOKING_GOOGLE_MAPS_REGION" default:"CA"`
}

type RecaptchaConfig struct {
	Enabled  bool    `envconfig:"BOOKING_RECAPTCHA_ENABLED" default:"false"`
	Secret   string  `envconfig:"BOOKING_RECAPTCHA_SECRET"`
	Action   string  `envconfig:"BOOKING_RECAPTCHA_ACTION" default:"submit_booking"`
	MinScore float64 `envconfig:"BOOKING_RECAPTCHA_MIN_SCORE" default:"0.5"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"BOOKING_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"BOOKING_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"BOOKING_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	BookingEventsTopic string        `envconfig:"BOOKING_PUBSUB_BOOKING_EVENTS_TOPIC" default:"booking-events"`
	PublishTimeout     time.Duration `envconfig:"BOOKING_PUBSUB_PUBLISH_TIMEOUT" default:"30s"`
}

type BigQueryConfig struct {
	Dataset       string `envconfig:"BOOKING_BIGQUERY_DATASET" default:"bookings"`
	BookingsTable string `envconfig:"BOOKING_BIGQUERY_BOOKINGS_TABLE" default:"booking_submissions"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"BOOKING_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type RateLimitConfig struct {
	SubmitWindow     time.Duration `envconfig:"BOOKING_RATE_LIMIT_SUBMIT_WINDOW" default:"10m"`
	SubmitIPLimit    int           `envconfig:"BOOKING_RATE_LIMIT_SUBMIT_IP_LIMIT" default:"10"`
	SubmitEmailLimit int           `envconfig:"BOOKING_RATE_LIMIT_SUBMIT_EMAIL_LIMIT" default:"3"`
}

type FeatureFlagsConfig struct {
	AutoMigrate   bool `envconfig:"BOOKING_AUTO_MIGRATE" default:"false"`
	Notifications bool `envconfig:"BOOKING_NOTIFICATIONS_ENABLED" default:"false"`
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
