package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Mahbub-Sajon/srs-publications-server/pkg/env"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	SSLCommerz   SSLCommerzConfig
	Storefront   StorefrontConfig
	Pricing      PricingConfig
	RateLimit    RateLimitConfig
	Idempotency  IdempotencyConfig
	Reconcile    ReconcileConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	cfg.App.ensurePort()
	cfg.SSLCommerz.ensureCredentials()
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SRS_APP_ENV" default:"dev"`
	Port         string `envconfig:"SRS_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"SRS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SRS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// ensurePort honours the bare PORT variable hosting platforms inject when the
// prefixed one is absent.
func (a *AppConfig) ensurePort() {
	if env.Get(EnvPort, "") == "" {
		a.Port = env.Get(EnvLegacyPort, a.Port)
	}
}

type ServiceConfig struct {
	Kind string `envconfig:"SRS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SRS_DB_DSN"`
	Driver string `envconfig:"SRS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SRS_DB_HOST"`
	LegacyPort     int    `envconfig:"SRS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SRS_DB_USER"`
	LegacyPassword string `envconfig:"SRS_DB_PASSWORD"`
	LegacyName     string `envconfig:"SRS_DB_NAME"`
	LegacySSLMode  string `envconfig:"SRS_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"SRS_SQLITE_PATH" default:"srs.db"`

	MaxOpenConns    int           `envconfig:"SRS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SRS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SRS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SRS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional for the API. Leaving both URL and Address empty
// disables idempotency replay and rate limiting.
type RedisConfig struct {
	URL          string        `envconfig:"SRS_REDIS_URL"`
	Address      string        `envconfig:"SRS_REDIS_ADDR"`
	Password     string        `envconfig:"SRS_REDIS_PASSWORD"`
	DB           int           `envconfig:"SRS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SRS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SRS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SRS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SRS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SRS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SRS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SRS_AUTO_MIGRATE" default:"false"`
}

type SSLCommerzConfig struct {
	StoreID       string        `envconfig:"SRS_SSLCOMMERZ_STORE_ID"`
	StorePassword string        `envconfig:"SRS_SSLCOMMERZ_STORE_PASSWORD"`
	Sandbox       bool          `envconfig:"SRS_SSLCOMMERZ_SANDBOX" default:"true"`
	BaseURL       string        `envconfig:"SRS_SSLCOMMERZ_BASE_URL"`
	Currency      string        `envconfig:"SRS_SSLCOMMERZ_CURRENCY" default:"BDT"`
	Timeout       time.Duration `envconfig:"SRS_SSLCOMMERZ_TIMEOUT" default:"30s"`

	// VerifySignature checks verify_sign on callbacks and IPN posts.
	VerifySignature bool `envconfig:"SRS_SSLCOMMERZ_VERIFY_SIGNATURE" default:"false"`
	// ValidateCallbacks asks the gateway validator API about val_id before confirming.
	ValidateCallbacks bool `envconfig:"SRS_SSLCOMMERZ_VALIDATE_CALLBACKS" default:"false"`
}

const (
	sslcommerzSandboxURL = "https://sandbox.sslcommerz.com"
	sslcommerzLiveURL    = "https://securepay.sslcommerz.com"
)

// Endpoint returns the gateway host to talk to.
func (s SSLCommerzConfig) Endpoint() string {
	if base := strings.TrimSpace(s.BaseURL); base != "" {
		return strings.TrimRight(base, "/")
	}
	if s.Sandbox {
		return sslcommerzSandboxURL
	}
	return sslcommerzLiveURL
}

func (s SSLCommerzConfig) HasCredentials() bool {
	return s.StoreID != "" && s.StorePassword != ""
}

func (s *SSLCommerzConfig) ensureCredentials() {
	if s.StoreID == "" {
		s.StoreID = env.Get(EnvLegacyStoreID, "")
	}
	if s.StorePassword == "" {
		s.StorePassword = env.Get(EnvLegacyStorePassword, "")
	}
}

type StorefrontConfig struct {
	ServerBaseURL   string   `envconfig:"SRS_SERVER_BASE_URL" default:"https://srs-publications-server.vercel.app"`
	FrontendBaseURL string   `envconfig:"SRS_FRONTEND_BASE_URL" default:"https://srs-publications-b3f6c.web.app"`
	AllowedOrigins  []string `envconfig:"SRS_CORS_ALLOWED_ORIGINS" default:"*"`
}

func (s StorefrontConfig) ServerURL(path string) string {
	return strings.TrimRight(s.ServerBaseURL, "/") + path
}

func (s StorefrontConfig) FrontendURL(path string) string {
	return strings.TrimRight(s.FrontendBaseURL, "/") + path
}

type PricingConfig struct {
	// DiscountRate is the flat fraction taken off every order total. Zero disables it.
	DiscountRate float64 `envconfig:"SRS_ORDER_DISCOUNT_RATE" default:"0.15"`
}

func (p PricingConfig) validate() error {
	if p.DiscountRate < 0 || p.DiscountRate >= 1 {
		return fmt.Errorf("%s must be in [0, 1), got %v", EnvOrderDiscountRate, p.DiscountRate)
	}
	return nil
}

type RateLimitConfig struct {
	PaymentWindow  time.Duration `envconfig:"SRS_RATE_LIMIT_PAYMENT_WINDOW" default:"1m"`
	PaymentIPLimit int           `envconfig:"SRS_RATE_LIMIT_PAYMENT_IP_LIMIT" default:"10"`
}

type IdempotencyConfig struct {
	TTL    time.Duration `envconfig:"SRS_IDEMPOTENCY_TTL" default:"24h"`
	IPNTTL time.Duration `envconfig:"SRS_IPN_DEDUPE_TTL" default:"72h"`
}

type ReconcileConfig struct {
	MinAge     time.Duration `envconfig:"SRS_RECONCILE_MIN_AGE" default:"30m"`
	BatchSize  int           `envconfig:"SRS_RECONCILE_BATCH_SIZE" default:"50"`
	Interval   time.Duration `envconfig:"SRS_CRON_INTERVAL" default:"5m"`
	JobTimeout time.Duration `envconfig:"SRS_CRON_JOB_TIMEOUT" default:"4m"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SRS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"SRS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SRS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic string `envconfig:"SRS_PUBSUB_DOMAIN_TOPIC" default:"srs-domain-events"`
}

type BigQueryConfig struct {
	Dataset        string `envconfig:"SRS_BIGQUERY_DATASET"`
	SnapshotsTable string `envconfig:"SRS_BIGQUERY_SNAPSHOTS_TABLE" default:"sales_snapshots"`
}

func (b BigQueryConfig) Enabled() bool {
	return strings.TrimSpace(b.Dataset) != ""
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SRS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SRS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SRS_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DriverSQLite
		return nil
	}
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
