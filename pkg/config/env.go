package config

const EnvPrefix = "SRS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Environment variable names. Kept in one place so binaries and tests agree.
const (
	EnvAppEnv   = "SRS_APP_ENV"
	EnvPort     = "SRS_APP_PORT"
	EnvLogLevel = "SRS_LOG_LEVEL"

	EnvDBDSN  = "SRS_DB_DSN"
	EnvDBHost = "SRS_DB_HOST"
	EnvDBUser = "SRS_DB_USER"
	EnvDBName = "SRS_DB_NAME"

	EnvUseSQLite   = "SRS_USE_SQLITE"
	EnvAutoMigrate = "SRS_AUTO_MIGRATE"

	EnvRedisURL = "SRS_REDIS_URL"

	EnvSSLCommerzStoreID       = "SRS_SSLCOMMERZ_STORE_ID"
	EnvSSLCommerzStorePassword = "SRS_SSLCOMMERZ_STORE_PASSWORD"
	EnvSSLCommerzSandbox       = "SRS_SSLCOMMERZ_SANDBOX"

	EnvFrontendBaseURL   = "SRS_FRONTEND_BASE_URL"
	EnvOrderDiscountRate = "SRS_ORDER_DISCOUNT_RATE"
	EnvBigQueryDataset   = "SRS_BIGQUERY_DATASET"

	// Names used by earlier deployments of the storefront server.
	EnvLegacyPort          = "PORT"
	EnvLegacyStoreID       = "STORE_ID"
	EnvLegacyStorePassword = "STORE_PASSWORD"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
