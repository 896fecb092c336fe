package config

const EnvPrefix = "SWEETSHOP"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:sweets.db?_foreign_keys=on"
)

const (
	EnvAppEnv      = "SWEETSHOP_APP_ENV"
	EnvPort        = "SWEETSHOP_APP_PORT"
	EnvLogLevel    = "SWEETSHOP_LOG_LEVEL"
	EnvDBDSN       = "SWEETSHOP_DB_DSN"
	EnvDBDriver    = "SWEETSHOP_DB_DRIVER"
	EnvDBHost      = "SWEETSHOP_DB_HOST"
	EnvDBPort      = "SWEETSHOP_DB_PORT"
	EnvDBUser      = "SWEETSHOP_DB_USER"
	EnvDBPassword  = "SWEETSHOP_DB_PASSWORD"
	EnvDBName      = "SWEETSHOP_DB_NAME"
	EnvRedisURL    = "SWEETSHOP_REDIS_URL"
	EnvJWTSecret   = "SWEETSHOP_JWT_SECRET"
	EnvJWTIssuer   = "SWEETSHOP_JWT_ISSUER"
	EnvJWTExpMins  = "SWEETSHOP_JWT_EXPIRATION_MINUTES"
	EnvBcryptCost  = "SWEETSHOP_BCRYPT_COST"
	EnvAdminEmail  = "SWEETSHOP_ADMIN_EMAIL"
	EnvCORSOrigins = "SWEETSHOP_CORS_ALLOWED_ORIGINS"
	EnvAutoMigrate = "SWEETSHOP_AUTO_MIGRATE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
