package config

// EnvPrefix is passed to envconfig; the explicit tags already carry it.
const EnvPrefix = "DRIVEHUB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "DRIVEHUB_APP_ENV"
	EnvPort                   = "DRIVEHUB_APP_PORT"
	EnvRedisURL               = "DRIVEHUB_REDIS_URL"
	EnvJWTSecret              = "DRIVEHUB_JWT_SECRET"
	EnvJWTIssuer              = "DRIVEHUB_JWT_ISSUER"
	EnvJWTExpMins             = "DRIVEHUB_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "DRIVEHUB_REFRESH_TOKEN_TTL_MINUTES"
)

const (
	EnvDBDSN  = "DRIVEHUB_DB_DSN"
	EnvDBHost = "DRIVEHUB_DB_HOST"
	EnvDBUser = "DRIVEHUB_DB_USER"
	EnvDBName = "DRIVEHUB_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
