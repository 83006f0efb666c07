package config

const (
	EnvPrefix = "ENLACEHUB"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv   = "ENLACEHUB_APP_ENV"
	EnvPort     = "ENLACEHUB_APP_PORT"
	EnvDBDSN    = "ENLACEHUB_DB_DSN"
	EnvDBHost   = "ENLACEHUB_DB_HOST"
	EnvDBUser   = "ENLACEHUB_DB_USER"
	EnvDBName   = "ENLACEHUB_DB_NAME"
	EnvRedisURL = "ENLACEHUB_REDIS_URL"

	EnvJWTSecret = "ENLACEHUB_JWT_SECRET"
	EnvJWTIssuer = "ENLACEHUB_JWT_ISSUER"

	EnvStripeAPIKey        = "ENLACEHUB_STRIPE_API_KEY"
	EnvStripeWebhookSecret = "ENLACEHUB_STRIPE_WEBHOOK_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
