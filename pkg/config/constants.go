package config

const (
	EnvPrefix = "BOOKING"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "BOOKING_APP_ENV"
	EnvPort   = "BOOKING_APP_PORT"

	EnvDBDSN  = "BOOKING_DB_DSN"
	EnvDBHost = "BOOKING_DB_HOST"
	EnvDBUser = "BOOKING_DB_USER"
	EnvDBName = "BOOKING_DB_NAME"

	EnvRedisURL      = "BOOKING_REDIS_URL"
	EnvSessionSecret = "BOOKING_SESSION_SECRET"

	EnvTaxRate             = "BOOKING_TAX_RATE"
	EnvContactForPriceSqft = "BOOKING_CONTACT_FOR_PRICE_SQFT"
	EnvQuantityMin         = "BOOKING_QUANTITY_MIN"
	EnvQuantityMax         = "BOOKING_QUANTITY_MAX"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
