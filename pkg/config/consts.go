package config

const (
	// EnvPrefix is the envconfig namespace every variable lives under.
	EnvPrefix = "BOXOFFICE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "BOXOFFICE_DB_DSN"
	EnvDBHost = "BOXOFFICE_DB_HOST"
	EnvDBUser = "BOXOFFICE_DB_USER"
	EnvDBName = "BOXOFFICE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
