package config

type Config interface {
	EnvConfig
	BackendConfig
	SessionConfig
	CorsConfig
	OAuthConfig
}

type mainConfig struct {
	EnvVars
	Backend
	Session
	Cors
	OAuth
}

func New() Config {
	return mainConfig{}
}
