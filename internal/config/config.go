package config

type Config interface {
	EnvConfig
	AuthConfig
}

type EnvConfig interface {
	GetBaseURL() string
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Auth
}

func New() Config {
	return mainConfig{}
}
