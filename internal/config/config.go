package config

type Config interface {
	EnvConfig
	ClientConfig
	StoreConfig
	CorsConfig
	DevServerConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetBaseURL() string
	GetPort() string
	GetMetricsAddr() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Client
	Store
	Cors
	DevServer
}

func New() Config {
	return mainConfig{}
}
