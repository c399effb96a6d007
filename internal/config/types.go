package config

// ConfigLogger holds the logging settings.
type ConfigLogger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ConfigStorage selects and parameterizes the persistence backend.
type ConfigStorage struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

// ConfigApp holds the settings of the interactive command layer.
type ConfigApp struct {
	Language string `mapstructure:"language"`
	PageSize int    `mapstructure:"page_size"`
}

// ConfigServer holds the settings of the HTTP service.
type ConfigServer struct {
	Port                    int    `mapstructure:"port"`
	GinLogging              bool   `mapstructure:"gin_logging"`
	Autosave                bool   `mapstructure:"autosave"`
	RateLimitRPS            int    `mapstructure:"rate_limit_rps"`
	RateLimitBurst          int    `mapstructure:"rate_limit_burst"`
	CORSAllowedOrigins      string `mapstructure:"cors_allowed_origins"`
	GracefulShutdownTimeout int    `mapstructure:"graceful_shutdown_timeout"`
}

// Config is the complete application configuration.
type Config struct {
	Logger  *ConfigLogger  `mapstructure:"logger"`
	Storage *ConfigStorage `mapstructure:"storage"`
	App     *ConfigApp     `mapstructure:"app"`
	Server  *ConfigServer  `mapstructure:"server"`
}
