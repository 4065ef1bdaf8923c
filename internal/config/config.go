package config

import "time"

// Backend names for the message store.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// StoreBackend selects the persistence adapter: sqlite or json.
	StoreBackend string `mapstructure:"store_backend" yaml:"store_backend"`
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`
	DataDir      string `mapstructure:"data_dir" yaml:"data_dir"`

	// SubmitPerMinute caps message submissions per user per minute. 0 disables
	// the limit.
	SubmitPerMinute int `mapstructure:"submit_per_minute" yaml:"submit_per_minute"`

	JWTSecret   string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTTTL      time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		StoreBackend:      BackendSQLite,
		DatabasePath:      "tablon.db",
		DataDir:           "data",
		SubmitPerMinute:   10,
		JWTSecret:         "change-me",
		JWTIssuer:         "tablon-server",
		JWTAudience:       "tablon",
		JWTTTL:            24 * time.Hour,
	}
}
