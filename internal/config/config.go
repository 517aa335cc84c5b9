package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	Provider Provider `envPrefix:"PROVIDER_"`
	Redis    Redis    `envPrefix:"REDIS_"`

	// Window during which repeat views of the same product by the same
	// viewer are not counted again.
	ViewSuppressionTTL time.Duration `env:"VIEW_SUPPRESSION_TTL" envDefault:"30s"`
}

// Provider holds payment-processor API credentials.
type Provider struct {
	BaseAPIURL   string        `env:"BASE_API_URL"`
	ClientID     string        `env:"CLIENT_ID"`
	ClientSecret string        `env:"CLIENT_SECRET"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

type Redis struct {
	Addr     string `env:"ADDR"` // empty: in-process suppression window
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
