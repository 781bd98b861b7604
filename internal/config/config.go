package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:5173"` // fallback origin for paypal return/cancel urls
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite://bookclub.db"`

	Paypal       Paypal       `envPrefix:"PAYPAL_"`
	Auth         Auth         `envPrefix:"AUTH_"`
	Subscription Subscription `envPrefix:"SUBSCRIPTION_"`
}

type Paypal struct {
	BaseApiURL   string        `env:"BASE_API_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	ClientID     string        `env:"CLIENT_ID"`
	ClientSecret string        `env:"CLIENT_SECRET"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"30s"`

	// capture orders that come back APPROVED before checking for COMPLETED
	CaptureApproved bool `env:"CAPTURE_APPROVED" envDefault:"false"`

	Breaker Breaker `envPrefix:"BREAKER_"`
}

type Breaker struct {
	Enabled          bool          `env:"ENABLED" envDefault:"true"`
	MaxRequests      uint32        `env:"MAX_REQUESTS" envDefault:"1"`
	Interval         time.Duration `env:"INTERVAL" envDefault:"60s"`
	Timeout          time.Duration `env:"TIMEOUT" envDefault:"30s"`
	FailureThreshold uint32        `env:"FAILURE_THRESHOLD" envDefault:"5"`
}

type Auth struct {
	JWTSecret   string `env:"JWT_SECRET"`
	JWTAudience string `env:"JWT_AUDIENCE" envDefault:"authenticated"`
}

type Subscription struct {
	// match pending rows on the verified paypal order id instead of "latest pending for user"
	MatchOrderID bool `env:"MATCH_ORDER_ID" envDefault:"false"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

func (e Environment) IsDevelopment() bool {
	return e.Name == "development"
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
