package myconfig

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	EnvironmentDev     = "dev"
	EnvironmentSandbox = "sandbox"
	EnvironmentProd    = "prod"
)

// Config carries the SDK-wide settings. Everything is read from the
// environment so host apps can configure the core without code changes.
type Config struct {
	Environment          string        `env:"VIO_ENVIRONMENT" envDefault:"dev"`
	Port                 string        `env:"PORT" envDefault:"8080"`
	StripePublishableKey string        `env:"VIO_STRIPE_PUBLISHABLE_KEY"`
	KlarnaNativeEnabled  bool          `env:"VIO_KLARNA_NATIVE" envDefault:"true"`
	KlarnaReturnURL      string        `env:"VIO_KLARNA_RETURN_URL" envDefault:"http://localhost:8080/checkout/return"`
	VippsReturnURL       string        `env:"VIO_VIPPS_RETURN_URL" envDefault:"http://localhost:8080/checkout/return"`
	SuccessURL           string        `env:"VIO_CHECKOUT_SUCCESS_URL" envDefault:"http://localhost:8080/checkout/return/success"`
	CancelURL            string        `env:"VIO_CHECKOUT_CANCEL_URL" envDefault:"http://localhost:8080/checkout/return/cancel"`
	ComponentsBaseURL    string        `env:"VIO_COMPONENTS_BASE_URL"`
	ComponentsAPIToken   string        `env:"VIO_COMPONENTS_API_TOKEN"`
	PaymentMethods       []string      `env:"VIO_PAYMENT_METHODS" envSeparator:","`
	VippsPollInterval    time.Duration `env:"VIO_VIPPS_POLL_INTERVAL" envDefault:"2s"`
}

func Parse() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether demo prefill defaults may be used.
func (c Config) IsDevelopment() bool {
	return c.Environment == EnvironmentDev || c.Environment == EnvironmentSandbox
}
