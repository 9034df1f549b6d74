package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает настройки процесса (сеть, внешние адаптеры, брокер, трейсинг).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"lesson-booking"`

	GRPCAddr string `envconfig:"GRPC_ADDR" default:":50051"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// таймаут на любой вызов календаря/платёжки, он же для компенсаций
	AdapterTimeout time.Duration `envconfig:"ADAPTER_TIMEOUT" default:"10s"`

	CalendarAPIURL string `envconfig:"CALENDAR_API_URL" default:"https://www.googleapis.com/calendar/v3"`

	OmisePublicKey string `envconfig:"OMISE_PUBLIC_KEY"`
	OmiseSecretKey string `envconfig:"OMISE_SECRET_KEY"`

	// пустой RABBIT_URL отключает публикацию событий
	RabbitURL       string `envconfig:"RABBIT_URL"`
	BookingExchange string `envconfig:"BOOKING_EXCHANGE" default:"booking.events"`

	// пустой endpoint отключает трейсинг
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	ExpirySweepInterval time.Duration `envconfig:"EXPIRY_SWEEP_INTERVAL" default:"1m"`
}

func LoadAppConfig() (*AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load app config: %w", err)
	}

	if cfg.AdapterTimeout <= 0 {
		return nil, fmt.Errorf("invalid app config: ADAPTER_TIMEOUT must be positive")
	}
	if cfg.ExpirySweepInterval < 0 {
		return nil, fmt.Errorf("invalid app config: EXPIRY_SWEEP_INTERVAL must not be negative")
	}

	return &cfg, nil
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// PaymentsEnabled: заданы ли оба ключа Omise.
func (c *AppConfig) PaymentsEnabled() bool {
	return c.OmisePublicKey != "" && c.OmiseSecretKey != ""
}
