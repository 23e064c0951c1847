package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	JWT struct {
		Secret string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Identity struct {
		TokenURL        string `env:"TOKEN_URL,required"`
		ClientID        string `env:"CLIENT_ID,required"`
		ClientSecret    string `env:"CLIENT_SECRET,required"`
		RefreshInterval int    `env:"REFRESH_INTERVAL" envDefault:"240"` // seconds
		RequestTimeout  int    `env:"REQUEST_TIMEOUT" envDefault:"10"`
	} `envPrefix:"IDENTITY_"`
	Services struct {
		UsersBaseURL     string `env:"USERS_BASE_URL,required"`
		ShiftsBaseURL    string `env:"SHIFTS_BASE_URL,required"`
		SchedulesBaseURL string `env:"SCHEDULES_BASE_URL,required"`
		RequestTimeout   int    `env:"REQUEST_TIMEOUT" envDefault:"15"`
	} `envPrefix:"SERVICES_"`
	Wizard struct {
		SessionTTL    int `env:"SESSION_TTL" envDefault:"3600"` // seconds
		SweepInterval int `env:"SWEEP_INTERVAL" envDefault:"300"`
	} `envPrefix:"WIZARD_"`
	Redis struct {
		Host             string `env:"HOST" envDefault:"localhost"`
		Port             int    `env:"PORT" envDefault:"6379"`
		Password         string `env:"PASSWORD,required"`
		ConnectTimeout   int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationTimeout int    `env:"OPERATION_TIMEOUT" envDefault:"10"`
		TemplateCacheTTL int    `env:"TEMPLATE_CACHE_TTL" envDefault:"300"` // seconds
	} `envPrefix:"REDIS_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Email struct {
		SMTP struct {
			Username    string `env:"USERNAME,required"`
			Password    string `env:"PASSWORD,required"`
			Host        string `env:"HOST,required"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
}

func LoadConfig() (*Config, error) {
	// A missing .env file is fine, the environment may be set directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// Only return the first error to keep the log readable.
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}
