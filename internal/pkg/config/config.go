package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection,
//   gateway credentials), security settings
// - default: Values common across all environments (timeouts, worker knobs)
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
	Payment PaymentConfig
	Worker  WorkerConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

// PaymentConfig configures the external payment processor boundary.
type PaymentConfig struct {
	Provider      string        `envconfig:"PAYMENT_PROVIDER" default:"stub"`
	BaseURL       string        `envconfig:"PAYMENT_BASE_URL" default:""`
	APIKey        string        `envconfig:"PAYMENT_API_KEY" default:""`
	WebhookSecret string        `envconfig:"PAYMENT_WEBHOOK_SECRET" required:"true"`
	Currency      string        `envconfig:"PAYMENT_CURRENCY" default:"USD"`
	Timeout       time.Duration `envconfig:"PAYMENT_TIMEOUT" default:"10s"`
}

// WorkerConfig tunes the background loops. PendingTTL bounds how long an
// unconfirmed order may hold capacity before the reaper reclaims it.
type WorkerConfig struct {
	ReaperInterval      time.Duration `envconfig:"WORKER_REAPER_INTERVAL" default:"1m"`
	ReaperBatchSize     int           `envconfig:"WORKER_REAPER_BATCH_SIZE" default:"100"`
	PendingTTL          time.Duration `envconfig:"WORKER_PENDING_TTL" default:"15m"`
	NotifierInterval    time.Duration `envconfig:"WORKER_NOTIFIER_INTERVAL" default:"10s"`
	NotifierBatchSize   int           `envconfig:"WORKER_NOTIFIER_BATCH_SIZE" default:"50"`
	NotifierMaxAttempts int           `envconfig:"WORKER_NOTIFIER_MAX_ATTEMPTS" default:"5"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433",
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
		Log: LogConfig{
			Level:      "error",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: "1h",
		},
		Payment: PaymentConfig{
			Provider:      "stub",
			WebhookSecret: "test-webhook-secret",
			Currency:      "USD",
			Timeout:       5 * time.Second,
		},
		Worker: WorkerConfig{
			ReaperInterval:      time.Minute,
			ReaperBatchSize:     100,
			PendingTTL:          15 * time.Minute,
			NotifierInterval:    10 * time.Second,
			NotifierBatchSize:   50,
			NotifierMaxAttempts: 5,
		},
	}
}
