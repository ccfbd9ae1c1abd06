package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable, e.g. COURIERHUB_DB_DSN.
const EnvPrefix = "COURIERHUB"

type Config struct {
	HTTPPort        int           `envconfig:"HTTP_PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`

	DB    DBConfig
	Redis RedisConfig

	CommissionRate    decimal.Decimal `envconfig:"COMMISSION_RATE" default:"0.15"`
	MinimumWithdrawal int64           `envconfig:"MINIMUM_WITHDRAWAL" default:"1000"`
	DefaultZoneID     string          `envconfig:"DEFAULT_ZONE_ID" default:"00000000-0000-0000-0000-0000000000a1"`
	WebhookSecret     string          `envconfig:"WEBHOOK_SECRET" required:"true"`

	Credit CreditConfig
	Sweep  SweepConfig
}

type DBConfig struct {
	DSN             string        `envconfig:"DSN" required:"true"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional. Without a URL events are logged and the sweep runs unlocked.
type RedisConfig struct {
	URL     string        `envconfig:"URL"`
	Channel string        `envconfig:"CHANNEL" default:"courierhub.events"`
	LockTTL time.Duration `envconfig:"LOCK_TTL" default:"10m"`
}

type CreditConfig struct {
	Schedule   string        `envconfig:"SCHEDULE" default:"@every 5s"`
	Lease      time.Duration `envconfig:"LEASE" default:"2m"`
	BatchSize  int           `envconfig:"BATCH_SIZE" default:"50"`
	Workers    int           `envconfig:"WORKERS" default:"4"`
	MaxRetries int           `envconfig:"MAX_RETRIES" default:"3"`
	Backoff    time.Duration `envconfig:"BACKOFF" default:"1m"`
}

type SweepConfig struct {
	Schedule  string        `envconfig:"SCHEDULE" default:"@every 5m"`
	Window    time.Duration `envconfig:"WINDOW" default:"24h"`
	BatchSize int           `envconfig:"BATCH_SIZE" default:"500"`
}

// LoadConfig reads configuration in order: .env (if present), environment, flags.
func LoadConfig(args []string) (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	flags := pflag.NewFlagSet("courierhub", pflag.ContinueOnError)
	flags.IntVarP(&cfg.HTTPPort, "port", "p", cfg.HTTPPort, "port to listen on")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errList []error
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		errList = append(errList, fmt.Errorf("invalid port: %d", c.HTTPPort))
	}
	if c.WebhookSecret == "" {
		errList = append(errList, errors.New("webhook secret is required"))
	}
	if c.CommissionRate.IsNegative() || c.CommissionRate.GreaterThan(decimal.NewFromInt(1)) {
		errList = append(errList, fmt.Errorf("commission rate %s is outside [0, 1]", c.CommissionRate))
	}
	if c.MinimumWithdrawal <= 0 {
		errList = append(errList, fmt.Errorf("minimum withdrawal must be positive, got %d", c.MinimumWithdrawal))
	}
	if c.Credit.MaxRetries < 0 {
		errList = append(errList, fmt.Errorf("credit max retries must not be negative, got %d", c.Credit.MaxRetries))
	}
	return errors.Join(errList...)
}
