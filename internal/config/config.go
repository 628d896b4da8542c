package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server struct {
		Port            int           `envconfig:"PORT" default:"8080"`
		ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	}

	DB struct {
		Driver string `envconfig:"DATABASE_DRIVER" default:"sqlite"`
		Path   string `envconfig:"DATABASE_PATH" default:"co2ledger.db"`
		URL    string `envconfig:"DATABASE_URL"`
	}

	Ledger struct {
		TankCapacityKg decimal.Decimal      `envconfig:"TANK_CAPACITY_KG" default:"3200"`
		LookaheadDays  int                  `envconfig:"MAINTENANCE_LOOKAHEAD_DAYS" default:"90"`
		PairingPolicy  domain.PairingPolicy `envconfig:"PAIRING_POLICY" default:"warn"`
		Timezone       string               `envconfig:"TIMEZONE" default:"Local"`
	}

	Log struct {
		Format string `envconfig:"LOG_FORMAT" default:"text"`
	}
}

// Lookahead is the window in which a hydrostatic test counts as due.
func (c *Config) Lookahead() time.Duration {
	return time.Duration(c.Ledger.LookaheadDays) * 24 * time.Hour
}

// Location resolves the business timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Ledger.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Ledger.Timezone, err)
	}
	return loc, nil
}

// Load reads the given .env files (".env" by default, skipped when absent)
// and then the environment. Variables already set win over file values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if c.DB.URL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q (use sqlite, postgres or memory)", c.DB.Driver)
	}

	if !c.Ledger.TankCapacityKg.IsPositive() {
		return errors.New("TANK_CAPACITY_KG must be greater than zero")
	}
	if c.Ledger.LookaheadDays < 0 {
		return errors.New("MAINTENANCE_LOOKAHEAD_DAYS must not be negative")
	}
	if !c.Ledger.PairingPolicy.Valid() {
		return fmt.Errorf("unsupported PAIRING_POLICY %q (use warn or reject)", c.Ledger.PairingPolicy)
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT %q (use text or json)", c.Log.Format)
	}
	return nil
}
