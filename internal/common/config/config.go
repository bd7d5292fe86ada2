package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Postgres struct {
		Host            string        `env:"POSTGRES_HOST" envDefault:"localhost"`
		Port            int           `env:"POSTGRES_PORT" envDefault:"5432"`
		User            string        `env:"POSTGRES_USER" envDefault:"raffle"`
		Password        string        `env:"POSTGRES_PASSWORD" envDefault:""`
		Database        string        `env:"POSTGRES_DB" envDefault:"raffle"`
		SSLMode         string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
		MaxOpenConns    int           `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns    int           `env:"POSTGRES_MAX_IDLE_CONNS" envDefault:"5"`
		ConnMaxLifetime time.Duration `env:"POSTGRES_CONN_MAX_LIFETIME" envDefault:"30m"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Raffle struct {
		// Default reservation hold when the seller has no override.
		DefaultHoldDays int `env:"DEFAULT_HOLD_DAYS" envDefault:"5"`

		// Country calling code and national trunk prefix used by the
		// phone normalizer. Ecuador by default.
		CountryCode string `env:"PHONE_COUNTRY_CODE" envDefault:"593"`
		TrunkPrefix string `env:"PHONE_TRUNK_PREFIX" envDefault:"0"`

		// How often the background sweep demotes expired reservations.
		SweepInterval time.Duration `env:"RESERVATION_SWEEP_INTERVAL" envDefault:"1m"`
	}

	Storage struct {
		// Directory where transfer-proof images are written. Kept separate
		// from any voucher-image directory.
		ProofDir string `env:"PROOF_STORAGE_DIR" envDefault:"./data/proofs"`

		// Public base URL under which proof files are served.
		ProofBaseURL string `env:"PROOF_BASE_URL" envDefault:"http://localhost:8080/proofs"`
	}
}

func Load() *Config {
	// .env is optional; in production the variables are set directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}

// GetDSN builds the lib/pq connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Postgres.Host, c.Postgres.Port, c.Postgres.User,
		c.Postgres.Password, c.Postgres.Database, c.Postgres.SSLMode,
	)
}
