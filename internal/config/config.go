// Package config loads process-wide configuration once at startup.
//
// Configuration comes from an optional YAML file plus environment
// variables (env wins). The loaded struct is passed explicitly to the
// constructors that need it — no package-level globals, so tests can
// build any Config they want.
package config

import (
	"errors"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTPServer `yaml:"http_server"`
	Auth       `yaml:"auth"`
	DBPath     string `yaml:"db_path" env:"DB_PATH" env-default:"data/messagely.db"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	Timeout     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"15s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// Auth holds the security knobs.
//
// Secret signs every JWT and is the one setting with no default — the
// process refuses to start without it. BcryptCost tunes the hashing
// work factor (0 means the hasher's default). TokenTTL of zero issues
// non-expiring tokens, matching a deployment that prefers simplicity
// over forced re-login.
type Auth struct {
	Secret     string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	BcryptCost int           `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"12"`
	TokenTTL   time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"0"`
}

// Load reads configuration from the file named by CONFIG_PATH (when
// set) and the environment, in that order.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.New("config: file does not exist: " + path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, err
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
	}

	if cfg.Auth.Secret == "" {
		return nil, errors.New("config: JWT_SECRET is required")
	}

	return &cfg, nil
}
