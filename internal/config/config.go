package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel       string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort       string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	JWTSecretKey   string        `yaml:"jwt-secret-key" env:"JWT_SECRET_KEY"`
	TokenTTL       time.Duration `yaml:"token-ttl" env:"TOKEN_TTL" env-default:"24h"`
	AllowedOrigins []string      `yaml:"allowed-origins" env:"ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`
	Redis          Redis         `yaml:"redis"`
	Postgres       Postgres      `yaml:"postgres"`
	Engine         Engine        `yaml:"engine"`
	Archive        Archive       `yaml:"archive"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Postgres struct {
	DSN string `yaml:"dsn" env:"DATABASE_URL"`
}

type Engine struct {
	// MaxTxRetries bounds optimistic transaction retries per mutation.
	MaxTxRetries int `yaml:"max-tx-retries" env:"ENGINE_MAX_TX_RETRIES" env-default:"16"`
}

type Archive struct {
	SweepInterval time.Duration `yaml:"sweep-interval" env:"ARCHIVE_SWEEP_INTERVAL" env-default:"1m"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
