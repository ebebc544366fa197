package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/t3-store/internal/entity"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	LogLevel   string          `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string          `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string          `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Storage    Storage         `yaml:"storage"`
	Redis      Redis           `yaml:"redis"`
	SQLite     SQLite          `yaml:"sqlite"`
	Postgres   Postgres        `yaml:"postgres"`
	Players    []entity.Player `yaml:"players"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
	Key    string `yaml:"key" env:"STORAGE_KEY" env-default:"live-t3-storage-key"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type SQLite struct {
	Path         string        `yaml:"path" env:"SQLITE_PATH" env-default:"t3.db?_busy_timeout=5000&_journal_mode=WAL"`
	PollInterval time.Duration `yaml:"poll-interval" env:"SQLITE_POLL_INTERVAL" env-default:"500ms"`
}

type Postgres struct {
	DSN string `yaml:"dsn" env:"POSTGRES_DSN"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	if len(config.Players) == 0 {
		config.Players = DefaultPlayers()
	}

	return config
}

// DefaultPlayers - the two players used when config.yml lists none.
func DefaultPlayers() []entity.Player {
	return []entity.Player{
		{ID: 1, Name: "Player 1", IconClass: "fa-x", ColorClass: "turquoise"},
		{ID: 2, Name: "Player 2", IconClass: "fa-o", ColorClass: "yellow"},
	}
}

func (that *Redis) GetRedisAddr() string {
	if that.Host == "" {
		return ""
	}

	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
