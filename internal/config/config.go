package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerAddress string `envconfig:"SERVER_ADDRESS" default:"0.0.0.0:8095"`
	PostgresConn  string `envconfig:"POSTGRES_CONN" required:"true"`
	MigrationsDir string `envconfig:"MIGRATIONS_DIR" default:"./migrations"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Лимиты запросов: минутный считает все методы, дневной только GET
	RateMinuteLimit int `envconfig:"RATE_MINUTE_LIMIT" default:"60"`
	RateDayLimit    int `envconfig:"RATE_DAY_LIMIT" default:"1000"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
