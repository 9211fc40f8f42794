package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type (
	Config struct {
		HTTP      HTTP      `envPrefix:"HTTP_"`
		Logger    Logger    `envPrefix:"LOGGER_"`
		Telemetry Telemetry `envPrefix:"TELEMETRY_"`
		Cache     Cache     `envPrefix:"CACHE_"`
		Redis     Redis     `envPrefix:"REDIS_"`
		Upstream  Upstream  `envPrefix:"UPSTREAM_"`
		Offline   Offline   `envPrefix:"OFFLINE_"`
	}

	HTTP struct {
		Server  Server        `envPrefix:"SERVER_"`
		Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
	}

	Server struct {
		Port         string        `env:"PORT" envDefault:"8080"`
		ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
		IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	}

	Logger struct {
		Level       string `env:"LEVEL" envDefault:"info"`
		Development bool   `env:"DEVELOPMENT" envDefault:"false"`
	}

	Telemetry struct {
		Enabled        bool   `env:"ENABLED" envDefault:"false"`
		ServiceName    string `env:"SERVICE_NAME" envDefault:"guide-helper-offline"`
		ServiceVersion string `env:"SERVICE_VERSION" envDefault:"1.0.0"`
		Environment    string `env:"ENVIRONMENT" envDefault:"production"`
		OTLPEndpoint   string `env:"OTLP_ENDPOINT" envDefault:"otel-collector.observability.svc.cluster.local:4317"`
	}

	Cache struct {
		// Type is one of memory, map, sqlite, redis, file, disabled.
		Type          string `env:"TYPE" envDefault:"sqlite"`
		SQLitePath    string `env:"SQLITE_PATH" envDefault:"file:offline.db?cache=shared"`
		FileDir       string `env:"FILE_DIR" envDefault:"./cache"`
		MemoryEntries int    `env:"MEMORY_ENTRIES" envDefault:"2000"`
	}

	Redis struct {
		Addr     string `env:"ADDR" envDefault:"localhost:6379"`
		Password string `env:"PASSWORD" envDefault:""`
		DB       int    `env:"DB" envDefault:"0"`
		// TTL only applies to entries stored without an expiry; 0 means none.
		TTL time.Duration `env:"TTL" envDefault:"0"`
	}

	Upstream struct {
		// Template is used when a request does not name its own URL template.
		Template  string        `env:"TEMPLATE" envDefault:"https://tile.openstreetmap.org/{z}/{x}/{y}.png"`
		UserAgent string        `env:"USER_AGENT" envDefault:"GuideHelper/1.0 (https://github.com/jaennil/guide_helper)"`
		Referer   string        `env:"REFERER" envDefault:""`
		Timeout   time.Duration `env:"TIMEOUT" envDefault:"30s"`
	}

	Offline struct {
		// TileCountLimit caps the number of tiles in one region; 0 disables the cap.
		TileCountLimit int           `env:"TILE_COUNT_LIMIT" envDefault:"6000"`
		SeedWorkers    int           `env:"SEED_WORKERS" envDefault:"4"`
		Expiry         time.Duration `env:"EXPIRY" envDefault:"8760h"`
	}
)

func New() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Printf("NOTICE: .env file not found or cannot be loaded: %v\n", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
