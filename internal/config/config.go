package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Task backends selectable through TASK_BACKEND.
const (
	TaskBackendMemory = "memory"
	TaskBackendMongo  = "mongo"
)

var (
	ErrParsingConfig      = errors.New("failed to parse configuration")
	ErrUnknownTaskBackend = errors.New("unknown task backend")
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string        `env:"DB_HOST"`
	Port               string        `env:"DB_PORT" envDefault:"5432"`
	User               string        `env:"DB_USER"`
	Password           string        `env:"DB_PASSWORD"`
	Name               string        `env:"DB_NAME"`
	SSLMode            string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns       int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns       int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetimeSec int           `env:"DB_CONN_MAX_LIFETIME_SEC" envDefault:"300"`
	ConnectTimeout     time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"5s"`
}

// MongoConfig holds document store settings. The tasks and payment events live in
// separate collections of the same database.
type MongoConfig struct {
	URI              string        `env:"MONGO_URI"`
	Database         string        `env:"MONGO_DATABASE" envDefault:"taskapi"`
	TasksCollection  string        `env:"MONGO_TASKS_COLLECTION" envDefault:"tasks"`
	EventsCollection string        `env:"MONGO_EVENTS_COLLECTION" envDefault:"payment_events"`
	ConnectTimeout   time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
	MaxPoolSize      uint64        `env:"MONGO_MAX_POOL_SIZE" envDefault:"100"`
	MinPoolSize      uint64        `env:"MONGO_MIN_POOL_SIZE" envDefault:"1"`
	RetryAttempts    int           `env:"MONGO_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval    time.Duration `env:"MONGO_RETRY_INTERVAL" envDefault:"2s"`
}

// MinIOConfig holds object storage settings for payment receipts.
// Receipts are disabled when Endpoint is empty.
type MinIOConfig struct {
	Endpoint      string        `env:"MINIO_ENDPOINT"`
	AccessKey     string        `env:"MINIO_ACCESS_KEY"`
	SecretKey     string        `env:"MINIO_SECRET_KEY"`
	Bucket        string        `env:"MINIO_BUCKET" envDefault:"receipts"`
	UseSSL        bool          `env:"MINIO_USE_SSL" envDefault:"false"`
	PresignExpiry time.Duration `env:"MINIO_PRESIGN_EXPIRY" envDefault:"15m"`
}

// Enabled reports whether receipt storage was configured.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost          string        `env:"APP_HOST" envDefault:"localhost:8080"`
	Port             string        `env:"PORT" envDefault:"8080"`
	Timezone         string        `env:"APP_TIMEZONE" envDefault:"UTC"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	TaskBackend      string        `env:"TASK_BACKEND" envDefault:"memory"`
	CORSAllowOrigins string        `env:"CORS_ALLOW_ORIGINS" envDefault:"http://localhost:5173"`
	OpTimeout        time.Duration `env:"REPOSITORY_OP_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Database DatabaseConfig
	Mongo    MongoConfig
	MinIO    MinIOConfig
}

// Location resolves Timezone, falling back to UTC for unknown names.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() (*AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}

	switch cfg.TaskBackend {
	case TaskBackendMemory, TaskBackendMongo:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTaskBackend, cfg.TaskBackend)
	}

	return &cfg, nil
}
