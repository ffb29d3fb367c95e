package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	CORS     CORSConfig     `mapstructure:"cors"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Firebase FirebaseConfig `mapstructure:"firebase"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Env             string        `mapstructure:"env"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	HealthTimeout   time.Duration `mapstructure:"health_timeout"`
}

// StoreConfig selects the transaction store backend: mongo, sqlite or postgres.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	Collection     string        `mapstructure:"collection"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// PostgresConfig holds database connection parameters
type PostgresConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ConnectionString builds a PostgreSQL connection string. An explicit URL wins
// over the individual components.
func (c PostgresConfig) ConnectionString() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

type OpenAIConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// NATSConfig enables change events when URL is set.
type NATSConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// FirebaseConfig enables ID-token verification on the API when credentials
// are present.
type FirebaseConfig struct {
	ProjectID         string `mapstructure:"project_id"`
	CredentialsJSON   string `mapstructure:"credentials_json"`
	CredentialsBase64 string `mapstructure:"credentials_base64"`
}

func (c FirebaseConfig) Enabled() bool {
	return c.CredentialsJSON != "" || c.CredentialsBase64 != ""
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// IsDevelopment reports whether the server runs outside production.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Env)
	return env == "" || env == "development" || env == "dev"
}

// envBindings maps config keys onto the environment variables that set them.
var envBindings = map[string]string{
	"server.port":                 "PORT",
	"server.env":                  "APP_ENV",
	"server.read_timeout":         "SERVER_READ_TIMEOUT",
	"server.write_timeout":        "SERVER_WRITE_TIMEOUT",
	"server.shutdown_timeout":     "SERVER_SHUTDOWN_TIMEOUT",
	"server.health_timeout":       "SERVER_HEALTH_TIMEOUT",
	"store.driver":                "STORE_DRIVER",
	"mongo.uri":                   "MONGODB_URI",
	"mongo.database":              "MONGODB_DATABASE",
	"mongo.collection":            "MONGODB_COLLECTION",
	"mongo.connect_timeout":       "MONGODB_CONNECT_TIMEOUT",
	"sqlite.path":                 "SQLITE_PATH",
	"postgres.url":                "DATABASE_URL",
	"postgres.host":               "DB_HOST",
	"postgres.port":               "DB_PORT",
	"postgres.user":               "DB_USER",
	"postgres.password":           "DB_PASSWORD",
	"postgres.dbname":             "DB_NAME",
	"postgres.sslmode":            "DB_SSL_MODE",
	"openai.api_key":              "OPENAI_API_KEY",
	"openai.base_url":             "OPENAI_BASE_URL",
	"openai.model":                "OPENAI_MODEL",
	"openai.max_tokens":           "OPENAI_MAX_TOKENS",
	"openai.timeout":              "OPENAI_TIMEOUT",
	"cors.allowed_origins":        "CORS_ALLOWED_ORIGINS",
	"nats.url":                    "NATS_URL",
	"nats.subject_prefix":         "NATS_SUBJECT_PREFIX",
	"firebase.project_id":         "FIREBASE_PROJECT_ID",
	"firebase.credentials_json":   "FIREBASE_SERVICE_ACCOUNT_JSON",
	"firebase.credentials_base64": "FIREBASE_SERVICE_ACCOUNT_BASE64",
	"log.level":                   "LOG_LEVEL",
	"log.pretty":                  "LOG_PRETTY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.health_timeout", 2*time.Second)

	v.SetDefault("store.driver", "mongo")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "finance_tracker")
	v.SetDefault("mongo.collection", "transactions")
	v.SetDefault("mongo.connect_timeout", 10*time.Second)

	v.SetDefault("sqlite.path", "./database.db")

	v.SetDefault("postgres.url", "")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.dbname", "finance_tracker")
	v.SetDefault("postgres.sslmode", "disable")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-3.5-turbo")
	v.SetDefault("openai.max_tokens", 500)
	v.SetDefault("openai.timeout", 10*time.Second)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject_prefix", "transactions")

	v.SetDefault("firebase.project_id", "")
	v.SetDefault("firebase.credentials_json", "")
	v.SetDefault("firebase.credentials_base64", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// Load reads configuration from defaults, an optional config file, a .env file
// in the working directory and the environment, in increasing precedence.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "mongo", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Server.HealthTimeout <= 0 {
		return fmt.Errorf("server.health_timeout must be positive, got %s", c.Server.HealthTimeout)
	}
	if c.OpenAI.MaxTokens <= 0 {
		return fmt.Errorf("openai.max_tokens must be positive, got %d", c.OpenAI.MaxTokens)
	}
	if c.OpenAI.Timeout <= 0 {
		return fmt.Errorf("openai.timeout must be positive, got %s", c.OpenAI.Timeout)
	}
	return nil
}
