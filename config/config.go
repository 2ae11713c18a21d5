package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Env selects how much error detail is sent to clients
type Env string

const (
	Development Env = "development"
	Production  Env = "production"
)

// passwordPlaceholder is substituted with DATABASE_PASSWORD in MONGODB_URL
const passwordPlaceholder = "<PASSWORD>"

type Config struct {
	Env      Env
	Server   ServerConfig
	Database DatabaseConfig
	Seed     SeedConfig
	LogLevel string
}

type ServerConfig struct {
	Port            int
	ReadTimeout     int // seconds
	WriteTimeout    int // seconds
	IdleTimeout     int // seconds
	ShutdownTimeout int // seconds
}

type DatabaseConfig struct {
	URL            string
	Password       string
	Name           string
	Collection     string
	ConnectTimeout int // seconds
}

type SeedConfig struct {
	Path string
}

// URI returns the store connection string with the password filled in
func (d DatabaseConfig) URI() string {
	return strings.ReplaceAll(d.URL, passwordPlaceholder, d.Password)
}

// Load creates a new Config from environment variables with defaults.
// Variables from config.env and .env are loaded first, without
// overriding anything already set in the process environment.
func Load() *Config {
	loadDotEnv("config.env", ".env")

	return &Config{
		Env: ParseEnv(getEnv("APP_ENV", getEnv("NODE_ENV", string(Development)))),
		Server: ServerConfig{
			Port:            getEnvInt("PORT", 3000),
			ReadTimeout:     getEnvInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvInt("WRITE_TIMEOUT", 15),
			IdleTimeout:     getEnvInt("IDLE_TIMEOUT", 60),
			ShutdownTimeout: getEnvInt("SHUTDOWN_TIMEOUT", 30),
		},
		Database: DatabaseConfig{
			URL:            getEnv("MONGODB_URL", "mongodb://localhost:27017"),
			Password:       getEnv("DATABASE_PASSWORD", ""),
			Name:           getEnv("MONGODB_DATABASE", "books"),
			Collection:     getEnv("MONGODB_COLLECTION", "books"),
			ConnectTimeout: getEnvInt("DB_CONNECT_TIMEOUT", 10),
		},
		Seed: SeedConfig{
			Path: getEnv("SEED_PATH", "data/books.json"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// ParseEnv maps an environment name to a rendering policy.
// Anything that is not recognisably production is treated as development.
func ParseEnv(s string) Env {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod":
		return Production
	default:
		return Development
	}
}

func loadDotEnv(files ...string) {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		_ = godotenv.Load(f)
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
