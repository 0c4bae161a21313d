// Package config loads process configuration from an optional YAML file,
// an optional .env file and environment overrides, in that order.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port          string   `yaml:"port"`
		PublicBaseURL string   `yaml:"publicBaseUrl"`
		CORSOrigins   []string `yaml:"corsOrigins"`
	} `yaml:"server"`
	Postgres struct {
		URL      string `yaml:"url"`
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
		Channel  string `yaml:"channel"`
	} `yaml:"redis"`
	Auth struct {
		JWTSecret        string `yaml:"jwtSecret"`
		TokenTTL         string `yaml:"tokenTtl"`
		AllowAdminSignup bool   `yaml:"allowAdminSignup"`
	} `yaml:"auth"`
	RateLimit struct {
		Requests int    `yaml:"requests"`
		Window   string `yaml:"window"`
	} `yaml:"rateLimit"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the values used when neither file nor environment set
// anything.
func Default() Config {
	var cfg Config
	cfg.Server.Port = "8080"
	cfg.Server.PublicBaseURL = "http://localhost:3000"
	cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	cfg.Redis.TTL = "10m"
	cfg.Redis.Channel = "quiz-event:events"
	cfg.Auth.TokenTTL = "24h"
	cfg.Auth.AllowAdminSignup = true
	cfg.RateLimit.Requests = 100
	cfg.RateLimit.Window = "15m"
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	return cfg
}

// Load reads YAML config from path if it exists, then .env, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.Debug().Str("path", path).Msg("config file not found, using defaults")
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found")
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.PublicBaseURL, "PUBLIC_BASE_URL")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}

	setString(&cfg.Postgres.URL, "DATABASE_URL")
	setString(&cfg.Postgres.Host, "DB_HOST")
	setString(&cfg.Postgres.Port, "DB_PORT")
	setString(&cfg.Postgres.User, "DB_USER")
	setString(&cfg.Postgres.Password, "DB_PASSWORD")
	setString(&cfg.Postgres.Name, "DB_NAME")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")

	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.Auth.TokenTTL, "JWT_TTL")
	if v, err := strconv.ParseBool(os.Getenv("ALLOW_ADMIN_SIGNUP")); err == nil {
		cfg.Auth.AllowAdminSignup = v
	}

	if v, err := strconv.Atoi(os.Getenv("RATE_LIMIT_REQUESTS")); err == nil {
		cfg.RateLimit.Requests = v
	}
	setString(&cfg.RateLimit.Window, "RATE_LIMIT_WINDOW")

	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
