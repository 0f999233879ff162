package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken string         `yaml:"discord_token"`
	TestGuildID  string         `yaml:"test_guild_id"`
	OwnerUserID  string         `yaml:"owner_user_id"`
	LogLevel     string         `yaml:"log_level"`
	Database     DatabaseConfig `yaml:"database"`
	Health       HealthConfig   `yaml:"health"`
	Presence     PresenceConfig `yaml:"presence"`
	Tickets      TicketConfig   `yaml:"tickets"`
	Moderation   ModConfig      `yaml:"moderation"`
	Counting     CountingConfig `yaml:"counting"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type PresenceConfig struct {
	RotateSeconds int      `yaml:"rotate_seconds"`
	Statuses      []string `yaml:"statuses"`
}

type TicketConfig struct {
	CloseGraceSeconds int `yaml:"close_grace_seconds"`
}

type ModConfig struct {
	DefaultFilterLevel string `yaml:"default_filter_level"`
	PurgeDelayMillis   int    `yaml:"purge_delay_millis"`
}

type CountingConfig struct {
	DefaultMaxCount int `yaml:"default_max_count"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Database: DatabaseConfig{Host: "localhost", Port: "5432"},
		Health:   HealthConfig{Enabled: false, Addr: ":8080"},
		Presence: PresenceConfig{
			RotateSeconds: 60,
			Statuses: []string{
				"over the server",
				"/help",
				"the counting channel",
				"support tickets",
			},
		},
		Tickets:    TicketConfig{CloseGraceSeconds: 10},
		Moderation: ModConfig{DefaultFilterLevel: "light", PurgeDelayMillis: 350},
		Counting:   CountingConfig{DefaultMaxCount: 100},
	}
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}
	if cfg.Database.User == "" || cfg.Database.Password == "" || cfg.Database.Name == "" {
		return Config{}, errors.New("DB_USER, DB_PASS and DB_NAME are required")
	}
	if cfg.Presence.RotateSeconds <= 0 {
		cfg.Presence.RotateSeconds = 60
	}
	if cfg.Tickets.CloseGraceSeconds <= 0 {
		cfg.Tickets.CloseGraceSeconds = 10
	}
	if cfg.Counting.DefaultMaxCount <= 0 {
		cfg.Counting.DefaultMaxCount = 100
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.TestGuildID = envString("TEST_GUILD_ID", cfg.TestGuildID)
	cfg.OwnerUserID = envString("OWNER_USER_ID", cfg.OwnerUserID)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.Database.Host = envString("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = envString("DB_PORT", cfg.Database.Port)
	cfg.Database.User = envString("DB_USER", cfg.Database.User)
	cfg.Database.Password = envString("DB_PASS", cfg.Database.Password)
	cfg.Database.Name = envString("DB_NAME", cfg.Database.Name)
	cfg.Health.Enabled = envBool("HEALTH_ENABLED", cfg.Health.Enabled)
	cfg.Health.Addr = envString("HEALTH_ADDR", cfg.Health.Addr)
	cfg.Presence.RotateSeconds = envInt("PRESENCE_ROTATE_SECONDS", cfg.Presence.RotateSeconds)
	cfg.Tickets.CloseGraceSeconds = envInt("TICKET_CLOSE_GRACE_SECONDS", cfg.Tickets.CloseGraceSeconds)
	cfg.Moderation.DefaultFilterLevel = envString("DEFAULT_FILTER_LEVEL", cfg.Moderation.DefaultFilterLevel)
	cfg.Moderation.PurgeDelayMillis = envInt("PURGE_DELAY_MILLIS", cfg.Moderation.PurgeDelayMillis)
	cfg.Counting.DefaultMaxCount = envInt("DEFAULT_MAX_COUNT", cfg.Counting.DefaultMaxCount)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}
