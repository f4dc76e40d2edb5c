package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"courtside-app/internal/model"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultConfigPath = "~/.config/courtside/config.toml"
	defaultAddr       = ":8080"
	defaultDebounce   = 300 * time.Millisecond
	defaultTopic      = "courtside-events"
)

type Config struct {
	Addr                  string
	DBPath                string
	DBMigrationsDir       string
	PostgresDSN           string
	PostgresMigrationsDir string
	MirrorDSN             string
	KafkaBrokers          []string
	KafkaTopic            string
	ShareBaseURL          string
	SyncDebounce          time.Duration
	InitialCourts         int
	LogLevel              log.Level
	Fees                  model.FeeConfig
	Lambda                bool
}

type fileConfig struct {
	Addr           string          `toml:"addr"`
	DBPath         string          `toml:"db_path"`
	ShareBaseURL   string          `toml:"share_base_url"`
	SyncDebounceMS int             `toml:"sync_debounce_ms"`
	InitialCourts  int             `toml:"initial_courts"`
	LogLevel       string          `toml:"log_level"`
	Mirror         mirrorConfig    `toml:"mirror"`
	Kafka          kafkaConfig     `toml:"kafka"`
	Fees           model.FeeConfig `toml:"fees"`
}

type mirrorConfig struct {
	DSN string `toml:"dsn"`
}

type kafkaConfig struct {
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

// LoadEnv reads .env and .env.local into the environment. Variables that are
// already set win. It does nothing under Lambda.
func LoadEnv() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		return
	}
	for _, name := range []string{".env", ".env.local"} {
		_ = godotenv.Load(name)
	}
}

// Load builds the configuration from defaults, the TOML file at path (or
// COURTSIDE_CONFIG, or the default location) and environment overrides. A
// missing file is not an error.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		path = os.Getenv("COURTSIDE_CONFIG")
	}
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	raw := fileConfig{Fees: model.DefaultFeeConfig()}
	data, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg := Config{
		Addr:          strings.TrimSpace(raw.Addr),
		DBPath:        strings.TrimSpace(raw.DBPath),
		MirrorDSN:     strings.TrimSpace(raw.Mirror.DSN),
		KafkaBrokers:  raw.Kafka.Brokers,
		KafkaTopic:    strings.TrimSpace(raw.Kafka.Topic),
		ShareBaseURL:  strings.TrimSpace(raw.ShareBaseURL),
		SyncDebounce:  time.Duration(raw.SyncDebounceMS) * time.Millisecond,
		InitialCourts: raw.InitialCourts,
		Fees:          raw.Fees,
		Lambda:        os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "",
	}
	if cfg.DBPath != "" {
		cfg.DBPath = mustExpand(cfg.DBPath)
	}
	level := strings.TrimSpace(raw.LogLevel)

	overrideString(&cfg.Addr, "ADDR")
	overrideString(&cfg.DBPath, "DB_PATH")
	overrideString(&cfg.DBMigrationsDir, "DB_MIGRATIONS_DIR")
	overrideString(&cfg.PostgresDSN, "POSTGRES_DSN")
	overrideString(&cfg.PostgresMigrationsDir, "POSTGRES_MIGRATIONS_DIR")
	overrideString(&cfg.MirrorDSN, "MIRROR_DSN")
	overrideString(&cfg.KafkaTopic, "KAFKA_TOPIC")
	overrideString(&cfg.ShareBaseURL, "SHARE_BASE_URL")
	overrideString(&level, "LOG_LEVEL")
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		cfg.KafkaBrokers = strings.Split(v, ",")
	}
	if v := strings.TrimSpace(os.Getenv("SYNC_DEBOUNCE_MS")); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return Config{}, fmt.Errorf("invalid SYNC_DEBOUNCE_MS %q", v)
		}
		cfg.SyncDebounce = time.Duration(ms) * time.Millisecond
	}
	if v := strings.TrimSpace(os.Getenv("INITIAL_COURTS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > model.MaxCourts {
			return Config{}, fmt.Errorf("invalid INITIAL_COURTS %q", v)
		}
		cfg.InitialCourts = n
	}

	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = defaultTopic
	}
	if cfg.SyncDebounce <= 0 {
		cfg.SyncDebounce = defaultDebounce
	}
	if cfg.InitialCourts <= 0 {
		cfg.InitialCourts = cfg.Fees.NumCourts
	}
	if cfg.InitialCourts <= 0 {
		cfg.InitialCourts = model.DefaultFeeConfig().NumCourts
	}
	if cfg.InitialCourts > model.MaxCourts {
		cfg.InitialCourts = model.MaxCourts
	}
	cfg.Fees.NumCourts = cfg.InitialCourts
	if err := normalizeFees(&cfg.Fees); err != nil {
		return Config{}, err
	}

	cfg.LogLevel = log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return Config{}, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.LogLevel = parsed
	}
	return cfg, nil
}

func normalizeFees(f *model.FeeConfig) error {
	f.Currency = strings.TrimSpace(f.Currency)
	if f.Currency == "" {
		f.Currency = model.DefaultFeeConfig().Currency
	}
	switch f.CourtFeeType {
	case "":
		f.CourtFeeType = model.CourtFeePerHour
	case model.CourtFeePerHead, model.CourtFeePerHour:
	default:
		return fmt.Errorf("invalid court_fee_type %q", f.CourtFeeType)
	}
	if f.SinglesFee < 0 || f.DoublesFee < 0 || f.CourtFeeAmount < 0 || f.RentalHours < 0 {
		return errors.New("fees must not be negative")
	}
	f.AutoCalculate = true
	f.RequirePayment = false
	return nil
}

func overrideString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
