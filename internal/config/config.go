// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	Path            string        `yaml:"path"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type AdminConfig struct {
	Port int `yaml:"port"` // 0 = metrics served on the main listener
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type CORSConfig struct {
	AllowedOrigin   string `yaml:"allowed_origin"` // empty = unlocked
	AllowNullOrigin bool   `yaml:"allow_null_origin"`
	DeniedOrigin    string `yaml:"denied_origin"`
	Strict          bool   `yaml:"strict"` // reject an empty allow-list at startup
}

type TelegramConfig struct {
	Token                 string        `yaml:"token"`
	ChatID                string        `yaml:"chat_id"`
	APIBase               string        `yaml:"api_base"`
	Mode                  string        `yaml:"mode"` // live | noop
	ParseMode             string        `yaml:"parse_mode"`
	DisableWebPagePreview bool          `yaml:"disable_web_page_preview"`
	Timeout               time.Duration `yaml:"timeout"` // 0 = http.Client default
}

// Configured reports whether both credentials needed for a relay are present.
func (t TelegramConfig) Configured() bool {
	return strings.TrimSpace(t.Token) != "" && strings.TrimSpace(t.ChatID) != ""
}

type RelayConfig struct {
	ExposeUpstreamError bool `yaml:"expose_upstream_error"`
}

type ReportConfig struct {
	DefaultTestID      string `yaml:"default_test_id"`
	DefaultStudentName string `yaml:"default_student_name"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Admin    AdminConfig    `yaml:"admin"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
	Telegram TelegramConfig `yaml:"telegram"`
	Relay    RelayConfig    `yaml:"relay"`
	Report   ReportConfig   `yaml:"report"`

	Runtime RuntimeConfig `yaml:"-"`
}

const (
	defaultPath         = "/api/report"
	defaultAPIBase      = "https://api.telegram.org"
	defaultDeniedOrigin = "https://example.com"
)

// LoadConfig builds the process configuration. A missing config file is not an
// error; the relay can run purely from environment variables. Missing Telegram
// credentials are tolerated here and rejected per request instead.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// godotenv.Load does not override variables already set in the environment.
	_ = godotenv.Load()

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str("ALLOWED_ORIGIN", &cfg.CORS.AllowedOrigin)
	str("TELEGRAM_BOT_TOKEN", &cfg.Telegram.Token)
	str("TELEGRAM_CHAT_ID", &cfg.Telegram.ChatID)
	str("TELEGRAM_API_BASE", &cfg.Telegram.APIBase)
	str("TELEGRAM_MODE", &cfg.Telegram.Mode)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)

	// The null-origin flag is only enabled by the exact string "true".
	if v, ok := lookup("ALLOW_NULL_ORIGIN"); ok {
		cfg.CORS.AllowNullOrigin = strings.TrimSpace(v) == "true"
	}
	if err := boolean("CORS_STRICT", &cfg.CORS.Strict); err != nil {
		return err
	}
	if err := boolean("RELAY_EXPOSE_UPSTREAM_ERROR", &cfg.Relay.ExposeUpstreamError); err != nil {
		return err
	}

	if v, ok := lookup("PORT"); ok && strings.TrimSpace(v) != "" {
		p, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid PORT: %w", err)
		}
		cfg.Server.Port = p
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Path == "" {
		cfg.Server.Path = defaultPath
	}
	if !strings.HasPrefix(cfg.Server.Path, "/") {
		cfg.Server.Path = "/" + cfg.Server.Path
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		cfg.Server.MaxBodyBytes = 64 << 10
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.CORS.DeniedOrigin == "" {
		cfg.CORS.DeniedOrigin = defaultDeniedOrigin
	}
	if cfg.Telegram.APIBase == "" {
		cfg.Telegram.APIBase = defaultAPIBase
	}
	cfg.Telegram.APIBase = strings.TrimRight(cfg.Telegram.APIBase, "/")
	if cfg.Telegram.Mode == "" {
		cfg.Telegram.Mode = "live"
	}
	if cfg.Telegram.ParseMode == "" {
		cfg.Telegram.ParseMode = tgbotapi.ModeHTML
	}
	if cfg.Report.DefaultTestID == "" {
		cfg.Report.DefaultTestID = "IELTS Listening"
	}
	if cfg.Report.DefaultStudentName == "" {
		cfg.Report.DefaultStudentName = "Unknown"
	}
}

func validate(cfg *Config) error {
	if cfg.CORS.Strict && cfg.CORS.AllowedOrigin == "" {
		return errors.New("cors.allowed_origin is required when cors.strict is set")
	}
	switch strings.ToLower(cfg.Telegram.Mode) {
	case "live", "noop":
	default:
		return fmt.Errorf("telegram.mode %q is not supported", cfg.Telegram.Mode)
	}
	// Messages are built with HTML tags and HTML escaping only.
	if cfg.Telegram.ParseMode != tgbotapi.ModeHTML {
		return fmt.Errorf("telegram.parse_mode %q is not supported, only %s", cfg.Telegram.ParseMode, tgbotapi.ModeHTML)
	}
	if cfg.Admin.Port < 0 {
		return errors.New("admin.port must not be negative")
	}
	if cfg.Admin.Port != 0 && cfg.Admin.Port == cfg.Server.Port {
		return errors.New("admin.port must differ from server.port")
	}
	return nil
}
