package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hamed0406/pingwatch/internal/domain"
)

// Config is the process-wide settings record plus ambient knobs.
type Config struct {
	domain.Settings

	LogDir              string // logs directory
	LogLevel            string
	StatusAddr          string // status API bind address, empty disables it
	StatusAPIKey        string
	NotifyRatePerMinute int
	NotifyBurst         int
}

type settingsFile struct {
	BotToken                    string `json:"bot_token" yaml:"bot_token"`
	ChatID                      chatID `json:"chat_id" yaml:"chat_id"`
	FailureThreshold            *int   `json:"failure_threshold" yaml:"failure_threshold"`
	Threshold                   *int   `json:"threshold" yaml:"threshold"` // legacy key
	CheckIntervalSeconds        *int   `json:"check_interval_seconds" yaml:"check_interval_seconds"`
	StatusReportIntervalMinutes *int   `json:"status_report_interval_minutes" yaml:"status_report_interval_minutes"`
	ReportOnlyIfDown            bool   `json:"report_only_if_down" yaml:"report_only_if_down"`
	LogDir                      string `json:"log_dir" yaml:"log_dir"`
	LogLevel                    string `json:"log_level" yaml:"log_level"`
	StatusAddr                  string `json:"status_addr" yaml:"status_addr"`
	StatusAPIKey                string `json:"status_api_key" yaml:"status_api_key"`
	NotifyRatePerMinute         *int   `json:"notify_rate_per_minute" yaml:"notify_rate_per_minute"`
	NotifyBurst                 *int   `json:"notify_burst" yaml:"notify_burst"`
}

const (
	defaultThreshold      = 2
	defaultCheckInterval  = 60 // seconds
	defaultReportInterval = 60 // minutes
	defaultNotifyRPM      = 20
	defaultNotifyBurst    = 5
)

// LoadSettings reads the settings file (JSON or YAML), applies defaults and
// environment overrides, and validates the result, including the
// notification credentials.
func LoadSettings(path string) (Config, error) {
	cfg, err := ReadSettings(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.ValidateCredentials(); err != nil {
		return Config{}, &ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

// ReadSettings is LoadSettings without the credentials requirement, for
// commands that never notify.
func ReadSettings(path string) (Config, error) {
	data, err := readFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := ParseSettings(data)
	if err != nil {
		return Config{}, &ConfigError{Path: path, Err: err}
	}
	applyEnv(&cfg)
	if err := validate(cfg); err != nil {
		return Config{}, &ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

// ParseSettings decodes settings without environment overrides or validation.
func ParseSettings(data []byte) (Config, error) {
	var raw settingsFile
	if err := decodeSettings(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse settings: %w", err)
	}

	threshold := defaultThreshold
	switch {
	case raw.FailureThreshold != nil:
		threshold = *raw.FailureThreshold
	case raw.Threshold != nil:
		threshold = *raw.Threshold
	}

	cfg := Config{
		Settings: domain.Settings{
			NotifyToken:          raw.BotToken,
			NotifyChatID:         string(raw.ChatID),
			FailureThreshold:     threshold,
			PollInterval:         time.Duration(intOr(raw.CheckIntervalSeconds, defaultCheckInterval)) * time.Second,
			StatusReportInterval: time.Duration(intOr(raw.StatusReportIntervalMinutes, defaultReportInterval)) * time.Minute,
			ReportOnlyIfDown:     raw.ReportOnlyIfDown,
		},
		LogDir:              raw.LogDir,
		LogLevel:            raw.LogLevel,
		StatusAddr:          raw.StatusAddr,
		StatusAPIKey:        raw.StatusAPIKey,
		NotifyRatePerMinute: intOr(raw.NotifyRatePerMinute, defaultNotifyRPM),
		NotifyBurst:         intOr(raw.NotifyBurst, defaultNotifyBurst),
	}
	if cfg.LogDir == "" {
		cfg.LogDir = "logs"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.NotifyToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.NotifyChatID = v
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("STATUS_ADDR"); v != "" {
		cfg.StatusAddr = v
	}
	if v := os.Getenv("STATUS_API_KEY"); v != "" {
		cfg.StatusAPIKey = v
	}
	if v := os.Getenv("FAILURE_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FailureThreshold = n
		}
	}
}

func validate(cfg Config) error {
	if err := cfg.Settings.Validate(); err != nil {
		return err
	}
	if cfg.NotifyBurst < 0 {
		return fmt.Errorf("notify_burst must be >= 0, got %d", cfg.NotifyBurst)
	}
	return nil
}

func (c Config) ValidateCredentials() error {
	if strings.TrimSpace(c.NotifyToken) == "" || strings.TrimSpace(c.NotifyChatID) == "" {
		return errors.New("bot_token and chat_id are required")
	}
	return nil
}

// readFile maps a missing file to a ConfigError; any other read failure is
// returned as a plain (transient) error.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigError{Path: path, Err: fmt.Errorf("file not found")}
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// chatID accepts a JSON string or number; Telegram group ids are usually
// written as bare negative numbers.
type chatID string

func (c *chatID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = chatID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("chat_id must be a string or a number: %w", err)
	}
	*c = chatID(n.String())
	return nil
}

// settings.json files are often tab-indented, which YAML rejects.
func decodeSettings(data []byte, raw *settingsFile) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return json.Unmarshal(data, raw)
	}
	return yaml.Unmarshal(data, raw)
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
