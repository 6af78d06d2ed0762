package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

const defaultDatabaseURL = "condocheck.db"

// Config keeps runtime settings for the bot and the CLI.
type Config struct {
	TelegramToken  string
	DatabaseURL    string
	ReportInterval time.Duration
	NotifyAt       string
	Location       *time.Location
	GeminiAPIKey   string
	GeminiModel    string
	MediaDir       string
}

// ErrNoTelegramToken is returned by RequireTelegram when no token is set.
var ErrNoTelegramToken = errors.New("TELEGRAM_TOKEN is required")

// Load reads condocheck.yaml (or the file at path, when given) and the
// environment. Environment variables win over the file; missing keys fall
// back to defaults. A missing default config file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("database.url", defaultDatabaseURL)
	v.SetDefault("report.interval_hours", 5)
	v.SetDefault("notify_at", "08:00")
	v.SetDefault("timezone", "America/Sao_Paulo")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("media.dir", "media")

	v.SetEnvPrefix("CONDOCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Legacy names still accepted after the prefixed ones.
	_ = v.BindEnv("telegram.token", "CONDOCHECK_TELEGRAM_TOKEN", "TELEGRAM_TOKEN")
	_ = v.BindEnv("database.url", "CONDOCHECK_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("report.interval_hours", "CONDOCHECK_REPORT_INTERVAL_HOURS", "REPORT_INTERVAL_HOURS")
	_ = v.BindEnv("gemini.api_key", "CONDOCHECK_GEMINI_API_KEY", "GEMINI_API_KEY", "API_KEY")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("condocheck")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := Config{
		TelegramToken:  strings.TrimSpace(v.GetString("telegram.token")),
		DatabaseURL:    strings.TrimSpace(v.GetString("database.url")),
		ReportInterval: parseInterval(v.GetString("report.interval_hours")),
		NotifyAt:       strings.TrimSpace(v.GetString("notify_at")),
		GeminiAPIKey:   strings.TrimSpace(v.GetString("gemini.api_key")),
		GeminiModel:    strings.TrimSpace(v.GetString("gemini.model")),
		MediaDir:       strings.TrimSpace(v.GetString("media.dir")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL
	}
	if cfg.ReportInterval == 0 {
		cfg.ReportInterval = 5 * time.Hour
	}

	loc, err := loadLocation(v.GetString("timezone"))
	if err != nil {
		return Config{}, err
	}
	cfg.Location = loc

	return cfg, nil
}

// RequireTelegram checks the settings the bot cannot start without.
func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return ErrNoTelegramToken
	}
	return nil
}

func loadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

func parseInterval(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
