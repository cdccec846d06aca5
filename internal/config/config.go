package config

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv          string `env:"APP_ENV" default:"development"`
	Port            string `env:"PORT" default:"8080"`
	LogLevel        string `env:"LOG_LEVEL" default:"info"`
	LogFormat       string `env:"LOG_FORMAT" default:"json"`
	BotToken        string `env:"BOT_TOKEN"`
	LogBotToken     string `env:"LOG_BOT_TOKEN"`
	AdminChatID     int64  `env:"ADMIN_CHAT_ID"`
	SheerIDBaseURL  string `env:"SHEERID_BASE_URL"`
	MailboxProvider string `env:"MAILBOX_PROVIDER" default:"mailtm"`
	MailTMBaseURL   string `env:"MAILTM_BASE_URL"`
	MailboxAPIURL   string `env:"MAILBOX_API_URL"`
	MailboxDomain   string `env:"MAILBOX_DOMAIN"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}

	switch cfg.MailboxProvider {
	case "mailtm":
	case "domainpool":
		if cfg.MailboxDomain == "" {
			return fmt.Errorf("MAILBOX_DOMAIN is required when MAILBOX_PROVIDER is domainpool")
		}
	default:
		return fmt.Errorf("MAILBOX_PROVIDER must be mailtm or domainpool, got %q", cfg.MailboxProvider)
	}

	return nil
}
