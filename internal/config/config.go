package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreDriverMongo = "mongo"
	StoreDriverBolt  = "bolt"

	MailDriverGateway = "gateway"
	MailDriverLog     = "log"
)

// ErrInvalidSetting is returned when an environment value is present but unusable.
var ErrInvalidSetting = errors.New("invalid setting")

// Config holds runtime configuration shared across the application.
// It is read once at process start.
type Config struct {
	Addr                    string        `env:"HTTP_ADDR" envDefault:":8080"`
	TableName               string        `env:"TABLE_NAME,required,notEmpty"`
	SenderEmail             string        `env:"SENDER_EMAIL,required,notEmpty"`
	OwnerEmail              string        `env:"OWNER_EMAIL,required,notEmpty"`
	StoreDriver             string        `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI                string        `env:"MONGO_URI" envDefault:"mongodb://mongo:27017"`
	MongoDatabase           string        `env:"MONGO_DB" envDefault:"contact-form"`
	Timeout                 time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
	BoltPath                string        `env:"BOLT_PATH" envDefault:"contact-form.db"`
	MailDriver              string        `env:"MAIL_DRIVER" envDefault:"gateway"`
	MailGatewayURL          string        `env:"MAIL_GATEWAY_URL" envDefault:"http://mail-gateway:3000"`
	MailGatewayTimeout      time.Duration `env:"MAIL_GATEWAY_TIMEOUT" envDefault:"5s"`
	AllowedOrigins          []string      `env:"API_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	Timezone                string        `env:"TIMEZONE" envDefault:"Local"`
	FailedNotificationTable string        `env:"FAILED_NOTIFICATION_TABLE"`
	Location                *time.Location
	ServerLog               *log.Logger
}

// Load reads environment variables and returns a fully populated Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.TableName = strings.TrimSpace(cfg.TableName)
	cfg.SenderEmail = strings.TrimSpace(cfg.SenderEmail)
	cfg.OwnerEmail = strings.TrimSpace(cfg.OwnerEmail)
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.MailDriver = strings.ToLower(strings.TrimSpace(cfg.MailDriver))
	cfg.FailedNotificationTable = strings.TrimSpace(cfg.FailedNotificationTable)
	cfg.AllowedOrigins = cleanList(cfg.AllowedOrigins, []string{"*"})

	switch cfg.StoreDriver {
	case StoreDriverMongo, StoreDriverBolt:
	default:
		return Config{}, fmt.Errorf("%w: STORE_DRIVER=%q", ErrInvalidSetting, cfg.StoreDriver)
	}
	switch cfg.MailDriver {
	case MailDriverGateway, MailDriverLog:
	default:
		return Config{}, fmt.Errorf("%w: MAIL_DRIVER=%q", ErrInvalidSetting, cfg.MailDriver)
	}
	if cfg.MailGatewayTimeout <= 0 {
		return Config{}, fmt.Errorf("%w: MAIL_GATEWAY_TIMEOUT must be positive", ErrInvalidSetting)
	}
	if cfg.FailedNotificationTable != "" && cfg.FailedNotificationTable == cfg.TableName {
		return Config{}, fmt.Errorf("%w: FAILED_NOTIFICATION_TABLE must differ from TABLE_NAME", ErrInvalidSetting)
	}

	cfg.Timezone = strings.TrimSpace(cfg.Timezone)
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Config{}, fmt.Errorf("%w: TIMEZONE=%q: %v", ErrInvalidSetting, cfg.Timezone, err)
	}
	cfg.Location = loc

	cfg.ServerLog = log.New(os.Stdout, "[contact-form-api] ", log.LstdFlags|log.Lshortfile)
	cfg.ServerLog.Printf("loaded config: store=%s table=%q mail=%s gateway=%q", cfg.StoreDriver, cfg.TableName, cfg.MailDriver, cfg.MailGatewayURL)

	return cfg, nil
}

func cleanList(values, fallback []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value != "" {
			cleaned = append(cleaned, value)
		}
	}
	if len(cleaned) == 0 {
		return fallback
	}
	return cleaned
}
