package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	TelegramBotToken string  `env:"TELEGRAM_BOT_TOKEN,required"`
	AllowedUsers     []int64 `env:"ALLOWED_USERS" envSeparator:":"`
	AdminUserID      int64   `env:"ADMIN_USER"`

	// Postgres (the Alita operational database)
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// Alita order-management API
	APIBaseURL      string `env:"API_BASE_URL" envDefault:"https://alitav2.massindo.com/api"`
	APIClientID     string `env:"API_CLIENT_ID"`
	APIClientSecret string `env:"API_CLIENT_SECRET"`
	// APIAccessToken authorizes void calls; when empty, void confirmations
	// fail locally with a session-expired message.
	APIAccessToken string `env:"API_ACCESS_TOKEN"`
	// ContactAPIToken is the static token of the official-name lookup.
	ContactAPIToken string `env:"CONTACT_API_ACCESS_TOKEN"`
	APIAdminUserID  string `env:"API_ADMIN_USER_ID" envDefault:"5206"`

	// Storage
	AllowlistFilePath  string `env:"ALLOWLIST_FILE_PATH" envDefault:"data/allowlist.json"`
	PendingFilePath    string `env:"PENDING_FILE_PATH" envDefault:"data/pending.json"`
	TranscriptFilePath string `env:"TRANSCRIPT_FILE_PATH" envDefault:"logs/transcript.jsonl"`

	// Cron spec of the nightly approver-name repair job.
	FixNamesSchedule string `env:"FIX_NAMES_SCHEDULE" envDefault:"0 2 * * *"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

// DSN builds the Postgres connection string for gorm.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}
