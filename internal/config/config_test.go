package config

import (
	"testing"

	"github.com/caarlos0/env/v6"
)

func TestParse(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("ALLOWED_USERS", "1:2:3")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "alita")

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.TelegramBotToken != "tok" {
		t.Fatalf("token = %q", cfg.TelegramBotToken)
	}
	if len(cfg.AllowedUsers) != 3 || cfg.AllowedUsers[2] != 3 {
		t.Fatalf("allowed users = %v", cfg.AllowedUsers)
	}
	if cfg.DBPort != 5432 || cfg.DBSSLMode != "disable" {
		t.Fatalf("db defaults: port=%d ssl=%q", cfg.DBPort, cfg.DBSSLMode)
	}
	if cfg.APIAdminUserID != "5206" {
		t.Fatalf("api admin id = %q", cfg.APIAdminUserID)
	}
	if cfg.FixNamesSchedule != "0 2 * * *" {
		t.Fatalf("schedule = %q", cfg.FixNamesSchedule)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db.internal",
		DBPort:     5433,
		DBUser:     "alita",
		DBPassword: "secret",
		DBName:     "alitadb",
		DBSSLMode:  "require",
	}
	want := "host=db.internal user=alita password=secret dbname=alitadb port=5433 sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Fatalf("DSN = %q, want %q", got, want)
	}
}
