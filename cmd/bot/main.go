package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"alita-assistant/internal/approverfix"
	"alita-assistant/internal/auth"
	"alita-assistant/internal/config"
	"alita-assistant/internal/engine"
	"alita-assistant/internal/gateway"
	"alita-assistant/internal/scheduler"
	"alita-assistant/internal/telegram"
	"alita-assistant/internal/transcript"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	apiClient := gateway.NewAPIClient(
		cfg.APIBaseURL,
		cfg.APIClientID,
		cfg.APIClientSecret,
		cfg.APIAdminUserID,
		cfg.ContactAPIToken,
	)
	gw := gateway.NewService(db, apiClient)

	var allowRepo auth.Repository
	if cfg.AllowlistFilePath != "" {
		repo, err := auth.NewFileRepository(cfg.AllowlistFilePath)
		if err != nil {
			log.Printf("failed to init allowlist repo: %v", err)
		} else {
			allowRepo = repo
		}
	}
	authSvc, err := auth.NewWithRepo(allowRepo, cfg.AllowedUsers)
	if err != nil {
		log.Fatalf("failed to init auth: %v", err)
	}

	var pendingRepo auth.Repository
	if cfg.PendingFilePath != "" {
		repo, err := auth.NewFileRepository(cfg.PendingFilePath)
		if err != nil {
			log.Printf("failed to init pending repo: %v", err)
		} else {
			pendingRepo = repo
		}
	}

	var recorder transcript.Recorder
	if cfg.TranscriptFilePath != "" {
		fr, err := transcript.NewFileRecorder(cfg.TranscriptFilePath)
		if err != nil {
			log.Printf("failed to init transcript recorder: %v", err)
		} else {
			recorder = fr
		}
	}

	eng := engine.New(gw, cfg.APIAccessToken)

	fixer := approverfix.New(db)
	runFix := func(ctx context.Context) (string, error) {
		res, err := fixer.Run(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Selesai. %d baris diperbaiki dari %d yang dicek.", res.Updated, res.Checked), nil
	}

	sched := scheduler.New()
	sched.SetJob(func(ctx context.Context) error {
		res, err := fixer.Run(ctx)
		if err != nil {
			return err
		}
		log.Printf("approver-name repair: updated=%d checked=%d", res.Updated, res.Checked)
		return nil
	})
	if err := sched.Start(cfg.FixNamesSchedule); err != nil {
		log.Printf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	bot, err := telegram.New(
		cfg.TelegramBotToken,
		eng,
		authSvc,
		cfg.AdminUserID,
		pendingRepo,
		recorder,
		runFix,
	)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	bot.Start(context.Background())
}
