package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/karan/inbox-agent/internal/config"
	"github.com/karan/inbox-agent/internal/gcal"
	"github.com/karan/inbox-agent/internal/gdrive"
	"github.com/karan/inbox-agent/internal/jd"
	"github.com/karan/inbox-agent/internal/llm"
	"github.com/karan/inbox-agent/internal/logging"
	"github.com/karan/inbox-agent/internal/ocr"
	"github.com/karan/inbox-agent/internal/pipeline"
	"github.com/karan/inbox-agent/internal/profile"
	"github.com/karan/inbox-agent/internal/store"
)

// app bundles everything a command needs, plus the handles it must close.
type app struct {
	settings config.Settings
	logger   zerolog.Logger
	pipeline *pipeline.Pipeline
	profiles *profile.Agent
	store    *store.Store
	client   llm.Client
	ocr      ocr.Extractor
}

// buildApp wires the full dependency graph from the environment.
func buildApp(ctx context.Context) (*app, error) {
	settings := config.Load("")
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	logger := logging.New(settings.LogLevel, settings.LogConsole)

	if settings.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	client, err := llm.NewGeminiClient(ctx, settings.GeminiAPIKey, llm.Options{
		Model:          settings.LLMModel,
		FallbackModels: settings.FallbackModels,
		MaxTokens:      settings.LLMMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(settings.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	st, err := store.Open(settings.DBPath)
	if err != nil {
		return nil, err
	}

	var profiles *profile.Agent
	prof, err := profile.Load(settings.ProfilePath)
	if err != nil {
		logger.Warn().Err(err).Msg("no applicant profile loaded, drafts will be generic and profile questions disabled")
	}
	bank, err := profile.LoadBulletBank(settings.BulletBankPath)
	if err != nil {
		logger.Warn().Err(err).Msg("bullet bank unreadable, forbidden-claims corpus is the resume only")
	}
	if prof.Name != "" {
		profiles = &profile.Agent{Client: client, Profile: prof, Bank: bank}
	}

	deps := pipeline.Deps{
		Settings:     settings,
		Client:       client,
		Store:        st,
		Cache:        jd.NewCache(jd.DefaultCacheSize),
		Profile:      prof,
		BulletBank:   profile.BulletTexts(bank),
		CostResolver: llm.NewCostResolver(st, logger),
		Logger:       logger,
	}

	var extractor ocr.Extractor
	if _, err := os.Stat(settings.GoogleCredentialsPath); err == nil {
		extractor, err = ocr.NewVisionExtractor(ctx, settings.GoogleCredentialsPath)
		if err != nil {
			logger.Warn().Err(err).Msg("OCR unavailable, screenshot input disabled")
		} else {
			deps.OCR = extractor
		}

		if settings.EnableDriveUpload {
			uploader, err := gdrive.NewDriveUploader(ctx, settings.GoogleCredentialsPath, os.Getenv("DRIVE_FOLDER_ID"))
			if err != nil {
				logger.Warn().Err(err).Msg("Drive upload unavailable")
			} else {
				deps.Uploader = uploader
			}
		}
		if settings.EnableCalendarEvents {
			scheduler, err := gcal.NewCalendarScheduler(ctx, settings.GoogleCredentialsPath, os.Getenv("CALENDAR_ID"))
			if err != nil {
				logger.Warn().Err(err).Msg("Calendar events unavailable")
			} else {
				deps.Scheduler = scheduler
			}
		}
	} else {
		logger.Info().Msg("no Google credentials file, OCR/Drive/Calendar disabled")
	}

	return &app{
		settings: settings,
		logger:   logger,
		pipeline: pipeline.New(deps),
		profiles: profiles,
		store:    st,
		client:   client,
		ocr:      extractor,
	}, nil
}

func (a *app) close() {
	if a.ocr != nil {
		_ = a.ocr.Close()
	}
	if a.client != nil {
		_ = a.client.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
}
