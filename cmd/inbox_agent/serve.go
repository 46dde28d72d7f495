package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/karan/inbox-agent/internal/followup"
	"github.com/karan/inbox-agent/internal/telegram"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Serve the Telegram webhook",
	Long:  "Starts the HTTP server that receives Telegram webhook updates and runs the pipeline for each inbound posting.",
	RunE:  serve,
}

func init() {
	rootCmd.AddCommand(serveCommand)
}

func serve(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if a.settings.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required for serve")
	}

	scanner := &followup.Scanner{
		Store:  a.store,
		Client: a.client,
		Logger: a.logger,
	}
	var answerer telegram.ProfileAnswerer
	if a.profiles != nil {
		answerer = a.profiles
	}
	bot, err := telegram.New(a.settings.TelegramToken, a.pipeline, scanner, answerer, a.logger)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", a.settings.WebhookHost, a.settings.WebhookPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           bot.Routes(a.settings.TelegramWebhookPath, a.settings.TelegramWebhookSecret),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", addr).Str("path", a.settings.TelegramWebhookPath).Msg("webhook server listening")
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-stop:
		a.logger.Info().Str("signal", sig.String()).Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
