package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// secretHeader is the header Telegram echoes back when a webhook is
// registered with a secret token.
const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// updateTimeout bounds one full pipeline run triggered by a webhook update.
const updateTimeout = 5 * time.Minute

// Routes builds the webhook HTTP handler. Updates are acknowledged
// immediately and processed in the background; Telegram retries on slow
// responses, which would double-run the pipeline.
func (b *Bot) Routes(webhookPath, secret string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post(webhookPath, func(w http.ResponseWriter, req *http.Request) {
		if secret != "" && req.Header.Get(secretHeader) != secret {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var update tgbotapi.Update
		if err := json.NewDecoder(req.Body).Decode(&update); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
			defer cancel()
			b.HandleUpdate(ctx, update)
		}()
	})

	return r
}
