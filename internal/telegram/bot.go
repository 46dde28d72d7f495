// Package telegram adapts the pipeline to a Telegram bot webhook. It
// validates the webhook secret, downloads photo input, routes messages, and
// renders ApplicationPacks as replies.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/karan/inbox-agent/internal/followup"
	"github.com/karan/inbox-agent/internal/pipeline"
	"github.com/karan/inbox-agent/internal/profile"
	"github.com/karan/inbox-agent/internal/router"
)

// PipelineRunner is the slice of the pipeline the bot needs.
type PipelineRunner interface {
	Run(ctx context.Context, in pipeline.Input) *pipeline.ApplicationPack
}

// FollowupScanner drafts follow-up notes for stale applications.
type FollowupScanner interface {
	Scan(ctx context.Context) ([]followup.Note, error)
}

// ProfileAnswerer answers questions about the applicant.
type ProfileAnswerer interface {
	Answer(ctx context.Context, query string) (profile.Answer, error)
}

// sender is the bot API surface used for replies. *tgbotapi.BotAPI
// satisfies it.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot handles inbound Telegram updates.
type Bot struct {
	api       *tgbotapi.BotAPI
	send      sender
	pipeline  PipelineRunner
	followups FollowupScanner
	profiles  ProfileAnswerer
	logger    zerolog.Logger
}

// New connects to the Telegram bot API.
func New(token string, runner PipelineRunner, scanner FollowupScanner, answerer ProfileAnswerer, logger zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	return &Bot{api: api, send: api, pipeline: runner, followups: scanner, profiles: answerer, logger: logger}, nil
}

// HandleUpdate processes one update end to end, replying on the same chat.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	hasImage := len(msg.Photo) > 0

	route := router.Route(text, hasImage)
	b.logger.Info().Str("target", string(route.Target)).Str("reason", route.Reason).Msg("message routed")

	switch route.Target {
	case router.TargetInbox:
		b.handleInbox(ctx, chatID, text, msg)
	case router.TargetFollowup:
		b.handleFollowup(ctx, chatID)
	case router.TargetProfile:
		b.handleProfile(ctx, chatID, text)
	default:
		b.reply(chatID, "Send me a job posting: paste the text, share a link, or send a screenshot. Say \"follow up\" to check on open applications.")
	}
}

func (b *Bot) handleInbox(ctx context.Context, chatID int64, text string, msg *tgbotapi.Message) {
	in := pipeline.Input{RawText: text}

	if len(msg.Photo) > 0 {
		imagePath, err := b.downloadPhoto(msg.Photo)
		if err != nil {
			b.logger.Error().Err(err).Msg("photo download failed")
			b.reply(chatID, "I couldn't download that image, please try again.")
			return
		}
		defer func() { _ = os.Remove(imagePath) }()
		in.ImagePath = imagePath
	}

	b.reply(chatID, "On it. Building your application...")
	pack := b.pipeline.Run(ctx, in)

	if pack.OCRRejection != nil {
		b.reply(chatID, "I couldn't read that screenshot: "+pack.OCRRejection.Reason)
		return
	}
	b.reply(chatID, FormatPack(pack))
}

func (b *Bot) handleProfile(ctx context.Context, chatID int64, query string) {
	if b.profiles == nil {
		b.reply(chatID, "Profile answers are unavailable; no applicant profile is loaded.")
		return
	}
	ans, err := b.profiles.Answer(ctx, query)
	if err != nil {
		b.reply(chatID, "I couldn't answer that: "+err.Error())
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s angle]\n\n%s", strings.ToUpper(ans.Narrative), ans.Text)
	if len(ans.Ungrounded) > 0 {
		fmt.Fprintf(&sb, "\n\nPotential ungrounded claims: %s", strings.Join(ans.Ungrounded, ", "))
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) handleFollowup(ctx context.Context, chatID int64) {
	notes, err := b.followups.Scan(ctx)
	if err != nil {
		b.reply(chatID, "Follow-up scan failed: "+err.Error())
		return
	}
	if len(notes) == 0 {
		b.reply(chatID, "Nothing needs a follow-up right now.")
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d application(s) due for a follow-up:\n", len(notes))
	for _, note := range notes {
		fmt.Fprintf(&sb, "\n%s at %s:\n%s\n", note.Role, note.Company, note.Text)
	}
	b.reply(chatID, sb.String())
}

// downloadPhoto fetches the largest size of a photo to a temp file.
func (b *Bot) downloadPhoto(photos []tgbotapi.PhotoSize) (string, error) {
	largest := photos[len(photos)-1]
	url, err := b.api.GetFileDirectURL(largest.FileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file URL: %w", err)
	}

	resp, err := http.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to download photo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	tmp, err := os.CreateTemp("", "jd-screenshot-*.jpg")
	if err != nil {
		return "", err
	}
	defer func() { _ = tmp.Close() }()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to save photo: %w", err)
	}
	return tmp.Name(), nil
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.send.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("reply failed")
	}
}

// FormatPack renders a pack as a chat reply.
func FormatPack(pack *pipeline.ApplicationPack) string {
	var sb strings.Builder

	if pack.JD != nil {
		fmt.Fprintf(&sb, "%s at %s", pack.Role(), pack.Company())
		if pack.JD.Location != "" {
			fmt.Fprintf(&sb, " (%s)", pack.JD.Location)
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("Couldn't extract a job description.\n")
	}

	if pack.ResumeUsed != "" {
		fmt.Fprintf(&sb, "Resume: %s (fit %d%%)\n", pack.ResumeUsed, pack.FitScore)
	}
	if pack.RollbackUsed {
		sb.WriteString("Note: tailored version failed to compile, sent the base resume instead.\n")
	}
	switch {
	case pack.DriveLink != "":
		fmt.Fprintf(&sb, "PDF: %s\n", pack.DriveLink)
	case pack.PDFPath != "":
		fmt.Fprintf(&sb, "PDF saved: %s\n", pack.PDFPath)
	}
	if pack.CalendarLink != "" {
		fmt.Fprintf(&sb, "Follow-up reminder: %s\n", pack.CalendarLink)
	}

	if pack.Email != nil {
		fmt.Fprintf(&sb, "\nEmail draft:\n%s\n", pack.Email.Text)
	}
	if pack.LinkedInDM != nil {
		fmt.Fprintf(&sb, "\nLinkedIn DM:\n%s\n", pack.LinkedInDM.Text)
	}
	if pack.Referral != nil {
		fmt.Fprintf(&sb, "\nReferral ask:\n%s\n", pack.Referral.Text)
	}

	if len(pack.Errors) > 0 {
		sb.WriteString("\nIssues:\n")
		for _, e := range pack.Errors {
			fmt.Fprintf(&sb, "- %s\n", e)
		}
	}
	return strings.TrimSpace(sb.String())
}
