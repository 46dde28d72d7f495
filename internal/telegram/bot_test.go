package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karan/inbox-agent/internal/drafts"
	"github.com/karan/inbox-agent/internal/followup"
	"github.com/karan/inbox-agent/internal/jd"
	"github.com/karan/inbox-agent/internal/ocr"
	"github.com/karan/inbox-agent/internal/pipeline"
	"github.com/karan/inbox-agent/internal/profile"
)

type fakeSender struct {
	sent []string
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg.Text)
	}
	return tgbotapi.Message{}, nil
}

type fakeRunner struct {
	pack *pipeline.ApplicationPack
	ran  chan pipeline.Input
}

func (f *fakeRunner) Run(ctx context.Context, in pipeline.Input) *pipeline.ApplicationPack {
	if f.ran != nil {
		f.ran <- in
	}
	return f.pack
}

type fakeScanner struct {
	notes []followup.Note
}

func (f *fakeScanner) Scan(ctx context.Context) ([]followup.Note, error) {
	return f.notes, nil
}

type fakeAnswerer struct {
	answer profile.Answer
	query  string
}

func (f *fakeAnswerer) Answer(ctx context.Context, query string) (profile.Answer, error) {
	f.query = query
	return f.answer, nil
}

func textUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: text,
			Chat: &tgbotapi.Chat{ID: 42},
		},
	}
}

func samplePack() *pipeline.ApplicationPack {
	return &pipeline.ApplicationPack{
		RunID:      "run-abc",
		JD:         &jd.Schema{Company: "Acme", Role: "PM", Location: "Remote"},
		ResumeUsed: "master_pm.tex",
		FitScore:   80,
		DriveLink:  "https://drive.example/x",
		Email:      &drafts.Draft{Type: drafts.TypeEmail, Text: "Subject: PM at Acme\n\nHello."},
		LinkedInDM: &drafts.Draft{Type: drafts.TypeLinkedIn, Text: "Quick hello."},
		Errors:     []string{"calendar: boom"},
	}
}

func TestHandleUpdate_InboxRunsPipeline(t *testing.T) {
	sender := &fakeSender{}
	runner := &fakeRunner{pack: samplePack()}
	bot := &Bot{send: sender, pipeline: runner, followups: &fakeScanner{}}

	jdText := "About the role: PM at Acme. Requirements: 5 years of experience."
	bot.HandleUpdate(context.Background(), textUpdate(jdText))

	require.Len(t, sender.sent, 2) // ack + pack
	reply := sender.sent[1]
	assert.Contains(t, reply, "PM at Acme (Remote)")
	assert.Contains(t, reply, "fit 80%")
	assert.Contains(t, reply, "https://drive.example/x")
	assert.Contains(t, reply, "Quick hello.")
	assert.Contains(t, reply, "calendar: boom")
}

func TestHandleUpdate_OCRRejectionIsUserFacing(t *testing.T) {
	sender := &fakeSender{}
	pack := &pipeline.ApplicationPack{
		RunID:        "run-abc",
		OCRRejection: &ocr.QualityError{Reason: "the screenshot may be cropped or blurry"},
	}
	bot := &Bot{send: sender, pipeline: &fakeRunner{pack: pack}, followups: &fakeScanner{}}

	bot.HandleUpdate(context.Background(), textUpdate("https://example.com/jobs/1"))

	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[1], "couldn't read that screenshot")
	assert.Contains(t, sender.sent[1], "cropped or blurry")
}

func TestHandleUpdate_Followup(t *testing.T) {
	sender := &fakeSender{}
	scanner := &fakeScanner{notes: []followup.Note{
		{Company: "Acme", Role: "PM", Text: "Checking in on my application."},
	}}
	bot := &Bot{send: sender, pipeline: &fakeRunner{}, followups: scanner}

	bot.HandleUpdate(context.Background(), textUpdate("please follow up"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "PM at Acme")
	assert.Contains(t, sender.sent[0], "Checking in")
}

func TestHandleUpdate_ProfileQuestionAnswered(t *testing.T) {
	sender := &fakeSender{}
	answerer := &fakeAnswerer{answer: profile.Answer{
		Text:       "Dana has shipped ML platforms for six years.",
		Narrative:  profile.NarrativeAI,
		Ungrounded: []string{"Globex Corporation"},
	}}
	bot := &Bot{send: sender, pipeline: &fakeRunner{}, followups: &fakeScanner{}, profiles: answerer}

	bot.HandleUpdate(context.Background(), textUpdate("tell me about my background"))

	assert.Equal(t, "tell me about my background", answerer.query)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "[AI angle]")
	assert.Contains(t, sender.sent[0], "shipped ML platforms")
	assert.Contains(t, sender.sent[0], "Potential ungrounded claims: Globex Corporation")
}

func TestHandleUpdate_ProfileUnavailable(t *testing.T) {
	sender := &fakeSender{}
	bot := &Bot{send: sender, pipeline: &fakeRunner{}, followups: &fakeScanner{}}

	bot.HandleUpdate(context.Background(), textUpdate("tell me about my background"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "no applicant profile is loaded")
}

func TestHandleUpdate_Clarify(t *testing.T) {
	sender := &fakeSender{}
	bot := &Bot{send: sender, pipeline: &fakeRunner{}, followups: &fakeScanner{}}

	bot.HandleUpdate(context.Background(), textUpdate("hello"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "job posting")
}

func TestWebhook_SecretEnforced(t *testing.T) {
	runner := &fakeRunner{pack: samplePack(), ran: make(chan pipeline.Input, 1)}
	bot := &Bot{send: &fakeSender{}, pipeline: runner, followups: &fakeScanner{}}
	handler := bot.Routes("/telegram/webhook", "s3cret")

	body, err := json.Marshal(textUpdate("https://example.com/jobs/1"))
	require.NoError(t, err)

	// Wrong secret is refused.
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Right secret is accepted and dispatches the pipeline.
	req = httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewReader(body))
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", "s3cret")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	select {
	case in := <-runner.ran:
		assert.Contains(t, in.RawText, "example.com")
	case <-time.After(2 * time.Second):
		t.Fatal("pipeline was not invoked")
	}
}

func TestWebhook_Healthz(t *testing.T) {
	bot := &Bot{send: &fakeSender{}, pipeline: &fakeRunner{}, followups: &fakeScanner{}}
	handler := bot.Routes("/telegram/webhook", "")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
