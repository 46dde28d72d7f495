// Package drafts generates outreach text for an application: an email, a
// LinkedIn DM, and a referral request.
package drafts

import (
	"context"
	"fmt"
	"strings"

	"github.com/karan/inbox-agent/internal/jd"
	"github.com/karan/inbox-agent/internal/llm"
	"github.com/karan/inbox-agent/internal/profile"
	"github.com/karan/inbox-agent/internal/prompts"
)

// Draft types.
const (
	TypeEmail    = "email"
	TypeLinkedIn = "linkedin_dm"
	TypeReferral = "referral"
	TypeFollowup = "followup_note"
)

// LinkedInMaxChars is the hard ceiling for a LinkedIn DM. Drafts over the
// limit are truncated, not rejected; a cut-off DM beats no DM.
const LinkedInMaxChars = 300

// Draft is one generated outreach message.
type Draft struct {
	Type        string    `json:"type"`
	Text        string    `json:"text"`
	CharCount   int       `json:"char_count"`
	WithinLimit bool      `json:"within_limit"`
	Usage       llm.Usage `json:"-"`
}

// Request carries the shared context every draft needs.
type Request struct {
	Profile profile.Profile
	JD      jd.Schema
}

func (r Request) userPrompt() string {
	var b strings.Builder
	b.WriteString("Applicant:\n")
	b.WriteString(r.Profile.Summary())
	fmt.Fprintf(&b, "\nCompany: %s\nRole: %s\n", r.JD.Company, r.JD.Role)
	if r.JD.Description != "" {
		fmt.Fprintf(&b, "Role summary: %s\n", r.JD.Description)
	}
	return b.String()
}

// GenerateEmail drafts an application email.
func GenerateEmail(ctx context.Context, client llm.Client, req Request) (Draft, error) {
	return generate(ctx, client, prompts.MustLoad("drafts.json", "email", 1), req, TypeEmail, 0)
}

// GenerateLinkedInDM drafts a LinkedIn DM, hard-capped at LinkedInMaxChars.
func GenerateLinkedInDM(ctx context.Context, client llm.Client, req Request) (Draft, error) {
	return generate(ctx, client, prompts.MustLoad("drafts.json", "linkedin", 1), req, TypeLinkedIn, LinkedInMaxChars)
}

// GenerateReferral drafts a referral-request message.
func GenerateReferral(ctx context.Context, client llm.Client, req Request) (Draft, error) {
	return generate(ctx, client, prompts.MustLoad("drafts.json", "referral", 1), req, TypeReferral, 0)
}

func generate(ctx context.Context, client llm.Client, system string, req Request, draftType string, maxChars int) (Draft, error) {
	resp, err := client.Complete(ctx, system, req.userPrompt(), false)
	if err != nil {
		return Draft{}, fmt.Errorf("%s draft failed: %w", draftType, err)
	}

	text := strings.TrimSpace(resp.Text)
	withinLimit := true
	if maxChars > 0 && len(text) > maxChars {
		text = Truncate(text, maxChars)
		withinLimit = false
	}
	return Draft{
		Type:        draftType,
		Text:        text,
		CharCount:   len(text),
		WithinLimit: withinLimit,
		Usage:       resp.Usage,
	}, nil
}

// Truncate cuts text to at most max bytes, ending with an ellipsis. Cuts at
// the last word boundary that still fits.
func Truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := text[:max-3]
	if idx := strings.LastIndexByte(cut, ' '); idx > max/2 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut) + "..."
}
