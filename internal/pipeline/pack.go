package pipeline

import (
	"fmt"

	"github.com/karan/inbox-agent/internal/drafts"
	"github.com/karan/inbox-agent/internal/evals"
	"github.com/karan/inbox-agent/internal/jd"
	"github.com/karan/inbox-agent/internal/ocr"
)

// ApplicationPack is the aggregate result of one pipeline run. It is built
// up stage by stage and returned to the caller no matter how many stages
// failed; Errors records what went wrong along the way.
type ApplicationPack struct {
	RunID string     `json:"run_id"`
	JD    *jd.Schema `json:"jd,omitempty"`

	ResumeUsed string `json:"resume_used,omitempty"`
	FitScore   int    `json:"fit_score"`
	MutatedTex string `json:"-"`

	PDFPath      string `json:"pdf_path,omitempty"`
	RollbackUsed bool   `json:"rollback_used"`
	DriveLink    string `json:"drive_link,omitempty"`
	CalendarLink string `json:"calendar_link,omitempty"`

	Email      *drafts.Draft `json:"email,omitempty"`
	LinkedInDM *drafts.Draft `json:"linkedin_dm,omitempty"`
	Referral   *drafts.Draft `json:"referral,omitempty"`

	JobID int64 `json:"job_id,omitempty"`

	Evals  evals.Results `json:"eval_results"`
	Errors []string      `json:"errors"`

	TokensUsed   int     `json:"tokens_used"`
	CostEstimate float64 `json:"cost_estimate"`

	// OCRRejection is set when screenshot input failed the OCR quality
	// gate, so adapters can show the reason instead of a generic failure.
	OCRRejection *ocr.QualityError `json:"-"`
}

func (p *ApplicationPack) addError(stage string, err error) {
	p.Errors = append(p.Errors, fmt.Sprintf("%s: %v", stage, err))
}

// Company returns the extracted company name, or "" pre-extraction.
func (p *ApplicationPack) Company() string {
	if p.JD == nil {
		return ""
	}
	return p.JD.Company
}

// Role returns the extracted role title, or "" pre-extraction.
func (p *ApplicationPack) Role() string {
	if p.JD == nil {
		return ""
	}
	return p.JD.Role
}
