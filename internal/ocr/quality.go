package ocr

import (
	"fmt"
	"strings"
	"unicode"
)

// QualityError reports OCR output rejected by the quality gate. Callers can
// surface Reason to the user instead of a generic failure.
type QualityError struct {
	Reason string
}

func (e *QualityError) Error() string {
	return fmt.Sprintf("OCR quality check failed: %s", e.Reason)
}

// Default gate thresholds.
const (
	DefaultMinChars      = 120
	DefaultMinAlphaRatio = 0.5
)

// domainIndicators are words a real job posting almost always contains.
var domainIndicators = []string{
	"experience", "responsibilities", "requirements", "qualifications",
	"role", "position", "job", "team", "skills", "about",
}

// QualityGate decides whether OCR output is usable as a job description.
type QualityGate struct {
	MinChars               int
	MinAlphaRatio          float64
	RequireDomainIndicator bool
}

// DefaultQualityGate returns the gate used by the pipeline.
func DefaultQualityGate() QualityGate {
	return QualityGate{
		MinChars:               DefaultMinChars,
		MinAlphaRatio:          DefaultMinAlphaRatio,
		RequireDomainIndicator: true,
	}
}

// Check inspects text and returns a *QualityError describing the first
// failed criterion, or nil when the text passes.
func (g QualityGate) Check(text string) error {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < g.MinChars {
		return &QualityError{Reason: fmt.Sprintf("extracted only %d characters (minimum %d); the screenshot may be cropped or blurry", len(trimmed), g.MinChars)}
	}

	alpha, total := 0, 0
	for _, r := range trimmed {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) {
			alpha++
		}
	}
	if total > 0 && float64(alpha)/float64(total) < g.MinAlphaRatio {
		return &QualityError{Reason: "output is mostly non-letter characters; the image may not contain readable text"}
	}

	if g.RequireDomainIndicator && !containsDomainIndicator(trimmed) {
		return &QualityError{Reason: "text does not look like a job posting"}
	}
	return nil
}

func containsDomainIndicator(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range domainIndicators {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
