// Package jd provides job-description extraction, validation, and caching.
package jd

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Schema is a validated job description.
type Schema struct {
	Company            string   `json:"company" validate:"required,min=1"`
	Role               string   `json:"role" validate:"required,min=1"`
	Location           string   `json:"location"`
	ExperienceRequired string   `json:"experience_required"`
	Skills             []string `json:"skills"`
	Description        string   `json:"description"`
}

// hashPayload pins the identity fields and their order. Location and skills
// are deliberately excluded: the same posting seen with a different location
// string or skill ordering must dedup to the same job.
type hashPayload struct {
	Company     string `json:"company"`
	Description string `json:"description"`
	Role        string `json:"role"`
}

// Hash returns the deterministic content hash used as the cache and dedup
// key: sha256 over the identity payload, first 16 hex characters.
func (s Schema) Hash() string {
	payload, _ := json.Marshal(hashPayload{
		Company:     s.Company,
		Description: s.Description,
		Role:        s.Role,
	})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])[:16]
}

// Validate checks required fields and normalizes whitespace in place.
func (s *Schema) Validate() error {
	s.Company = strings.TrimSpace(s.Company)
	s.Role = strings.TrimSpace(s.Role)
	s.Location = strings.TrimSpace(s.Location)
	s.ExperienceRequired = strings.TrimSpace(s.ExperienceRequired)
	s.Description = strings.TrimSpace(s.Description)

	cleaned := make([]string, 0, len(s.Skills))
	for _, skill := range s.Skills {
		if trimmed := strings.TrimSpace(skill); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	s.Skills = cleaned

	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid JD schema: %w", err)
	}
	return nil
}
