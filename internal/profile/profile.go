// Package profile loads the applicant's profile and the pre-approved bullet
// bank that bounds what resume mutations may claim.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Profile is the applicant identity used to personalize drafts.
type Profile struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	LinkedIn    string   `json:"linkedin"`
	Positioning string   `json:"positioning"`
	Highlights  []string `json:"highlights"`
}

// Bullet is one pre-approved resume bullet with routing tags.
type Bullet struct {
	Text string   `json:"bullet"`
	Tags []string `json:"tags"`
}

// Load reads a profile.json file.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("failed to parse profile: %w", err)
	}
	if strings.TrimSpace(p.Name) == "" {
		return Profile{}, fmt.Errorf("profile is missing a name")
	}
	return p, nil
}

// LoadBulletBank reads a bullet_bank.json file. A missing file is not an
// error; mutation then has no approved corpus beyond the current resume.
func LoadBulletBank(path string) ([]Bullet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read bullet bank: %w", err)
	}
	var bank []Bullet
	if err := json.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("failed to parse bullet bank: %w", err)
	}
	return bank, nil
}

// BulletTexts flattens a bullet bank to its texts.
func BulletTexts(bank []Bullet) []string {
	texts := make([]string, 0, len(bank))
	for _, b := range bank {
		texts = append(texts, b.Text)
	}
	return texts
}

// Summary renders the profile as prompt context for draft generation.
func (p Profile) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	if p.Positioning != "" {
		fmt.Fprintf(&b, "Positioning: %s\n", p.Positioning)
	}
	for _, h := range p.Highlights {
		fmt.Fprintf(&b, "- %s\n", h)
	}
	return b.String()
}
