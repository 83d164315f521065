// Package scheme holds the welfare-scheme reference model: the scheme entity,
// its eligibility rule predicates, and the YAML corpus loader. The corpus is
// loaded once at startup and treated as immutable thereafter.
package scheme

import "strings"

// Scheme is a static reference entity describing one government welfare
// scheme. Text fields are in Marathi, matching the dialogue language.
type Scheme struct {
	// ID uniquely identifies the scheme across the corpus and the store
	// (e.g. "pm_kisan").
	ID string `yaml:"scheme_id" json:"scheme_id"`

	// Name is the scheme's display name.
	Name string `yaml:"name" json:"name"`

	// Category groups schemes by target audience (e.g. "शेतकरी", "महिला").
	Category string `yaml:"category" json:"category"`

	// Description is a short free-text summary used for retrieval.
	Description string `yaml:"description" json:"description"`

	// Benefits describes what an eligible citizen receives.
	Benefits string `yaml:"benefits" json:"benefits"`

	// Rules is the eligibility rule set. Which keys are present determines
	// which profile fields are required.
	Rules RuleSet `yaml:"rules" json:"rules"`
}

// Validate reports whether s is a usable corpus entry.
func (s *Scheme) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errMissingID
	}
	if strings.TrimSpace(s.Name) == "" {
		return errMissingName
	}
	return nil
}

// SearchText returns the concatenated text surface the ranker scores against:
// name, category, benefits, and description joined by newlines.
func (s *Scheme) SearchText() string {
	return strings.Join([]string{s.Name, s.Category, s.Benefits, s.Description}, "\n")
}
