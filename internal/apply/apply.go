// Package apply submits scheme applications. The government portals have no
// public API, so submission is simulated: a reference number is issued and
// the citizen gets the standard next steps. The shape is kept so a real
// integration can replace the body without touching callers.
package apply

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/smarathe/yojanasetu/internal/profile"
	"github.com/smarathe/yojanasetu/internal/scheme"
)

// StatusSubmitted is the status of every accepted application.
const StatusSubmitted = "submitted"

// Result is the submission receipt returned to the client.
type Result struct {
	Status        string   `json:"status"`
	ApplicationID string   `json:"application_id"`
	SchemeName    string   `json:"scheme_name"`
	NextSteps     []string `json:"next_steps_mr"`
}

// Service issues application receipts.
type Service struct {
	log *slog.Logger
}

// New creates a submission service.
func New(log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{log: log}
}

// Submit records an application for the given scheme and returns the
// receipt. The profile is accepted for parity with a real submission; the
// simulated portal does not inspect it.
func (s *Service) Submit(_ profile.Profile, sch *scheme.Scheme) Result {
	id := newApplicationID()
	name := "Unknown"
	if sch != nil && sch.Name != "" {
		name = sch.Name
	}
	schemeID := ""
	if sch != nil {
		schemeID = sch.ID
	}
	s.log.Info("application submitted", "scheme_id", schemeID, "application_id", id)
	return Result{
		Status:        StatusSubmitted,
		ApplicationID: id,
		SchemeName:    name,
		NextSteps: []string{
			fmt.Sprintf("तुमचा अर्ज क्रमांक %s आहे.", id),
			"पुढील ७ दिवसात तुम्हाला एसएमएस येईल.",
			"कागदपत्रांची पडताळणी संबंधित कार्यालयात होईल.",
		},
	}
}

// newApplicationID builds a reference of the form MH-1234-ABCD.
func newApplicationID() string {
	const digits = "0123456789"
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	buf := []byte("MH-____-____")
	for i := 3; i < 7; i++ {
		buf[i] = digits[rand.IntN(len(digits))]
	}
	for i := 8; i < 12; i++ {
		buf[i] = letters[rand.IntN(len(letters))]
	}
	return string(buf)
}
