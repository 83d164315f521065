// Package oracle defines the ranking-oracle capability: an optional external
// service consulted to refine which candidate scheme best matches an
// ambiguous citizen query.
//
// The oracle is strictly advisory. It may only pick among candidates the
// lexical ranker already produced, and every implementation failure — network
// error, timeout, garbage output — degrades to the deterministic top-ranked
// candidate on the caller's side. The [Disabled] implementation makes that
// fallback structural: wiring it in place of a real oracle guarantees "no
// opinion" without any configuration flag checks in the ranking code.
//
// Implementations must be safe for concurrent use.
package oracle

import (
	"context"
	"errors"
)

// ErrNoOpinion is returned by oracles that decline to rank, most notably
// [Disabled]. Callers treat it exactly like any other failure: fall back to
// the deterministic top candidate.
var ErrNoOpinion = errors.New("oracle: no opinion")

// MaxCandidates is the largest candidate set an oracle is ever shown.
const MaxCandidates = 6

// Candidate is one scheme offered to the oracle for ranking.
type Candidate struct {
	// SchemeID is the identifier the oracle must answer with.
	SchemeID string `json:"scheme_id"`

	// Name is the scheme's display name.
	Name string `json:"name"`

	// Category groups schemes by target audience.
	Category string `json:"category"`

	// Description is the scheme's retrieval text.
	Description string `json:"description"`

	// Benefits describes what an eligible citizen receives.
	Benefits string `json:"benefits"`
}

// Provider is the ranking-oracle abstraction.
type Provider interface {
	// Rank asks the oracle which candidate best matches the citizen's query
	// and returns the chosen scheme id. The returned id is untrusted: callers
	// must validate it against the candidate set and fall back when it does
	// not resolve. Implementations should bound the call with ctx and return
	// promptly on cancellation.
	Rank(ctx context.Context, query string, candidates []Candidate) (string, error)
}

// Disabled is the no-op oracle used when no external ranking service is
// configured. Rank always returns [ErrNoOpinion].
type Disabled struct{}

// Compile-time interface check.
var _ Provider = Disabled{}

// Rank implements [Provider] by declining to rank.
func (Disabled) Rank(context.Context, string, []Candidate) (string, error) {
	return "", ErrNoOpinion
}
