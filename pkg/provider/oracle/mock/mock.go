// Package mock provides a test double for the oracle.Provider interface.
//
// Use Oracle in unit tests to verify the candidate sets the ranker sends and
// to feed controlled picks without a live LLM backend.
//
// Example:
//
//	o := &mock.Oracle{RankResult: "pm_kisan"}
//	id, err := o.Rank(ctx, query, candidates)
package mock

import (
	"context"
	"sync"

	"github.com/smarathe/yojanasetu/pkg/provider/oracle"
)

// RankCall records a single invocation of Rank.
type RankCall struct {
	// Query is the query string passed to Rank.
	Query string
	// Candidates is the candidate set passed to Rank.
	Candidates []oracle.Candidate
}

// Oracle is a mock implementation of oracle.Provider.
// Zero values cause Rank to return ("", nil). Set RankErr to inject errors.
type Oracle struct {
	mu sync.Mutex

	// RankResult is returned as the chosen scheme id.
	RankResult string

	// RankErr, if non-nil, is returned as the error from Rank.
	RankErr error

	// RankCalls records every invocation, in order.
	RankCalls []RankCall
}

// Compile-time interface check.
var _ oracle.Provider = (*Oracle)(nil)

// Rank implements oracle.Provider.
func (o *Oracle) Rank(_ context.Context, query string, candidates []oracle.Candidate) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.RankCalls = append(o.RankCalls, RankCall{Query: query, Candidates: candidates})
	if o.RankErr != nil {
		return "", o.RankErr
	}
	return o.RankResult, nil
}
