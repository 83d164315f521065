// Package rank scores welfare schemes against free-form Marathi queries.
//
// Retrieval is deterministic: BM25 over the corpus texts plus a small
// keyword-boost table that routes generic intents ("मी शेतकरी आहे") to the
// right scheme family. An optional ranking oracle can refine the pick among
// the top candidates; its answer is untrusted and every failure falls back
// to the deterministic top result.
package rank

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/smarathe/yojanasetu/internal/scheme"
	"github.com/smarathe/yojanasetu/pkg/provider/oracle"
)

// maxResults caps how many schemes a single retrieval may return regardless
// of the requested k.
const maxResults = 10

// defaultOracleTimeout bounds a single oracle consultation.
const defaultOracleTimeout = 8 * time.Second

// Result is one retrieved scheme with its combined relevance score.
type Result struct {
	Scheme *scheme.Scheme
	Score  float64
}

// Ranker retrieves and orders schemes for citizen queries. It pre-tokenizes
// the corpus at construction and is safe for concurrent use.
type Ranker struct {
	corpus    *scheme.Corpus
	docTokens [][]string

	oracle        oracle.Provider
	oracleTimeout time.Duration
	log           *slog.Logger
}

// Option customizes a [Ranker].
type Option func(*Ranker)

// WithOracle sets the ranking oracle consulted by [Ranker.SelectBest].
// Without it the ranker uses [oracle.Disabled] and selection is purely
// deterministic.
func WithOracle(p oracle.Provider) Option {
	return func(r *Ranker) {
		if p != nil {
			r.oracle = p
		}
	}
}

// WithOracleTimeout bounds a single oracle call. Non-positive values keep
// the default.
func WithOracleTimeout(d time.Duration) Option {
	return func(r *Ranker) {
		if d > 0 {
			r.oracleTimeout = d
		}
	}
}

// WithLogger sets the logger used for retrieval and selection diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(r *Ranker) {
		if log != nil {
			r.log = log
		}
	}
}

// New builds a ranker over the given corpus.
func New(corpus *scheme.Corpus, opts ...Option) *Ranker {
	r := &Ranker{
		corpus:        corpus,
		docTokens:     make([][]string, 0, corpus.Len()),
		oracle:        oracle.Disabled{},
		oracleTimeout: defaultOracleTimeout,
		log:           slog.Default(),
	}
	for i := range corpus.All() {
		r.docTokens = append(r.docTokens, tokenize(corpus.All()[i].SearchText()))
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns at most k schemes for the query ordered by descending
// score. k is capped at 10 and non-positive k yields no results; ties keep
// corpus order. An empty corpus yields no results, and a query with no
// usable tokens still returns the boost-ranked head of the corpus so the
// caller can ask a follow-up instead of dead-ending.
func (r *Ranker) Retrieve(query string, k int) []Result {
	if r.corpus.Len() == 0 || k <= 0 {
		return nil
	}
	limit := k
	if limit > maxResults {
		limit = maxResults
	}

	schemes := r.corpus.All()
	lexical := bm25Scores(tokenize(query), r.docTokens)

	results := make([]Result, len(schemes))
	for i := range schemes {
		s := &schemes[i]
		results[i] = Result{
			Scheme: s,
			Score:  lexical[i] + keywordBoost(query, s),
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit < len(results) {
		results = results[:limit]
	}
	ids := make([]string, len(results))
	for i, res := range results {
		ids[i] = res.Scheme.ID
	}
	r.log.Debug("scheme retrieval", "query_len", len(query), "k", k, "top_ids", ids)
	return results
}

// SelectBest picks the scheme to act on from retrieved results. The oracle
// sees at most [oracle.MaxCandidates] candidates; an invalid or failed
// answer degrades to the deterministic top result. Returns nil only for an
// empty result set.
func (r *Ranker) SelectBest(ctx context.Context, query string, results []Result) *scheme.Scheme {
	if len(results) == 0 {
		return nil
	}
	top := results[0].Scheme

	candidates := make([]oracle.Candidate, 0, oracle.MaxCandidates)
	for _, res := range results {
		if len(candidates) == oracle.MaxCandidates {
			break
		}
		candidates = append(candidates, oracle.Candidate{
			SchemeID:    res.Scheme.ID,
			Name:        res.Scheme.Name,
			Category:    res.Scheme.Category,
			Description: res.Scheme.Description,
			Benefits:    res.Scheme.Benefits,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, r.oracleTimeout)
	defer cancel()

	answer, err := r.oracle.Rank(ctx, query, candidates)
	if err != nil {
		if !errors.Is(err, oracle.ErrNoOpinion) {
			r.log.Warn("scheme oracle failed, using top result", "error", err, "top_id", top.ID)
		}
		return top
	}

	picked := resolveSchemeID(answer, results)
	if picked == nil {
		r.log.Warn("scheme oracle answer did not resolve", "answer_len", len(answer), "top_id", top.ID)
		return top
	}
	r.log.Info("scheme oracle pick", "scheme_id", picked.ID)
	return picked
}

// resolveSchemeID validates an untrusted oracle answer against the result
// set: exact id match first, then the first known id contained in the
// answer text (models sometimes wrap the id in prose).
func resolveSchemeID(answer string, results []Result) *scheme.Scheme {
	for _, res := range results {
		if answer == res.Scheme.ID {
			return res.Scheme
		}
	}
	for _, res := range results {
		if res.Scheme.ID != "" && strings.Contains(answer, res.Scheme.ID) {
			return res.Scheme
		}
	}
	return nil
}
