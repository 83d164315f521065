package rank

import "math"

// BM25 parameters: k1 controls term-frequency saturation, b controls document
// length normalization. Standard values work well on the short scheme texts.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// bm25Scores computes a BM25 relevance score for every document against the
// query tokens. docTokens is the pre-tokenized corpus; the returned slice is
// index-aligned with it. When the query has no usable tokens all scores are
// zero.
func bm25Scores(queryTokens []string, docTokens [][]string) []float64 {
	scores := make([]float64, len(docTokens))
	if len(queryTokens) == 0 {
		return scores
	}

	n := len(docTokens)
	totalLen := 0
	for _, dt := range docTokens {
		totalLen += len(dt)
	}
	avgLen := float64(totalLen) / math.Max(1, float64(n))

	// Document frequency per distinct query term.
	df := make(map[string]int, len(queryTokens))
	for _, term := range queryTokens {
		if _, done := df[term]; done {
			continue
		}
		count := 0
		for _, dt := range docTokens {
			for _, t := range dt {
				if t == term {
					count++
					break
				}
			}
		}
		df[term] = count
	}

	for i, dt := range docTokens {
		tf := make(map[string]int, len(dt))
		for _, t := range dt {
			tf[t]++
		}

		dl := float64(len(dt))
		score := 0.0
		for _, term := range queryTokens {
			f := float64(tf[term])
			if f == 0 {
				continue
			}
			idf := math.Log(1 + (float64(n)-float64(df[term])+0.5)/(float64(df[term])+0.5))
			denom := f + bm25K1*(1-bm25B+bm25B*dl/math.Max(1, avgLen))
			score += idf * (f * (bm25K1 + 1)) / denom
		}
		scores[i] = score
	}
	return scores
}
