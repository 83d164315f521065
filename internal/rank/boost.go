package rank

import (
	"strings"

	"github.com/smarathe/yojanasetu/internal/scheme"
)

// boostRule pairs query indicator keywords with a scheme-family test. When
// the query contains any indicator AND the candidate matches the family, the
// bonus is added on top of its lexical score. This corrects generic phrasing
// ("मला मदत हवी, मी शेतकरी आहे") that would otherwise under-rank the
// obviously intended scheme family.
type boostRule struct {
	keywords []string
	matches  func(s *scheme.Scheme) bool
	bonus    float64
}

var boostRules = []boostRule{
	{
		// Farmer / Kisan
		keywords: []string{"शेतकरी", "किसान", "kisan", "farmer", "farming", "agriculture", "शेती"},
		matches: func(s *scheme.Scheme) bool {
			return strings.Contains(s.Category, "शेतकरी") ||
				strings.EqualFold(s.ID, "pm_kisan") ||
				strings.Contains(s.Name, "किसान")
		},
		bonus: 2.8,
	},
	{
		// Women / Ladki Bahin
		keywords: []string{"महिला", "स्त्री", "बहीण", "लाडकी", "ladli", "woman", "women"},
		matches: func(s *scheme.Scheme) bool {
			return strings.Contains(s.Category, "महिला") ||
				strings.EqualFold(s.ID, "ladli_bahin") ||
				strings.Contains(s.Name, "बहीण") ||
				strings.Contains(s.Name, "लाडकी")
		},
		bonus: 2.8,
	},
	{
		// Health / Ayushman
		keywords: []string{"आरोग्य", "आयुष्मान", "hospital", "health", "treatment", "विमा"},
		matches: func(s *scheme.Scheme) bool {
			return strings.Contains(s.Category, "आरोग्य") ||
				strings.EqualFold(s.ID, "pmjay") ||
				strings.Contains(s.Name, "आयुष्मान")
		},
		bonus: 2.8,
	},
	{
		// Pension / Traders
		keywords: []string{"पेन्शन", "pension", "व्यापारी", "दुकानदार", "shopkeeper", "trader", "व्यवसाय"},
		matches: func(s *scheme.Scheme) bool {
			return strings.EqualFold(s.ID, "nps_traders") ||
				strings.Contains(s.Category, "पेन्शन")
		},
		bonus: 2.4,
	},
	{
		// Girl child
		keywords: []string{"मुलगी", "बालिका", "लेक", "girl", "ladki", "daughter"},
		matches: func(s *scheme.Scheme) bool {
			return strings.EqualFold(s.ID, "lekh_ladki") ||
				strings.Contains(s.Category, "बालिका") ||
				strings.Contains(s.Name, "लेक")
		},
		bonus: 2.4,
	},
}

// keywordBoost returns the total deterministic bonus for s given the query.
func keywordBoost(query string, s *scheme.Scheme) float64 {
	q := strings.ToLower(query)
	boost := 0.0
	for _, rule := range boostRules {
		for _, kw := range rule.keywords {
			if strings.Contains(q, kw) {
				if rule.matches(s) {
					boost += rule.bonus
				}
				break
			}
		}
	}
	return boost
}
