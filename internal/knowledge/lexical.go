package knowledge

import (
	"sort"
	"strings"

	"github.com/acuellar/atiende/internal/domain"
)

// TopK is the number of candidates returned per query.
const TopK = 3

// substringScore ranks a substring containment above any token-overlap count.
const substringScore = 1000

// LexicalMatcher scores knowledge rows against a query using substring
// containment and shared-token count. The ranking is deliberately crude: no
// idf weighting, no length normalization, no smoothing. Longer rows are not
// penalized.
type LexicalMatcher struct {
	table *Table
}

// NewLexicalMatcher creates a matcher over a loaded table.
func NewLexicalMatcher(table *Table) *LexicalMatcher {
	return &LexicalMatcher{table: table}
}

// Match returns the top-K candidates for a query. A query that is a substring
// of a row's key (or vice versa) is a strong match; otherwise the score is the
// number of tokens shared between query and key. Rows with zero shared tokens
// and no substring relation are excluded. Ties are broken by table order.
func (m *LexicalMatcher) Match(query string) []domain.MatchCandidate {
	lowered, tokens := Normalize(query)
	if len(tokens) == 0 || m.table == nil || len(m.table.Rows) == 0 {
		return nil
	}

	querySet := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		querySet[t] = struct{}{}
	}

	var candidates []domain.MatchCandidate
	for _, row := range m.table.Rows {
		key := strings.ToLower(row.Key)

		score := 0.0
		if strings.Contains(key, lowered) || strings.Contains(lowered, key) {
			score = substringScore
		} else {
			// Shared-token count is a set intersection; repeated words in a
			// row's key do not inflate the score.
			counted := make(map[string]struct{})
			for _, t := range strings.Fields(key) {
				if _, ok := querySet[t]; !ok {
					continue
				}
				if _, dup := counted[t]; dup {
					continue
				}
				counted[t] = struct{}{}
				score++
			}
		}
		if score == 0 {
			continue
		}
		candidates = append(candidates, domain.MatchCandidate{Row: row, Score: score})
	}

	// Stable sort keeps first-inserted rows ahead on equal scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > TopK {
		candidates = candidates[:TopK]
	}
	return candidates
}
