package knowledge

import "strings"

// Normalize lowercases a free-text query and splits it into its
// whitespace-delimited tokens. No stemming, no stop-word removal. An empty or
// whitespace-only query yields an empty token set; callers must short-circuit
// matching in that case.
func Normalize(query string) (string, []string) {
	lowered := strings.ToLower(strings.TrimSpace(query))
	return lowered, strings.Fields(lowered)
}
