package util

import "strings"

// LevenshteinDistance returns the number of single-rune edits needed to turn
// a into b.
func LevenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

// SuggestSimilar returns the candidates that look like a typo of input:
// those within maxDistance edits (capped at half the input length) or
// starting with input. Matching ignores case; candidate order is kept.
func SuggestSimilar(input string, candidates []string, maxDistance int) []string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return nil
	}
	limit := min(maxDistance, max(1, len([]rune(input))/2))

	var out []string
	for _, c := range candidates {
		lc := strings.ToLower(c)
		if strings.HasPrefix(lc, input) || LevenshteinDistance(input, lc) <= limit {
			out = append(out, c)
		}
	}
	return out
}
