package ui

import (
	"sort"
	"strings"
)

// MaxSuggestionDistance is the largest edit distance offered as a suggestion.
const MaxSuggestionDistance = 3

// FindSimilar returns up to limit candidates within MaxSuggestionDistance of
// target, closest first. Matching ignores case.
//
//	FindSimilar("Pst", []string{"Post", "User"}, 3) // ["Post"]
func FindSimilar(target string, candidates []string, limit int) []string {
	type match struct {
		value    string
		distance int
	}
	var matches []match
	for _, c := range candidates {
		d := LevenshteinDistance(strings.ToLower(target), strings.ToLower(c))
		if d <= MaxSuggestionDistance {
			matches = append(matches, match{value: c, distance: d})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	out := make([]string, 0, limit)
	for i := 0; i < len(matches) && i < limit; i++ {
		out = append(out, matches[i].value)
	}
	return out
}

// LevenshteinDistance is the minimum number of single character edits
// turning s1 into s2.
func LevenshteinDistance(s1, s2 string) int {
	a, b := []rune(s1), []rune(s2)
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
