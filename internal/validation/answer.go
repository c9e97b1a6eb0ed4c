package validation

import (
	"strings"
	"unicode"
)

// similarityThreshold is the largest edit distance, relative to the longer answer,
// still accepted as the same answer
const similarityThreshold = 0.2

// minContainedShare is the smallest share of the longer answer's runes that a
// whole-word fragment must cover to count as a match
const minContainedShare = 0.4

var articles = []string{"the ", "a ", "an "}

// NormalizeAnswer lowercases an answer, drops a leading article and punctuation,
// and collapses whitespace
func NormalizeAnswer(answer string) string {
	answer = strings.ToLower(strings.TrimSpace(answer))

	for _, article := range articles {
		if strings.HasPrefix(answer, article) {
			answer = answer[len(article):]
			break
		}
	}

	answer = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return r
	}, answer)

	return strings.Join(strings.Fields(answer), " ")
}

// IsSimilarAnswer reports whether a submitted answer matches the expected one closely
// enough to count as correct
func IsSimilarAnswer(submitted, expected string) bool {
	a := NormalizeAnswer(submitted)
	b := NormalizeAnswer(expected)

	if a == "" || b == "" {
		return a == b
	}
	if a == b {
		return true
	}

	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))

	// "Leonardo da Vinci" vs "da Vinci", but not "e" vs "Edison"
	short, long := a, b
	if len(ra) > len(rb) {
		short, long = b, a
	}
	if containsWords(long, short) && float64(min(len(ra), len(rb)))/float64(longest) >= minContainedShare {
		return true
	}

	return float64(levenshtein(ra, rb))/float64(longest) < similarityThreshold
}

// containsWords reports whether fragment appears in s on word boundaries. Both are
// normalized, so words are separated by single spaces.
func containsWords(s, fragment string) bool {
	return strings.Contains(" "+s+" ", " "+fragment+" ")
}

// levenshtein computes the edit distance between two rune slices using two rows
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
