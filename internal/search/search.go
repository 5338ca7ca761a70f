// Package search ranks playlist track names against a free-text query.
//
// Names and queries are folded before comparison: case is folded and
// combining marks are removed, so "beyonce" finds "Beyoncé". A folded
// substring hit scores 100; anything else scores by Levenshtein similarity,
// taking the best of the whole name and every run of words as long as the
// query.
package search

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxScore is the score of an exact or substring match.
const MaxScore = 100

// Match is one ranked candidate.
type Match struct {
	Index int
	Name  string
	Score int
}

// Options shapes a result list.
type Options struct {
	// Limit caps the result count. Zero or negative means no cap.
	Limit int
	// MinScore drops candidates scoring below it.
	MinScore int
}

// Find scores every name against query and returns matches ordered by
// descending score, then by index. An empty query matches nothing.
func Find(query string, names []string, opts Options) []Match {
	q := Fold(query)
	if q == "" {
		return []Match{}
	}
	matches := make([]Match, 0, len(names))
	for i, name := range names {
		score := Score(q, Fold(name))
		if score < opts.MinScore || score == 0 {
			continue
		}
		matches = append(matches, Match{Index: i, Name: name, Score: score})
	}
	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].Score != matches[b].Score {
			return matches[a].Score > matches[b].Score
		}
		return matches[a].Index < matches[b].Index
	})
	if opts.Limit > 0 && len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}
	return matches
}

// Score compares an already folded query and name.
func Score(query, name string) int {
	if query == "" || name == "" {
		return 0
	}
	if strings.Contains(name, query) {
		return MaxScore
	}
	best := ratio(query, name)
	queryWords := len(strings.Fields(query))
	words := strings.Fields(name)
	for start := 0; start+queryWords <= len(words); start++ {
		window := strings.Join(words[start:start+queryWords], " ")
		if r := ratio(query, window); r > best {
			best = r
		}
	}
	return best
}

// Fold lowercases s, strips diacritics and collapses punctuation and
// whitespace runs to single spaces.
func Fold(s string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		stripped = s
	}
	folded := cases.Fold().String(stripped)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	return strings.Join(fields, " ")
}

func ratio(a, b string) int {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 0
	}
	distance := fuzzy.LevenshteinDistance(a, b)
	return int(math.Round(float64(MaxScore) * (1 - float64(distance)/float64(longest))))
}
