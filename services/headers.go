package services

import (
	"sort"
	"strings"

	"github.com/fiam/gounidecode/unidecode"
	"github.com/schollz/closestmatch"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// minSuggestSimilarity is how close a present header must be to a missing one
// before it is offered as a suggestion.
const minSuggestSimilarity = 0.6

// normalizeHeader strips accents, case and repeated spaces
func normalizeHeader(input string) string {
	input = strings.ToLower(unidecode.Unidecode(strings.TrimSpace(input)))
	return strings.Join(strings.Fields(input), " ")
}

// calculateSimilarity is 1 minus the levenshtein distance over the longer length
func calculateSimilarity(a, b string) float64 {
	distance := levenshtein.DistanceForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

// MissingColumn is a required header that was not found
type MissingColumn struct {
	Column     string `json:"column"`
	Suggestion string `json:"suggestion,omitempty"`
}

// HeaderMatch maps canonical column names to the header text found in the sheet.
type HeaderMatch struct {
	Columns map[string]string
	Missing []MissingColumn
	Unknown []string
}

// MatchHeaders compares the headers of a sheet against the known columns.
// Matching ignores accents, case and spacing. Missing required columns get the
// closest unused header as a suggestion; unknown headers are only reported.
func MatchHeaders(present, required, optional []string) HeaderMatch {
	byNorm := make(map[string]string, len(present))
	for _, h := range present {
		if strings.TrimSpace(h) == "" {
			continue
		}
		n := normalizeHeader(h)
		if _, dup := byNorm[n]; !dup {
			byNorm[n] = h
		}
	}

	m := HeaderMatch{Columns: make(map[string]string)}
	used := make(map[string]bool)
	known := append(append([]string{}, required...), optional...)
	for _, col := range known {
		n := normalizeHeader(col)
		if h, ok := byNorm[n]; ok {
			m.Columns[col] = h
			used[n] = true
		}
	}

	var leftover []string
	for n, h := range byNorm {
		if !used[n] {
			leftover = append(leftover, n)
			m.Unknown = append(m.Unknown, h)
		}
	}

	var cm *closestmatch.ClosestMatch
	if len(leftover) > 0 {
		cm = closestmatch.New(leftover, []int{2, 3})
	}
	for _, col := range required {
		if _, ok := m.Columns[col]; ok {
			continue
		}
		miss := MissingColumn{Column: col}
		if cm != nil {
			n := normalizeHeader(col)
			if best := cm.Closest(n); best != "" && calculateSimilarity(n, best) >= minSuggestSimilarity {
				miss.Suggestion = byNorm[best]
			}
		}
		m.Missing = append(m.Missing, miss)
	}
	sort.Strings(m.Unknown)
	return m
}

// Lookup returns the value of a canonical column in row, trimmed. Rows are keyed
// by the header text found in the sheet.
func (m HeaderMatch) Lookup(row map[string]string, column string) string {
	h, ok := m.Columns[column]
	if !ok {
		return ""
	}
	return strings.TrimSpace(row[h])
}
