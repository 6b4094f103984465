package analytics

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/CTAG07/Trickchain/pkg/corpus"
)

// Order selects how a frequency table is sorted.
type Order int

const (
	// Descending lists the most frequent tokens first.
	Descending Order = iota
	// Ascending lists the least frequent tokens first.
	Ascending
)

func (o Order) String() string {
	if o == Ascending {
		return "asc"
	}
	return "desc"
}

// ParseOrder accepts "desc"/"high-to-low" and "asc"/"low-to-high". An empty
// string means Descending.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc", "descending", "high-to-low":
		return Descending, nil
	case "asc", "ascending", "low-to-high":
		return Ascending, nil
	default:
		return Descending, fmt.Errorf("unknown sort order %q", s)
	}
}

// TokenCount pairs a token with a count.
type TokenCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Frequencies counts every occurrence of every token, at every position.
func Frequencies(c *corpus.Corpus) map[string]int {
	freq := make(map[string]int)
	for _, seq := range c.Sequences() {
		for _, token := range seq.Tokens {
			freq[token]++
		}
	}
	return freq
}

// TokenFrequency returns the frequency table of c sorted by count in the
// given order. Ties are always broken by ascending token text, so the result
// is a total order. A positive topN keeps only the first topN entries.
func TokenFrequency(c *corpus.Corpus, order Order, topN int) []TokenCount {
	return sortCounts(Frequencies(c), order, topN)
}

func sortCounts(counts map[string]int, order Order, topN int) []TokenCount {
	table := make([]TokenCount, 0, len(counts))
	for token, count := range counts {
		table = append(table, TokenCount{Token: token, Count: count})
	}
	slices.SortFunc(table, func(a, b TokenCount) int {
		byCount := cmp.Compare(a.Count, b.Count)
		if order == Descending {
			byCount = -byCount
		}
		if byCount != 0 {
			return byCount
		}
		return cmp.Compare(a.Token, b.Token)
	})
	if topN > 0 && topN < len(table) {
		table = table[:topN]
	}
	return table
}
