package analytics

import (
	"github.com/CTAG07/Trickchain/pkg/corpus"
)

// Occurrence is a training combo that contains the focus token.
type Occurrence struct {
	Index  int      `json:"index"`
	Label  string   `json:"label"`
	Tokens []string `json:"tokens"`
	// Positions lists every index of the focus token inside Tokens.
	Positions []int `json:"positions"`
}

// FocusContext describes the neighbourhood of one token across a corpus.
// Predecessors and Successors are sorted by descending count, then token.
type FocusContext struct {
	Token        string       `json:"token"`
	Count        int          `json:"count"`
	Predecessors []TokenCount `json:"predecessors"`
	Successors   []TokenCount `json:"successors"`
	Occurrences  []Occurrence `json:"occurrences"`
}

// ExploreToken collects which tokens immediately precede and follow focus,
// and every combo that contains it, in corpus order.
func ExploreToken(c *corpus.Corpus, focus string) FocusContext {
	before := make(map[string]int)
	after := make(map[string]int)
	fc := FocusContext{Token: focus}

	for _, seq := range c.Sequences() {
		var positions []int
		for i, token := range seq.Tokens {
			if token != focus {
				continue
			}
			positions = append(positions, i)
			if i > 0 {
				before[seq.Tokens[i-1]]++
			}
			if i < len(seq.Tokens)-1 {
				after[seq.Tokens[i+1]]++
			}
		}
		if len(positions) == 0 {
			continue
		}
		fc.Count += len(positions)
		fc.Occurrences = append(fc.Occurrences, Occurrence{
			Index:     seq.Index,
			Label:     seq.Label,
			Tokens:    seq.Tokens,
			Positions: positions,
		})
	}

	fc.Predecessors = sortCounts(before, Descending, 0)
	fc.Successors = sortCounts(after, Descending, 0)
	return fc
}
