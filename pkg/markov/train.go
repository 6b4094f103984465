package markov

import (
	"cmp"
	"slices"

	"github.com/CTAG07/Trickchain/pkg/corpus"
)

// chainCounts accumulates raw transition counts while a model is being built.
type chainCounts struct {
	next   map[string]map[string]int
	ends   map[string]int
	starts map[string]int
	seqs   int
}

func newChainCounts() *chainCounts {
	return &chainCounts{
		next:   make(map[string]map[string]int),
		ends:   make(map[string]int),
		starts: make(map[string]int),
	}
}

func (cc *chainCounts) addLink(state, next string, freq int) {
	links, ok := cc.next[state]
	if !ok {
		links = make(map[string]int)
		cc.next[state] = links
	}
	links[next] += freq
}

// addSequence records every adjacent pair of tokens, the start of the
// sequence and the implicit End-Of-Chain after its last token.
func (cc *chainCounts) addSequence(tokens []string) {
	if len(tokens) == 0 {
		return
	}
	cc.seqs++
	cc.starts[tokens[0]]++
	for i := 0; i < len(tokens)-1; i++ {
		cc.addLink(tokens[i], tokens[i+1], 1)
	}
	cc.ends[tokens[len(tokens)-1]]++
}

// BuildModel trains a first-order model from every sequence of c. Building
// is deterministic: the same corpus always yields a structurally identical
// model. An empty corpus yields an empty model that can never generate.
func BuildModel(c *corpus.Corpus) *Model {
	cc := newChainCounts()
	for _, seq := range c.Sequences() {
		cc.addSequence(seq.Tokens)
	}
	return cc.model()
}

// model freezes the counts into a Model. Successors are ordered by token
// text with the End-Of-Chain marker last, so that sampling with a seeded
// source does not depend on map iteration order.
func (cc *chainCounts) model() *Model {
	m := &Model{
		chains:    make(map[string][]ChainToken, len(cc.next)+len(cc.ends)),
		totals:    make(map[string]int, len(cc.next)+len(cc.ends)),
		starts:    make(map[string]int, len(cc.starts)),
		sequences: cc.seqs,
	}

	add := func(state string, choice ChainToken) {
		if choice.Freq <= 0 {
			return
		}
		m.chains[state] = append(m.chains[state], choice)
		m.totals[state] += choice.Freq
	}
	for state, links := range cc.next {
		for next, freq := range links {
			add(state, ChainToken{Text: next, Freq: freq})
		}
	}
	for state, freq := range cc.ends {
		add(state, ChainToken{Freq: freq, EOC: true})
	}

	for state, choices := range m.chains {
		slices.SortFunc(choices, compareChainTokens)
		m.states = append(m.states, state)
	}
	slices.Sort(m.states)

	for token, freq := range cc.starts {
		if freq <= 0 || !m.HasState(token) {
			continue
		}
		m.starts[token] = freq
		m.vocabulary = append(m.vocabulary, token)
	}
	slices.Sort(m.vocabulary)

	return m
}

func compareChainTokens(a, b ChainToken) int {
	if a.EOC != b.EOC {
		if a.EOC {
			return 1
		}
		return -1
	}
	return cmp.Compare(a.Text, b.Text)
}
