package markov

// Prune returns a copy of the model without the chain links whose frequency
// is less than or equal to minFreq. This is useful for removing rare, and
// often noisy, transitions. States left without any successor are dropped
// entirely, and so are start anchors that are no longer states. The receiver
// is not modified.
func (m *Model) Prune(minFreq int) *Model {
	cc := newChainCounts()
	cc.seqs = m.sequences
	for state, choices := range m.chains {
		for _, choice := range choices {
			if choice.Freq <= minFreq {
				continue
			}
			if choice.EOC {
				cc.ends[state] += choice.Freq
			} else {
				cc.addLink(state, choice.Text, choice.Freq)
			}
		}
	}
	for token, freq := range m.starts {
		cc.starts[token] = freq
	}
	return cc.model()
}
