package markov

// ModelStats holds aggregated statistics for a single Markov model.
type ModelStats struct {
	Sequences      int `json:"sequences"`       // The number of training combos.
	States         int `json:"states"`          // The number of distinct states.
	TotalChains    int `json:"total_chains"`    // The number of unique state->next links, End-Of-Chain included.
	TotalFrequency int `json:"total_frequency"` // The sum of frequencies of all links; the total number of trained transitions.
	StartingTokens int `json:"starting_tokens"` // The number of unique tokens that can start a chain.
	EndingTokens   int `json:"ending_tokens"`   // The number of unique tokens that ended a combo.
}

// Stats returns a snapshot of statistics for the model.
func (m *Model) Stats() ModelStats {
	stats := ModelStats{
		Sequences:      m.sequences,
		States:         len(m.states),
		StartingTokens: len(m.vocabulary),
	}
	for state, choices := range m.chains {
		stats.TotalChains += len(choices)
		stats.TotalFrequency += m.totals[state]
		if choices[len(choices)-1].EOC {
			stats.EndingTokens++
		}
	}
	return stats
}
