package markov

import "slices"

// EOCTokenText is the text used for the End-Of-Chain marker in exported
// models and debug output. It is never emitted as part of a generated sequence.
const EOCTokenText = "<EOC>"

// ChainToken represents a potential next token in a Markov chain, including
// its text and how often it followed a given state. EOC is set for the
// End-Of-Chain marker, whose Text is empty.
type ChainToken struct {
	Text string `json:"text"`
	Freq int    `json:"freq"`
	EOC  bool   `json:"eoc,omitempty"`
}

// String returns the token text, or EOCTokenText for the End-Of-Chain marker.
func (c ChainToken) String() string {
	if c.EOC {
		return EOCTokenText
	}
	return c.Text
}

// NextTokens retrieves all possible successors of state, including the
// End-Of-Chain marker when a combo ended on state. It returns a copy of the
// successors in deterministic order and the sum of their frequencies. An
// unknown state yields a nil slice and a total frequency of 0.
func (m *Model) NextTokens(state string) ([]ChainToken, int) {
	choices, ok := m.chains[state]
	if !ok {
		return nil, 0
	}
	return slices.Clone(choices), m.totals[state]
}

// HasState reports whether state is a known state of the model.
func (m *Model) HasState(state string) bool {
	_, ok := m.chains[state]
	return ok
}
