package markov

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
)

// ChainOrder is the number of preceding tokens a state is made of. Models in
// this package are always first-order.
const ChainOrder = 1

// Model is a trained first-order transition model. It maps every known state
// to the multiset of tokens observed right after it, including the
// End-Of-Chain marker for states that ended a combo. A Model is immutable
// once built and safe for concurrent readers.
type Model struct {
	chains     map[string][]ChainToken
	totals     map[string]int
	states     []string
	vocabulary []string
	starts     map[string]int
	sequences  int
}

// States returns every known state in sorted order. These are the tokens a
// walk can start from and the universe the random start is drawn from.
func (m *Model) States() []string {
	return slices.Clone(m.states)
}

// Vocabulary returns, in sorted order, the tokens that opened at least one
// training combo. These are the legal explicit start anchors.
func (m *Model) Vocabulary() []string {
	return slices.Clone(m.vocabulary)
}

// StartFrequency returns how many training combos opened with token.
func (m *Model) StartFrequency(token string) int {
	return m.starts[token]
}

// Empty reports whether the model has no states at all.
func (m *Model) Empty() bool {
	return len(m.states) == 0
}

// ExportedModel is the serializable representation of a trained model,
// used for JSON-based import and export and for persistence.
type ExportedModel struct {
	Name      string          `json:"name"`
	Order     int             `json:"order"`
	Sequences int             `json:"sequences"`
	Starts    map[string]int  `json:"starts"`
	Chains    []ExportedChain `json:"chains"`
}

// ExportedChain is the serializable representation of a single link
// in a Markov chain, used within an ExportedModel.
type ExportedChain struct {
	State     string `json:"state"`
	Next      string `json:"next,omitempty"`
	EOC       bool   `json:"eoc,omitempty"`
	Frequency int    `json:"frequency"`
}

// Exported returns the serializable form of the model under the given name.
// Chains are listed state by state in sorted order.
func (m *Model) Exported(name string) ExportedModel {
	exported := ExportedModel{
		Name:      name,
		Order:     ChainOrder,
		Sequences: m.sequences,
		Starts:    make(map[string]int, len(m.starts)),
	}
	for token, freq := range m.starts {
		exported.Starts[token] = freq
	}
	for _, state := range m.states {
		for _, choice := range m.chains[state] {
			exported.Chains = append(exported.Chains, ExportedChain{
				State:     state,
				Next:      choice.Text,
				EOC:       choice.EOC,
				Frequency: choice.Freq,
			})
		}
	}
	return exported
}

// ExportModel serializes the model into JSON and writes it to w. This is
// useful for backups or for moving a model between hosts.
func (m *Model) ExportModel(w io.Writer, name string) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(m.Exported(name))
}

// FromExported rebuilds a Model from its serializable form. Links for the
// same state and successor are merged by adding their frequencies.
func FromExported(exported ExportedModel) (*Model, error) {
	if exported.Order != ChainOrder {
		return nil, fmt.Errorf("unsupported chain order %d", exported.Order)
	}

	cc := newChainCounts()
	cc.seqs = exported.Sequences
	for _, chain := range exported.Chains {
		if chain.State == "" {
			return nil, errors.New("chain link with an empty state")
		}
		if chain.Frequency <= 0 {
			return nil, fmt.Errorf("chain link %q -> %q has non-positive frequency %d", chain.State, chain.Next, chain.Frequency)
		}
		if chain.EOC {
			cc.ends[chain.State] += chain.Frequency
			continue
		}
		if chain.Next == "" {
			return nil, fmt.Errorf("chain link from %q has neither a next token nor an EOC marker", chain.State)
		}
		cc.addLink(chain.State, chain.Next, chain.Frequency)
	}
	for token, freq := range exported.Starts {
		cc.starts[token] += freq
	}
	return cc.model(), nil
}

// ImportModel reads a JSON representation of a model from r. It returns the
// model together with the name it was exported under.
func ImportModel(r io.Reader) (*Model, string, error) {
	var exported ExportedModel
	if err := json.NewDecoder(r).Decode(&exported); err != nil {
		return nil, "", fmt.Errorf("failed to decode json model: %w", err)
	}
	m, err := FromExported(exported)
	if err != nil {
		return nil, "", fmt.Errorf("invalid model %q: %w", exported.Name, err)
	}
	return m, exported.Name, nil
}
