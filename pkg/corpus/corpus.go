package corpus

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

var defaultTokenizer = NewDefaultTokenizer()

// Sequence is one training combo: its position in the corpus, the external
// label attached to that line (if any) and its tokens. Sequences are never
// empty and must be treated as read-only.
type Sequence struct {
	Index  int      `json:"index"`
	Label  string   `json:"label,omitempty"`
	Tokens []string `json:"tokens"`
}

// Contains reports whether token occurs anywhere in the sequence.
func (s Sequence) Contains(token string) bool {
	return slices.Contains(s.Tokens, token)
}

// First returns the first token of the sequence.
func (s Sequence) First() string {
	return s.Tokens[0]
}

// Last returns the last token of the sequence.
func (s Sequence) Last() string {
	return s.Tokens[len(s.Tokens)-1]
}

// Corpus is an ordered, immutable collection of training sequences. Every
// Corpus gets a fresh ID when it is loaded; derived results may be cached
// under that ID for as long as the Corpus is in use.
type Corpus struct {
	ID       uuid.UUID
	Name     string
	Language string

	sequences []Sequence
	separator string
	tokens    int
}

// LabelMismatchError is returned when the number of external labels does not
// match the number of non-blank lines of a corpus.
type LabelMismatchError struct {
	Corpus string
	Labels int
	Lines  int
}

func (e *LabelMismatchError) Error() string {
	return fmt.Sprintf("corpus %q has %d labels for %d non-blank lines", e.Corpus, e.Labels, e.Lines)
}

// Load tokenizes text with the default tokenizer. An all-blank text yields an
// empty Corpus.
func Load(text string) *Corpus {
	return LoadWith(defaultTokenizer, text)
}

// LoadWith tokenizes text with the given tokenizer.
func LoadWith(t Tokenizer, text string) *Corpus {
	c := &Corpus{
		ID:        uuid.New(),
		separator: t.Separator(),
	}
	for _, line := range t.Lines(text) {
		tokens := t.Tokens(line)
		if len(tokens) == 0 {
			continue
		}
		c.sequences = append(c.sequences, Sequence{Index: len(c.sequences), Tokens: tokens})
		c.tokens += len(tokens)
	}
	return c
}

// FromSequences builds a Corpus from already tokenized sequences. Empty
// sequences are dropped.
func FromSequences(sequences [][]string) *Corpus {
	c := &Corpus{
		ID:        uuid.New(),
		separator: defaultTokenizer.Separator(),
	}
	for _, tokens := range sequences {
		if len(tokens) == 0 {
			continue
		}
		c.sequences = append(c.sequences, Sequence{Index: len(c.sequences), Tokens: slices.Clone(tokens)})
		c.tokens += len(tokens)
	}
	return c
}

// WithLabels returns a copy of the corpus with one label attached to every
// sequence, in order. The copy keeps the ID of c since the content is
// unchanged. A *LabelMismatchError is returned when the counts differ; labels
// are never truncated or padded.
func (c *Corpus) WithLabels(labels []string) (*Corpus, error) {
	if len(labels) != len(c.sequences) {
		return nil, &LabelMismatchError{Corpus: c.Name, Labels: len(labels), Lines: len(c.sequences)}
	}
	labelled := *c
	labelled.sequences = make([]Sequence, len(c.sequences))
	for i, seq := range c.sequences {
		seq.Label = labels[i]
		labelled.sequences[i] = seq
	}
	return &labelled, nil
}

// Named returns a copy of the corpus carrying the given name and language.
func (c *Corpus) Named(name, language string) *Corpus {
	named := *c
	named.Name = name
	named.Language = language
	return &named
}

// Len returns the number of training sequences.
func (c *Corpus) Len() int {
	return len(c.sequences)
}

// TokenCount returns the total number of token occurrences across all sequences.
func (c *Corpus) TokenCount() int {
	return c.tokens
}

// Sequences returns the training sequences in corpus order. The returned
// slice may be modified by the caller; the token slices inside may not.
func (c *Corpus) Sequences() []Sequence {
	return slices.Clone(c.sequences)
}

// Sequence returns the i-th training sequence.
func (c *Corpus) Sequence(i int) Sequence {
	return c.sequences[i]
}

// Labels returns the label of every sequence in order.
func (c *Corpus) Labels() []string {
	labels := make([]string, len(c.sequences))
	for i, seq := range c.sequences {
		labels[i] = seq.Label
	}
	return labels
}

// Line joins the tokens of the i-th sequence back into a single line.
func (c *Corpus) Line(i int) string {
	return strings.Join(c.sequences[i].Tokens, c.separator)
}

// Text reassembles the corpus into newline-delimited text.
func (c *Corpus) Text() string {
	var sb strings.Builder
	for i := range c.sequences {
		sb.WriteString(c.Line(i))
		sb.WriteByte('\n')
	}
	return sb.String()
}
